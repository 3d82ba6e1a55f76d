// internal/service/discovery_service_test.go
package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/transport"
)

func TestSuggestTargetsUsesConfiguredHints(t *testing.T) {
	bridge := &fakeTransport{
		name:      "bridge",
		available: true,
		printers:  []string{"FrontDesk-80", "Grill-Station"},
	}
	cfg := &config.Config{}
	cfg.Printing.KitchenHints = []string{"grill"}
	cfg.Printing.ReceiptHints = []string{"frontdesk"}

	ds := NewDiscoveryService([]transport.PrinterTransport{bridge}, nil, cfg, zap.NewNop())

	receipt, kitchen := ds.SuggestTargets(context.Background())
	if kitchen != "Grill-Station" {
		t.Errorf("kitchen = %q, want Grill-Station via configured hint", kitchen)
	}
	if receipt != "FrontDesk-80" {
		t.Errorf("receipt = %q, want FrontDesk-80 via configured hint", receipt)
	}
}

func TestSuggestTargetsFallsBackToStockHints(t *testing.T) {
	bridge := &fakeTransport{
		name:      "bridge",
		available: true,
		printers:  []string{"RPP02N-58", "Kitchen-BT"},
	}

	ds := NewDiscoveryService([]transport.PrinterTransport{bridge}, nil, &config.Config{}, zap.NewNop())

	receipt, kitchen := ds.SuggestTargets(context.Background())
	if kitchen != "Kitchen-BT" {
		t.Errorf("kitchen = %q, want Kitchen-BT via stock hints", kitchen)
	}
	if receipt != "RPP02N-58" {
		t.Errorf("receipt = %q, want the remaining printer", receipt)
	}
}
