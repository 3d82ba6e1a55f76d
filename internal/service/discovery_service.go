// internal/service/discovery_service.go
package service

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
	"print-service/internal/printer"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// DiscoveryService merges printer views from every transport and suggests
// role assignments for fresh installs.
type DiscoveryService struct {
	transports   []transport.PrinterTransport
	locator      *transport.GatewayLocator
	kitchenHints []*regexp.Regexp
	receiptHints []*regexp.Regexp
	logger       *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service instance. Role hint
// patterns come from the printing config section; empty sections fall back
// to the stock hint sets.
func NewDiscoveryService(transports []transport.PrinterTransport, locator *transport.GatewayLocator, cfg *config.Config, logger *zap.Logger) *DiscoveryService {
	kitchenHints := []string{"kitchen", "kot", "dapur"}
	receiptHints := []string{"cashier", "kasir", "receipt", "front"}
	if cfg != nil && len(cfg.Printing.KitchenHints) > 0 {
		kitchenHints = cfg.Printing.KitchenHints
	}
	if cfg != nil && len(cfg.Printing.ReceiptHints) > 0 {
		receiptHints = cfg.Printing.ReceiptHints
	}
	return &DiscoveryService{
		transports:   transports,
		locator:      locator,
		kitchenHints: printer.CompileHints(kitchenHints),
		receiptHints: printer.CompileHints(receiptHints),
		logger:       utils.NewServiceLogger(logger, "discovery-service"),
	}
}

// TransportPrinters is the printer view of one transport.
type TransportPrinters struct {
	Transport string   `json:"transport"`
	Available bool     `json:"available"`
	Printers  []string `json:"printers"`
}

// ListPrinters queries every transport. An unavailable transport appears
// with an empty list so the caller sees the whole picture.
func (ds *DiscoveryService) ListPrinters(ctx context.Context) []TransportPrinters {
	views := make([]TransportPrinters, 0, len(ds.transports))
	for _, t := range ds.transports {
		view := TransportPrinters{Transport: t.Name(), Printers: []string{}}
		if t.Available(ctx) {
			view.Available = true
			names, err := t.ListPrinters(ctx)
			if err != nil {
				ds.logger.Warn("Printer listing failed",
					zap.String("transport", t.Name()),
					zap.Error(err))
			} else {
				view.Printers = names
			}
		}
		views = append(views, view)
	}
	return views
}

// SuggestTargets proposes a receipt and kitchen assignment from the first
// available transport's printers. Kitchen stays empty when nothing matches
// a kitchen name pattern, which downstream turns into a skipped kitchen leg.
func (ds *DiscoveryService) SuggestTargets(ctx context.Context) (receipt, kitchen string) {
	for _, view := range ds.ListPrinters(ctx) {
		if !view.Available || len(view.Printers) == 0 {
			continue
		}
		if name, err := printer.ResolveTarget(view.Printers, ds.kitchenHints); err == nil {
			for _, hint := range ds.kitchenHints {
				if hint.MatchString(name) {
					kitchen = name
					break
				}
			}
		}
		if name, err := printer.ResolveTarget(view.Printers, ds.receiptHints); err == nil {
			if name == kitchen && len(view.Printers) > 1 {
				for _, other := range view.Printers {
					if other != kitchen {
						name = other
						break
					}
				}
			}
			receipt = name
		}
		return receipt, kitchen
	}
	return "", ""
}

// LocateGateways browses the local network for print gateways.
func (ds *DiscoveryService) LocateGateways(ctx context.Context, timeout time.Duration) ([]transport.GatewayCandidate, error) {
	if ds.locator == nil {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return ds.locator.Locate(ctx, timeout)
}

// PairedPrinters returns the bridge's paired printers, empty when the
// bridge transport is absent.
func (ds *DiscoveryService) PairedPrinters() []model.PairedPrinter {
	for _, t := range ds.transports {
		if bt, ok := t.(*transport.BridgeTransport); ok {
			return bt.ListPairedPrinters()
		}
	}
	return []model.PairedPrinter{}
}
