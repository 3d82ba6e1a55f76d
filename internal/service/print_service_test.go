// internal/service/print_service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/transport"
)

type fakeTransport struct {
	name      string
	available bool
	printers  []string
	printErr  func(req transport.PrintRequest) error
	requests  []transport.PrintRequest
}

func (f *fakeTransport) Name() string                            { return f.name }
func (f *fakeTransport) Available(ctx context.Context) bool      { return f.available }
func (f *fakeTransport) ListPrinters(ctx context.Context) ([]string, error) {
	return f.printers, nil
}
func (f *fakeTransport) Print(ctx context.Context, req transport.PrintRequest) error {
	f.requests = append(f.requests, req)
	if f.printErr != nil {
		return f.printErr(req)
	}
	return nil
}

type fakeSettingsRepo struct {
	settings *model.PrintSettings
	err      error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*model.PrintSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.settings
	s.Normalize()
	return &s, nil
}
func (f *fakeSettingsRepo) Save(ctx context.Context, s *model.PrintSettings) error {
	f.settings = s
	return nil
}
func (f *fakeSettingsRepo) GetValue(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeSettingsRepo) SetValue(ctx context.Context, key, value string) error    { return nil }

type fakeJobRepo struct {
	mu      sync.Mutex
	created []*model.PrintJob
	updates map[uuid.UUID]model.JobStatus
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{updates: make(map[uuid.UUID]model.JobStatus)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *model.PrintJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, job)
	return nil
}
func (f *fakeJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, attempt int, jobErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = status
	return nil
}
func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeJobRepo) ListByOrder(ctx context.Context, orderNumber string) ([]*model.PrintJob, error) {
	return nil, nil
}
func (f *fakeJobRepo) ListRecent(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	return nil, nil
}
func (f *fakeJobRepo) GetJobStats(ctx context.Context, since time.Time) (*repository.JobStats, error) {
	return &repository.JobStats{}, nil
}
func (f *fakeJobRepo) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func sampleOrder() *model.Order {
	return &model.Order{
		OrderNumber:   "ORD-0042",
		CreatedAt:     time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
		Products:      []model.OrderProduct{{Name: "Americano", Quantity: 2, Price: decimal.NewFromInt(20000)}},
		Subtotal:      decimal.NewFromInt(40000),
		TotalAmount:   decimal.NewFromInt(40000),
		OrderType:     "Dine In",
		PaymentMethod: "CASH",
		Status:        model.OrderStatusPaid,
	}
}

func testPrintService(transports []transport.PrinterTransport, settings *model.PrintSettings, jobs repository.JobRepository) *PrintService {
	return NewPrintService(
		transports,
		&fakeSettingsRepo{settings: settings},
		jobs,
		nil,
		&config.Config{},
		zap.NewNop(),
	)
}

func TestDispatchOrderBothLegs(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: true}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58", KitchenPrinter: "Kitchen-BT"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !report.ReceiptPrinted || !report.KitchenPrinted {
		t.Errorf("expected both legs printed: %+v", report)
	}
	if report.Warning != "" {
		t.Errorf("unexpected warning: %q", report.Warning)
	}
	if len(ft.requests) != 2 {
		t.Fatalf("expected 2 print requests, got %d", len(ft.requests))
	}
	if ft.requests[0].Target != "RPP02N-58" || ft.requests[1].Target != "Kitchen-BT" {
		t.Errorf("unexpected targets: %q, %q", ft.requests[0].Target, ft.requests[1].Target)
	}
}

func TestDispatchOrderSkipsKitchenWhenUnset(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: true}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !report.KitchenSkipped {
		t.Error("expected kitchen leg skipped")
	}
	if report.KitchenPrinted {
		t.Error("kitchen printed despite no configured printer")
	}
	if len(ft.requests) != 1 {
		t.Errorf("expected only the receipt request, got %d", len(ft.requests))
	}
	if report.Warning != "" {
		t.Errorf("skipped kitchen must not warn: %q", report.Warning)
	}
}

func TestDispatchOrderLegsAreIndependent(t *testing.T) {
	ft := &fakeTransport{
		name:      "bridge",
		available: true,
		printErr: func(req transport.PrintRequest) error {
			if req.Target == "RPP02N-58" {
				return errors.New("paper jam")
			}
			return nil
		},
	}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58", KitchenPrinter: "Kitchen-BT"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("dispatch must not fail the order: %v", err)
	}
	if report.ReceiptPrinted {
		t.Error("receipt leg reported printed despite failure")
	}
	if !report.KitchenPrinted {
		t.Error("kitchen leg blocked by receipt failure")
	}
	if !strings.HasPrefix(report.Warning, "Order saved, but printing failed:") {
		t.Errorf("unexpected warning: %q", report.Warning)
	}
	if !strings.Contains(report.Warning, "receipt") || !strings.Contains(report.Warning, "paper jam") {
		t.Errorf("warning does not name the failed leg: %q", report.Warning)
	}
}

func TestDispatchOrderNoTransport(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: false}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("missing transport must not fail the order: %v", err)
	}
	if !strings.HasPrefix(report.Warning, "Order saved, but printing failed:") {
		t.Errorf("unexpected warning: %q", report.Warning)
	}
}

func TestDispatchOrderBridgeHasPriority(t *testing.T) {
	bridge := &fakeTransport{name: "bridge", available: true}
	gateway := &fakeTransport{name: "gateway", available: true}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58"}
	ps := testPrintService([]transport.PrinterTransport{bridge, gateway}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if report.Transport != "bridge" {
		t.Errorf("expected bridge transport, got %q", report.Transport)
	}
	if len(gateway.requests) != 0 {
		t.Error("gateway used despite available bridge")
	}
}

func TestDispatchOrderFallsBackToGateway(t *testing.T) {
	bridge := &fakeTransport{name: "bridge", available: false}
	gateway := &fakeTransport{name: "gateway", available: true}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58"}
	ps := testPrintService([]transport.PrinterTransport{bridge, gateway}, settings, newFakeJobRepo())

	report, err := ps.DispatchOrder(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if report.Transport != "gateway" {
		t.Errorf("expected gateway fallback, got %q", report.Transport)
	}
	if !strings.Contains(gateway.requests[0].Payload, "\x1B\x40") {
		t.Error("gateway payload is not in the raw command dialect")
	}
}

func TestDispatchOrderRecordsJobOutcomes(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: true}
	jobs := newFakeJobRepo()
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58", KitchenPrinter: "Kitchen-BT"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, jobs)

	if _, err := ps.DispatchOrder(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(jobs.created) != 2 {
		t.Fatalf("expected 2 recorded jobs, got %d", len(jobs.created))
	}
	for _, job := range jobs.created {
		if jobs.updates[job.ID] != model.JobStatusPrinted {
			t.Errorf("job %s not marked printed", job.ID)
		}
	}
}

func TestPrintKitchenRequiresConfiguredPrinter(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: true}
	ps := testPrintService([]transport.PrinterTransport{ft}, &model.PrintSettings{}, newFakeJobRepo())

	if err := ps.PrintKitchen(context.Background(), sampleOrder()); err == nil {
		t.Error("expected error for unset kitchen printer")
	}
}

func TestDispatchOrderMarkupForBridge(t *testing.T) {
	ft := &fakeTransport{name: "bridge", available: true}
	settings := &model.PrintSettings{ReceiptPrinter: "RPP02N-58"}
	ps := testPrintService([]transport.PrinterTransport{ft}, settings, newFakeJobRepo())

	if _, err := ps.DispatchOrder(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !strings.Contains(ft.requests[0].Payload, "[C]") {
		t.Error("bridge payload is not in the markup dialect")
	}
}
