// internal/service/print_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/document"
	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// ErrNoTransport means no way of reaching a printer was available.
var ErrNoTransport = errors.New("no print transport available")

// EventPublisher pushes job updates to interested listeners. The websocket
// hub implements it; a nil publisher is allowed.
type EventPublisher interface {
	PublishJobUpdate(job *model.PrintJob)
}

// DispatchReport is the outcome of printing an order. Printing never blocks
// an order: failures land in Warning instead of an error.
type DispatchReport struct {
	OrderNumber    string `json:"order_number"`
	Transport      string `json:"transport,omitempty"`
	ReceiptPrinted bool   `json:"receipt_printed"`
	KitchenPrinted bool   `json:"kitchen_printed"`
	KitchenSkipped bool   `json:"kitchen_skipped"`
	Warning        string `json:"warning,omitempty"`
}

// PrintService orchestrates order printing across the available transports.
type PrintService struct {
	transports   []transport.PrinterTransport
	settingsRepo repository.SettingsRepository
	jobRepo      repository.JobRepository
	events       EventPublisher
	config       *config.Config
	logger       *utils.ServiceLogger
}

// NewPrintService creates a new print service instance. Transports are
// tried in the given order; the locally attached bridge is expected first
// so it wins over the network gateway when both are available.
func NewPrintService(
	transports []transport.PrinterTransport,
	settingsRepo repository.SettingsRepository,
	jobRepo repository.JobRepository,
	events EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		transports:   transports,
		settingsRepo: settingsRepo,
		jobRepo:      jobRepo,
		events:       events,
		config:       cfg,
		logger:       utils.NewServiceLogger(logger, "print-service"),
	}
}

// activeTransport returns the first transport that reports itself available.
func (ps *PrintService) activeTransport(ctx context.Context) (transport.PrinterTransport, error) {
	for _, t := range ps.transports {
		if t.Available(ctx) {
			return t, nil
		}
	}
	return nil, ErrNoTransport
}

// dialectFor maps a transport to the document dialect it consumes.
func dialectFor(t transport.PrinterTransport) document.Dialect {
	if t.Name() == "bridge" {
		return document.DialectMarkup
	}
	return document.DialectControl
}

// loadSettings returns the stored settings, falling back to normalized
// defaults when the store is unreachable.
func (ps *PrintService) loadSettings(ctx context.Context) *model.PrintSettings {
	settings, err := ps.settingsRepo.Get(ctx)
	if err != nil {
		ps.logger.Warn("Failed to load print settings, using defaults", zap.Error(err))
		settings = &model.PrintSettings{}
		settings.Normalize()
	}
	return settings
}

// DispatchOrder prints the receipt and the kitchen ticket for an order.
// The two legs are independent: a failed receipt never blocks the kitchen
// ticket and vice versa. The kitchen leg is skipped entirely when no
// kitchen printer is configured. All failures are folded into a single
// warning; the order itself is already saved by the caller and stays saved.
func (ps *PrintService) DispatchOrder(ctx context.Context, order *model.Order) (*DispatchReport, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	settings := ps.loadSettings(ctx)
	report := &DispatchReport{OrderNumber: order.OrderNumber}

	active, err := ps.activeTransport(ctx)
	if err != nil {
		report.Warning = printWarning([]string{err.Error()})
		return report, nil
	}
	report.Transport = active.Name()
	dialect := dialectFor(active)

	var failures []string

	receipt := ps.buildReceiptData(order, settings)
	if err := ps.printLeg(ctx, active, model.RoleReceipt, order.OrderNumber, transport.PrintRequest{
		Target:  settings.ReceiptPrinter,
		Payload: document.FormatReceipt(receipt, dialect),
		Copies:  settings.ReceiptCopies,
		LogoRef: settings.LogoPath,
	}); err != nil {
		failures = append(failures, fmt.Sprintf("receipt: %v", err))
	} else {
		report.ReceiptPrinted = true
	}

	if settings.KitchenPrinter == "" {
		report.KitchenSkipped = true
		ps.logger.Info("Kitchen printing skipped, no kitchen printer configured",
			zap.String("order_number", order.OrderNumber))
	} else {
		ticket := ps.buildKitchenData(order, settings)
		if err := ps.printLeg(ctx, active, model.RoleKitchen, order.OrderNumber, transport.PrintRequest{
			Target:  settings.KitchenPrinter,
			Payload: document.FormatKitchenTicket(ticket, dialect),
			Copies:  settings.KitchenCopies,
		}); err != nil {
			failures = append(failures, fmt.Sprintf("kitchen: %v", err))
		} else {
			report.KitchenPrinted = true
		}
	}

	if len(failures) > 0 {
		report.Warning = printWarning(failures)
		ps.logger.Warn("Order printed with failures",
			zap.String("order_number", order.OrderNumber),
			zap.Strings("failures", failures))
	}
	return report, nil
}

func printWarning(failures []string) string {
	return "Order saved, but printing failed: " + strings.Join(failures, "; ")
}

// printLeg runs one print and records it in the job audit. Audit failures
// are logged, never surfaced.
func (ps *PrintService) printLeg(ctx context.Context, t transport.PrinterTransport, role model.PrinterRole, orderNumber string, req transport.PrintRequest) error {
	job := model.NewPrintJob(orderNumber, role, req.Target, req.Copies)
	ps.recordJob(ctx, job)

	jobLog := utils.NewJobLogger(ps.logger.Logger, orderNumber, string(role), req.Target)
	err := t.Print(ctx, req)
	jobLog.LogAttempt(job.Attempt, t.Name(), err)

	if err != nil {
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = model.JobStatusPrinted
	}
	jobLog.LogOutcome(string(job.Status), job.Attempt)
	ps.recordJobOutcome(ctx, job)
	return err
}

func (ps *PrintService) recordJob(ctx context.Context, job *model.PrintJob) {
	if ps.jobRepo != nil {
		if err := ps.jobRepo.Create(ctx, job); err != nil {
			ps.logger.Warn("Failed to record print job", zap.Error(err))
		}
	}
	if ps.events != nil {
		ps.events.PublishJobUpdate(job)
	}
}

func (ps *PrintService) recordJobOutcome(ctx context.Context, job *model.PrintJob) {
	if ps.jobRepo != nil {
		if err := ps.jobRepo.UpdateStatus(ctx, job.ID, job.Status, job.Attempt, job.Error); err != nil {
			ps.logger.Warn("Failed to update print job", zap.Error(err))
		}
	}
	if ps.events != nil {
		ps.events.PublishJobUpdate(job)
	}
}

// PrintReceipt prints only the receipt leg of an order.
func (ps *PrintService) PrintReceipt(ctx context.Context, order *model.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	settings := ps.loadSettings(ctx)
	active, err := ps.activeTransport(ctx)
	if err != nil {
		return err
	}
	receipt := ps.buildReceiptData(order, settings)
	return ps.printLeg(ctx, active, model.RoleReceipt, order.OrderNumber, transport.PrintRequest{
		Target:  settings.ReceiptPrinter,
		Payload: document.FormatReceipt(receipt, dialectFor(active)),
		Copies:  settings.ReceiptCopies,
		LogoRef: settings.LogoPath,
	})
}

// PrintKitchen prints only the kitchen ticket of an order. Unlike the
// dispatch path, an unset kitchen printer is an error here because the
// caller asked for this leg explicitly.
func (ps *PrintService) PrintKitchen(ctx context.Context, order *model.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	settings := ps.loadSettings(ctx)
	if settings.KitchenPrinter == "" {
		return fmt.Errorf("no kitchen printer configured")
	}
	active, err := ps.activeTransport(ctx)
	if err != nil {
		return err
	}
	ticket := ps.buildKitchenData(order, settings)
	return ps.printLeg(ctx, active, model.RoleKitchen, order.OrderNumber, transport.PrintRequest{
		Target:  settings.KitchenPrinter,
		Payload: document.FormatKitchenTicket(ticket, dialectFor(active)),
		Copies:  settings.KitchenCopies,
	})
}

// PrintSettlement aggregates the given orders into a settlement report and
// prints it on the receipt printer.
func (ps *PrintService) PrintSettlement(ctx context.Context, periodLabel string, orders []model.Order) error {
	settings := ps.loadSettings(ctx)
	active, err := ps.activeTransport(ctx)
	if err != nil {
		return err
	}

	data := model.BuildSettlement(
		settings.ShopName,
		periodLabel,
		time.Now().Format("2006-01-02 15:04"),
		settings.RollWidth,
		orders,
	)
	return ps.printLeg(ctx, active, model.RoleReceipt, "settlement:"+periodLabel, transport.PrintRequest{
		Target:  settings.ReceiptPrinter,
		Payload: document.FormatSettlement(&data, dialectFor(active)),
		Copies:  1,
	})
}

// TestPrint sends a short self-test document to the given printer, or the
// configured receipt printer when target is empty.
func (ps *PrintService) TestPrint(ctx context.Context, target string) error {
	settings := ps.loadSettings(ctx)
	if target == "" {
		target = settings.ReceiptPrinter
	}
	active, err := ps.activeTransport(ctx)
	if err != nil {
		return err
	}

	b := document.NewBuilder(dialectFor(active), settings.RollWidth).Init()
	b.CenterDouble(fmt.Sprintf("%dmm TEST", settings.RollWidth))
	b.Center(time.Now().Format("2006-01-02 15:04:05"))
	b.Separator()
	b.Left("The quick brown fox jumps")
	b.Row("Left column", "Right column")

	return ps.printLeg(ctx, active, model.RoleUnassigned, "test", transport.PrintRequest{
		Target:  target,
		Payload: b.Cut().String(),
		Copies:  1,
	})
}

func (ps *PrintService) buildReceiptData(order *model.Order, settings *model.PrintSettings) *model.ReceiptData {
	data := &model.ReceiptData{
		ShopName:    settings.ShopName,
		Address:     settings.ShopAddress,
		OrderNumber: order.OrderNumber,
		DateStr:     order.CreatedAt.Format("2006-01-02 15:04"),
		OrderType:   order.OrderType,
		Items:       order.Lines(),
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Service:     order.ServiceCharge,
		Discount:    order.Discount,
		Total:       order.TotalAmount,
		Payment:     order.PaymentMethod,
		RollWidth:   settings.RollWidth,
		LogoPath:    settings.LogoPath,
		Footer:      settings.FooterText,
		QRContent:   order.OrderNumber,
	}
	if order.CustomerName != "" {
		data.Customer = &model.Customer{Name: order.CustomerName}
	}
	return data
}

func (ps *PrintService) buildKitchenData(order *model.Order, settings *model.PrintSettings) *model.KitchenTicketData {
	data := &model.KitchenTicketData{
		ShopName:    settings.ShopName,
		OrderNumber: order.OrderNumber,
		DateStr:     order.CreatedAt.Format("2006-01-02 15:04"),
		OrderType:   order.OrderType,
		Items:       order.Lines(),
		RollWidth:   settings.RollWidth,
	}
	if order.CustomerName != "" {
		data.Customer = &model.Customer{Name: order.CustomerName}
	}
	return data
}
