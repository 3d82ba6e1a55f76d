// internal/transport/bridge.go
package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/printer"
	"print-service/pkg/escpos"
)

// CopyPolicy decides what a multi-copy print does when one copy fails.
type CopyPolicy string

const (
	// CopyPolicyContinue keeps printing the remaining copies and reports
	// the failures at the end.
	CopyPolicyContinue CopyPolicy = "continue"
	// CopyPolicyAbort stops at the first failed copy.
	CopyPolicyAbort CopyPolicy = "abort"
)

// PortProvider enumerates and opens printer ports. The production provider
// sits on the serial stack; tests substitute fakes.
type PortProvider interface {
	List() ([]string, error)
	Open(name string) (io.ReadWriteCloser, error)
}

type serialPortProvider struct {
	baudRate int
}

func (p *serialPortProvider) List() ([]string, error) {
	return serial.GetPortsList()
}

func (p *serialPortProvider) Open(name string) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{BaudRate: p.baudRate}
	return serial.Open(name, mode)
}

// BridgeConfig holds settings for locally attached printers.
type BridgeConfig struct {
	BaudRate   int        `mapstructure:"baud_rate"`
	Density    int        `mapstructure:"density"`
	CopyPolicy CopyPolicy `mapstructure:"copy_policy"`
}

// BridgeTransport prints through printer ports attached to the host, the
// usual path on hardware with a paired Bluetooth or USB-serial printer.
// Every entry point detects availability first instead of assuming the
// printer exists.
type BridgeTransport struct {
	cfg    BridgeConfig
	ports  PortProvider
	logger *zap.Logger

	mu      sync.Mutex
	lastErr error
}

// NewBridgeTransport creates a bridge over the host's serial ports.
func NewBridgeTransport(cfg BridgeConfig, logger *zap.Logger) *BridgeTransport {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = 9600
	}
	if cfg.CopyPolicy == "" {
		cfg.CopyPolicy = CopyPolicyContinue
	}
	return &BridgeTransport{
		cfg:    cfg,
		ports:  &serialPortProvider{baudRate: cfg.BaudRate},
		logger: logger,
	}
}

// NewBridgeTransportWithPorts is like NewBridgeTransport with an explicit
// port provider, used by tests.
func NewBridgeTransportWithPorts(cfg BridgeConfig, ports PortProvider, logger *zap.Logger) *BridgeTransport {
	bt := NewBridgeTransport(cfg, logger)
	bt.ports = ports
	return bt
}

func (bt *BridgeTransport) setLastError(err error) {
	bt.mu.Lock()
	bt.lastErr = err
	bt.mu.Unlock()
}

// LastError returns the most recent bridge failure, nil after a success.
func (bt *BridgeTransport) LastError() error {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.lastErr
}

// IsReady reports whether at least one printer port is attached.
func (bt *BridgeTransport) IsReady() bool {
	names, err := bt.ports.List()
	if err != nil {
		bt.setLastError(err)
		return false
	}
	return len(names) > 0
}

// ListPairedPrinters returns the attached printer ports. It never fails:
// enumeration errors are recorded on LastError and an empty list is
// returned, so callers can always range over the result.
func (bt *BridgeTransport) ListPairedPrinters() []model.PairedPrinter {
	names, err := bt.ports.List()
	if err != nil {
		bt.setLastError(err)
		bt.logger.Warn("Port enumeration failed", zap.Error(err))
		return []model.PairedPrinter{}
	}
	printers := make([]model.PairedPrinter, 0, len(names))
	for _, name := range names {
		printers = append(printers, model.PairedPrinter{Name: name, Address: name})
	}
	return printers
}

// resolvePort picks the port whose name matches nameLike, falling back to
// the first attached port.
func (bt *BridgeTransport) resolvePort(nameLike string) (string, error) {
	names, err := bt.ports.List()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
	}
	target, err := printer.ResolveTarget(names, printer.CompileHints([]string{nameLike}))
	if err != nil {
		return "", fmt.Errorf("%w: no ports attached", ErrBridgeUnavailable)
	}
	return target, nil
}

// write opens the port, pushes the density setting and the payload, and
// closes it again. Ports are not held between jobs.
func (bt *BridgeTransport) write(nameLike string, payload []byte) error {
	target, err := bt.resolvePort(nameLike)
	if err != nil {
		return err
	}

	port, err := bt.ports.Open(target)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrBridgeUnavailable, target, err)
	}
	defer port.Close()

	if bt.cfg.Density > 0 {
		if _, err := port.Write(escpos.SetDensity(bt.cfg.Density)); err != nil {
			return fmt.Errorf("%w: %v", ErrBridgePrintFailed, err)
		}
	}
	if _, err := port.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBridgePrintFailed, err)
	}
	return nil
}

// PrintText sends a plain text document to the printer matching nameLike.
func (bt *BridgeTransport) PrintText(ctx context.Context, nameLike, text string) error {
	return bt.print(ctx, nameLike, text)
}

// PrintFormatted sends a markup document. The markup is interpreted into
// control sequences here because the attached printer only speaks raw
// commands.
func (bt *BridgeTransport) PrintFormatted(ctx context.Context, nameLike, text string) error {
	return bt.print(ctx, nameLike, renderMarkup(text))
}

func (bt *BridgeTransport) print(ctx context.Context, nameLike, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if NormalizePayload(text) == "" {
		return ErrEmptyPayload
	}
	err := bt.write(nameLike, []byte(text))
	bt.setLastError(err)
	if err != nil {
		bt.logger.Warn("Bridge print failed",
			zap.String("name_like", nameLike),
			zap.Error(err))
	}
	return err
}

// PrintLogoAndText prints a logo image followed by the document. It always
// returns a Result: callers treat a missing logo or a dead printer as a
// degraded print, not a crash.
func (bt *BridgeTransport) PrintLogoAndText(ctx context.Context, nameLike, logoPath, text string) Result {
	payload := []byte(renderMarkup(text))
	if logoPath != "" {
		raster, err := escpos.RasterFromFile(logoPath, escpos.MaxDots58)
		if err != nil {
			bt.logger.Warn("Logo raster failed, printing text only",
				zap.String("path", logoPath),
				zap.Error(err))
		} else {
			payload = append(raster, payload...)
		}
	}

	if len(payload) == 0 {
		return Result{OK: false, Reason: ErrEmptyPayload.Error()}
	}
	if err := ctx.Err(); err != nil {
		return Result{OK: false, Reason: err.Error()}
	}
	err := bt.write(nameLike, payload)
	bt.setLastError(err)
	if err != nil {
		return Result{OK: false, Reason: err.Error()}
	}
	return Result{OK: true}
}

// RetryOptions controls a retried multi-copy print.
type RetryOptions struct {
	NameLike  string
	Text      string
	Copies    int
	Tries     int
	BaseDelay time.Duration
	Policy    CopyPolicy
}

// PrintWithRetry prints Copies copies, retrying each copy up to Tries times
// with a linearly growing delay (BaseDelay times the attempt number). The
// copy policy decides whether a failed copy aborts the batch or the batch
// continues and the failures are reported together.
func (bt *BridgeTransport) PrintWithRetry(ctx context.Context, opts RetryOptions) error {
	if opts.Copies < 1 {
		opts.Copies = 1
	}
	if opts.Tries < 1 {
		opts.Tries = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	policy := opts.Policy
	if policy == "" {
		policy = bt.cfg.CopyPolicy
	}

	// Nothing to print is a logic error, not a transient fault; the
	// retry budget never applies to it.
	rendered := renderMarkup(opts.Text)
	if NormalizePayload(rendered) == "" {
		bt.setLastError(ErrEmptyPayload)
		return ErrEmptyPayload
	}

	var failures []string
	for copyIdx := 1; copyIdx <= opts.Copies; copyIdx++ {
		var lastErr error
		for attempt := 1; attempt <= opts.Tries; attempt++ {
			lastErr = bt.print(ctx, opts.NameLike, rendered)
			if lastErr == nil {
				break
			}
			if attempt == opts.Tries {
				break
			}
			delay := opts.BaseDelay * time.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr == nil {
			continue
		}
		failures = append(failures, fmt.Sprintf("copy %d: %v", copyIdx, lastErr))
		if policy == CopyPolicyAbort {
			break
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrBridgePrintFailed, strings.Join(failures, "; "))
	}
	return nil
}

// Name implements PrinterTransport.
func (bt *BridgeTransport) Name() string { return "bridge" }

// Available implements PrinterTransport.
func (bt *BridgeTransport) Available(ctx context.Context) bool {
	return bt.IsReady()
}

// ListPrinters implements PrinterTransport.
func (bt *BridgeTransport) ListPrinters(ctx context.Context) ([]string, error) {
	paired := bt.ListPairedPrinters()
	names := make([]string, 0, len(paired))
	for _, p := range paired {
		names = append(names, p.Name)
	}
	return names, nil
}

// Print implements PrinterTransport.
func (bt *BridgeTransport) Print(ctx context.Context, req PrintRequest) error {
	opts := RetryOptions{
		NameLike: req.Target,
		Text:     req.Payload,
		Copies:   req.Copies,
		Tries:    3,
	}
	if req.LogoRef != "" {
		res := bt.PrintLogoAndText(ctx, req.Target, req.LogoRef, req.Payload)
		if res.OK {
			if req.Copies > 1 {
				opts.Copies = req.Copies - 1
				return bt.PrintWithRetry(ctx, opts)
			}
			return nil
		}
		// A failed logo print signals fallback, not a hard error: the
		// whole copy count goes through the retry path without the logo.
		bt.logger.Warn("Logo print failed, falling back to text retry",
			zap.String("name_like", req.Target),
			zap.String("reason", res.Reason))
	}
	return bt.PrintWithRetry(ctx, opts)
}
