// internal/transport/bridge_test.go
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePort struct {
	buf      bytes.Buffer
	writeErr error
}

func (p *fakePort) Read(b []byte) (int, error)  { return 0, io.EOF }
func (p *fakePort) Close() error                { return nil }
func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.buf.Write(b)
}

type fakePorts struct {
	names    []string
	listErr  error
	opens    int
	openErr  error
	failures int // first N opens fail
	port     *fakePort
}

func (p *fakePorts) List() ([]string, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.names, nil
}

func (p *fakePorts) Open(name string) (io.ReadWriteCloser, error) {
	p.opens++
	if p.openErr != nil {
		return nil, p.openErr
	}
	if p.opens <= p.failures {
		return nil, errors.New("port busy")
	}
	if p.port == nil {
		p.port = &fakePort{}
	}
	return p.port, nil
}

func testBridge(ports *fakePorts, cfg BridgeConfig) *BridgeTransport {
	return NewBridgeTransportWithPorts(cfg, ports, zap.NewNop())
}

func TestBridgeIsReady(t *testing.T) {
	bt := testBridge(&fakePorts{names: []string{"/dev/rfcomm0"}}, BridgeConfig{})
	if !bt.IsReady() {
		t.Error("expected ready with an attached port")
	}

	bt = testBridge(&fakePorts{}, BridgeConfig{})
	if bt.IsReady() {
		t.Error("expected not ready with no ports")
	}
}

func TestListPairedPrintersNeverFails(t *testing.T) {
	ports := &fakePorts{listErr: errors.New("enumeration broken")}
	bt := testBridge(ports, BridgeConfig{})

	paired := bt.ListPairedPrinters()
	if paired == nil || len(paired) != 0 {
		t.Errorf("expected empty list, got %v", paired)
	}
	if bt.LastError() == nil {
		t.Error("enumeration failure not recorded on LastError")
	}
}

func TestPrintTextTargetsMatchingPort(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/ttyUSB0", "/dev/rfcomm-kitchen"}}
	bt := testBridge(ports, BridgeConfig{})

	if err := bt.PrintText(context.Background(), "kitchen", "hello"); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if got := ports.port.buf.String(); !strings.Contains(got, "hello") {
		t.Errorf("payload not written: %q", got)
	}
	if bt.LastError() != nil {
		t.Errorf("LastError not cleared after success: %v", bt.LastError())
	}
}

func TestPrintTextEmptyPayload(t *testing.T) {
	bt := testBridge(&fakePorts{names: []string{"/dev/rfcomm0"}}, BridgeConfig{})
	if err := bt.PrintText(context.Background(), "", ""); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestPrintTextNoPortsAttached(t *testing.T) {
	bt := testBridge(&fakePorts{}, BridgeConfig{})
	err := bt.PrintText(context.Background(), "kitchen", "hello")
	if !errors.Is(err, ErrBridgeUnavailable) {
		t.Errorf("expected ErrBridgeUnavailable, got %v", err)
	}
	if bt.LastError() == nil {
		t.Error("failure not recorded on LastError")
	}
}

func TestPrintFormattedLowersMarkup(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintFormatted(context.Background(), "", "[C]<b>KITCHEN</b>\n[L]2 x Americano\n")
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := ports.port.buf.String()
	if strings.Contains(out, "[C]") || strings.Contains(out, "<b>") {
		t.Errorf("markup tags leaked to the printer: %q", out)
	}
	if !strings.Contains(out, "\x1B\x61\x01") {
		t.Error("center alignment sequence missing")
	}
	if !strings.Contains(out, "KITCHEN") {
		t.Error("text content missing")
	}
}

func TestPrintLogoAndTextReturnsResult(t *testing.T) {
	bt := testBridge(&fakePorts{}, BridgeConfig{})
	res := bt.PrintLogoAndText(context.Background(), "kitchen", "/no/such/logo.png", "hello")
	if res.OK {
		t.Error("expected degraded result with no ports")
	}
	if res.Reason == "" {
		t.Error("expected a failure reason")
	}

	ports := &fakePorts{names: []string{"/dev/rfcomm0"}}
	bt = testBridge(ports, BridgeConfig{})
	res = bt.PrintLogoAndText(context.Background(), "", "", "hello")
	if !res.OK {
		t.Errorf("expected success, got reason %q", res.Reason)
	}
}

func TestPrintWithRetrySucceedsAfterFailures(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}, failures: 2}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintWithRetry(context.Background(), RetryOptions{
		NameLike:  "",
		Text:      "hello",
		Tries:     3,
		BaseDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("expected third attempt to succeed: %v", err)
	}
	if ports.opens != 3 {
		t.Errorf("expected 3 attempts, got %d", ports.opens)
	}
}

func TestPrintWithRetryExhaustsTries(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}, openErr: errors.New("port busy")}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintWithRetry(context.Background(), RetryOptions{
		Text:      "hello",
		Tries:     3,
		BaseDelay: time.Millisecond,
	})
	if !errors.Is(err, ErrBridgePrintFailed) {
		t.Errorf("expected ErrBridgePrintFailed, got %v", err)
	}
	if ports.opens != 3 {
		t.Errorf("expected 3 attempts, got %d", ports.opens)
	}
}

func TestPrintWithRetryContinuePolicyPrintsAllCopies(t *testing.T) {
	// First copy exhausts its single try, remaining copies print.
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}, failures: 1}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintWithRetry(context.Background(), RetryOptions{
		Text:      "hello",
		Copies:    3,
		Tries:     1,
		BaseDelay: time.Millisecond,
		Policy:    CopyPolicyContinue,
	})
	if !errors.Is(err, ErrBridgePrintFailed) {
		t.Errorf("expected aggregated failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "copy 1") {
		t.Errorf("failure does not name the failed copy: %v", err)
	}
	if ports.opens != 3 {
		t.Errorf("expected all copies attempted, got %d opens", ports.opens)
	}
}

func TestPrintWithRetryAbortPolicyStops(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}, openErr: errors.New("port busy")}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintWithRetry(context.Background(), RetryOptions{
		Text:      "hello",
		Copies:    3,
		Tries:     1,
		BaseDelay: time.Millisecond,
		Policy:    CopyPolicyAbort,
	})
	if !errors.Is(err, ErrBridgePrintFailed) {
		t.Errorf("expected ErrBridgePrintFailed, got %v", err)
	}
	if ports.opens != 1 {
		t.Errorf("abort policy kept going: %d opens", ports.opens)
	}
}

func TestBridgeDensityWrittenBeforePayload(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}}
	bt := testBridge(ports, BridgeConfig{Density: 4})

	if err := bt.PrintText(context.Background(), "", "hello"); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := ports.port.buf.String()
	if !strings.HasPrefix(out, "\x1D\x28\x4B") {
		t.Errorf("density command not written first: %q", out)
	}
}

func TestPrintFallsBackToRetryWhenLogoPrintFails(t *testing.T) {
	// First open dies under the logo attempt; the fallback text print
	// gets a healthy port.
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}, failures: 1}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.Print(context.Background(), PrintRequest{
		Target:  "rfcomm",
		Payload: "RECEIPT BODY",
		Copies:  1,
		LogoRef: "/missing/logo.png",
	})
	if err != nil {
		t.Fatalf("expected fallback print to succeed, got %v", err)
	}
	if ports.opens != 2 {
		t.Errorf("expected failed logo attempt plus one fallback print, got %d opens", ports.opens)
	}
	if !strings.Contains(ports.port.buf.String(), "RECEIPT BODY") {
		t.Error("fallback print did not carry the document text")
	}
}

func TestPrintWithRetryEmptyTextNotRetried(t *testing.T) {
	ports := &fakePorts{names: []string{"/dev/rfcomm0"}}
	bt := testBridge(ports, BridgeConfig{})

	err := bt.PrintWithRetry(context.Background(), RetryOptions{
		NameLike:  "rfcomm",
		Text:      "",
		Tries:     3,
		BaseDelay: time.Millisecond,
	})
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if errors.Is(err, ErrBridgePrintFailed) {
		t.Error("empty payload rewrapped as a print failure")
	}
	if ports.opens != 0 {
		t.Errorf("empty payload reached the port %d times", ports.opens)
	}
}
