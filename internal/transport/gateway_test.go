// internal/transport/gateway_test.go
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeGateway scripts the far side of the websocket. Writes are parsed as
// calls and answered through the respond function.
type fakeGateway struct {
	mu       sync.Mutex
	closed   bool
	inbox    chan []byte
	requests []gatewayRequest
	respond  func(req gatewayRequest) *gatewayResponse
}

func newFakeGateway(respond func(req gatewayRequest) *gatewayResponse) *fakeGateway {
	return &fakeGateway{
		inbox:   make(chan []byte, 16),
		respond: respond,
	}
}

func (f *fakeGateway) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbox
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return 1, data, nil
}

func (f *fakeGateway) WriteMessage(messageType int, data []byte) error {
	var req gatewayRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.respond != nil {
		if resp := f.respond(req); resp != nil {
			resp.UID = req.UID
			out, _ := json.Marshal(resp)
			f.inbox <- out
		}
	}
	return nil
}

func (f *fakeGateway) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbox)
	}
	return nil
}

func (f *fakeGateway) calls(name string) []gatewayRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gatewayRequest
	for _, req := range f.requests {
		if req.Call == name {
			out = append(out, req)
		}
	}
	return out
}

type fakeDialer struct {
	dials   int32
	failing bool
	conn    *fakeGateway
}

func (d *fakeDialer) DialContext(ctx context.Context, url string) (GatewayConn, error) {
	atomic.AddInt32(&d.dials, 1)
	if d.failing {
		return nil, errors.New("connection refused")
	}
	return d.conn, nil
}

func testGatewayClient(t *testing.T, respond func(req gatewayRequest) *gatewayResponse) (*GatewayClient, *fakeDialer) {
	t.Helper()
	dialer := &fakeDialer{conn: newFakeGateway(respond)}
	cfg := GatewayConfig{Host: "127.0.0.1", SecurePort: 8181, FallbackPort: 8182, CallTimeout: 2 * time.Second}
	client := NewGatewayClientWithDialer(cfg, dialer, insecureSigner{}, zap.NewNop())
	return client, dialer
}

func okResponder(req gatewayRequest) *gatewayResponse {
	switch req.Call {
	case "certificate":
		return nil
	case "printers.find":
		names, _ := json.Marshal([]string{"RPP02N-58", "Kitchen-BT"})
		return &gatewayResponse{Result: names}
	default:
		return &gatewayResponse{Result: json.RawMessage(`"ok"`)}
	}
}

func TestConnectSharesInflightAttempt(t *testing.T) {
	client, dialer := testGatewayClient(t, okResponder)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Connect(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("connect %d failed: %v", i, err)
		}
	}
	if dials := atomic.LoadInt32(&dialer.dials); dials != 1 {
		t.Errorf("expected exactly 1 dial, got %d", dials)
	}
	if !client.IsConnected() {
		t.Error("client not connected after successful connect")
	}
}

func TestConnectReusesEstablishedSession(t *testing.T) {
	client, dialer := testGatewayClient(t, okResponder)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("second connect failed: %v", err)
	}
	if dials := atomic.LoadInt32(&dialer.dials); dials != 1 {
		t.Errorf("established session redialed: %d dials", dials)
	}
}

func TestConnectFallsBackOnceThenFails(t *testing.T) {
	client, dialer := testGatewayClient(t, okResponder)
	dialer.failing = true

	err := client.Connect(context.Background())
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", err)
	}
	if dials := atomic.LoadInt32(&dialer.dials); dials != 2 {
		t.Errorf("expected secure try plus one fallback, got %d dials", dials)
	}
	if client.State() != StateDisconnected {
		t.Errorf("expected disconnected state, got %v", client.State())
	}
}

func TestListPrintersPreservesOrder(t *testing.T) {
	client, _ := testGatewayClient(t, okResponder)
	names, err := client.ListPrinters(context.Background())
	if err != nil {
		t.Fatalf("list printers failed: %v", err)
	}
	want := []string{"RPP02N-58", "Kitchen-BT"}
	if len(names) != len(want) {
		t.Fatalf("expected %d printers, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("printer %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPrintRawRejectsEmptyPayload(t *testing.T) {
	client, dialer := testGatewayClient(t, okResponder)
	err := client.PrintRaw(context.Background(), "RPP02N-58", "")
	if !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
	if dials := atomic.LoadInt32(&dialer.dials); dials != 0 {
		t.Error("empty payload reached the network")
	}
}

func TestPrintRawRetriesWithLegacyShape(t *testing.T) {
	var printCalls int32
	client, dialer := testGatewayClient(t, func(req gatewayRequest) *gatewayResponse {
		if req.Call != "print" {
			return okResponder(req)
		}
		if atomic.AddInt32(&printCalls, 1) == 1 {
			return &gatewayResponse{Error: "unsupported data format"}
		}
		return &gatewayResponse{Result: json.RawMessage(`"ok"`)}
	})

	if err := client.PrintRaw(context.Background(), "RPP02N-58", "\x1B\x40hello"); err != nil {
		t.Fatalf("print with fallback shape failed: %v", err)
	}

	prints := dialer.conn.calls("print")
	if len(prints) != 2 {
		t.Fatalf("expected 2 print calls, got %d", len(prints))
	}

	first, _ := json.Marshal(prints[0].Params)
	var primary struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(first, &primary); err != nil {
		t.Fatalf("primary send was not a plain string array: %v", err)
	}
	if len(primary.Data) != 1 || primary.Data[0] != "\x1B\x40hello" {
		t.Errorf("primary payload = %+v, want the flat string array", primary.Data)
	}

	second, _ := json.Marshal(prints[1].Params)
	var retried struct {
		Data []printItem `json:"data"`
	}
	if err := json.Unmarshal(second, &retried); err != nil {
		t.Fatalf("failed to parse retried params: %v", err)
	}
	if len(retried.Data) != 1 || retried.Data[0].Type != "raw" || retried.Data[0].Format != "plain" {
		t.Errorf("retry did not use the item record shape: %+v", retried.Data)
	}
}

func TestPrintRawGivesUpAfterOneRetry(t *testing.T) {
	var printCalls int32
	client, _ := testGatewayClient(t, func(req gatewayRequest) *gatewayResponse {
		if req.Call != "print" {
			return okResponder(req)
		}
		atomic.AddInt32(&printCalls, 1)
		return &gatewayResponse{Error: "printer offline"}
	})

	err := client.PrintRaw(context.Background(), "RPP02N-58", "payload")
	if !errors.Is(err, ErrPrintRejected) {
		t.Errorf("expected ErrPrintRejected, got %v", err)
	}
	if n := atomic.LoadInt32(&printCalls); n != 2 {
		t.Errorf("expected exactly 2 print attempts, got %d", n)
	}
}

func TestDisconnectFailsPendingCalls(t *testing.T) {
	client, _ := testGatewayClient(t, func(req gatewayRequest) *gatewayResponse {
		return nil // never answer
	})
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := client.ListPrinters(context.Background())
		done <- err
	}()

	// Give the call a moment to register before tearing down.
	time.Sleep(50 * time.Millisecond)
	if err := client.Disconnect(); err != nil {
		t.Fatalf("disconnect failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrConnectionFailed) {
			t.Errorf("expected ErrConnectionFailed for orphaned call, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending call never completed after disconnect")
	}
	if client.IsConnected() {
		t.Error("client still connected after disconnect")
	}
}
