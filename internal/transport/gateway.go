// internal/transport/gateway.go
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-service/pkg/escpos"
)

// ConnectionState tracks the gateway session lifecycle.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// devCertificate is the built-in development certificate presented to the
// gateway when no custom certificate is configured. Gateways in insecure
// mode accept it with an untrusted-origin prompt.
const devCertificate = `-----BEGIN CERTIFICATE-----
MIIBszCCARwCCQDnbZ9XAmDpdjANBgkqhkiG9w0BAQsFADAeMRwwGgYDVQQDDBNw
cmludC1zZXJ2aWNlLWxvY2FsMB4XDTI0MDEwMTAwMDAwMFoXDTM0MDEwMTAwMDAw
MFowHjEcMBoGA1UEAwwTcHJpbnQtc2VydmljZS1sb2NhbDCBnzANBgkqhkiG9w0B
AQEFAAOBjQAwgYkCgYEAxq81KzridTE+UMNgyB0brXTTo/rQqKnxHbcS1cmvXTXT
sVW8oBN3VioRkkVZeSEpGq6t2idJhbX1jzT87R/1yCLb0uskogAR7a1g3TBjBXQz
bC4a1r19VJOq4Jos5aWHlX1ZYJoBK1ZJLEX6F31vUKS4ZSJTgQ7UWnMxWBW2ma8C
AwEAATANBgkqhkiG9w0BAQsFAAOBgQB3E+yncab7obEEOoBXyYDxF1JSTD9HdAVW
Ic889BrzNw+mW4cK4ItRV9fFvHrbBONbrLf4twmMBdC5DSv2R+QJzVsIenWYGMRq
sxhqhnbBBBE8erc1AcWkJJ3BBDiz9tdu9LbK4wSAJtj4M3Zap7eMXvNTK++0Mepo
5zpyXUPVlg==
-----END CERTIFICATE-----`

// Signer produces a detached signature over a gateway call payload. The
// gateway validates signatures against the presented certificate.
type Signer interface {
	Sign(ctx context.Context, payload string) (string, error)
}

// RemoteSigner signs payloads by POSTing them to an HTTP endpoint that
// holds the private key, so the key never lives next to the service.
type RemoteSigner struct {
	Endpoint string
	Client   *http.Client
}

func (rs *RemoteSigner) Sign(ctx context.Context, payload string) (string, error) {
	client := rs.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rs.Endpoint, bytes.NewBufferString(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build signing request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("signing endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signing endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}
	return string(bytes.TrimSpace(body)), nil
}

// insecureSigner is used with the development certificate. The gateway
// treats unsigned calls from a dev certificate as untrusted but allowed.
type insecureSigner struct{}

func (insecureSigner) Sign(ctx context.Context, payload string) (string, error) {
	return "", nil
}

// GatewayConn is the subset of a websocket connection the client needs.
type GatewayConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// GatewayDialer opens a gateway connection for a URL.
type GatewayDialer interface {
	DialContext(ctx context.Context, url string) (GatewayConn, error)
}

type wsDialer struct{}

func (wsDialer) DialContext(ctx context.Context, url string) (GatewayConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		// The gateway serves a self-signed localhost certificate.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// GatewayConfig holds the connection settings for the desktop print
// gateway.
type GatewayConfig struct {
	Host         string        `mapstructure:"host"`
	SecurePort   int           `mapstructure:"secure_port"`
	FallbackPort int           `mapstructure:"fallback_port"`
	Certificate  string        `mapstructure:"certificate"`
	SignerURL    string        `mapstructure:"signer_url"`
	CallTimeout  time.Duration `mapstructure:"call_timeout"`
}

type gatewayRequest struct {
	UID         string      `json:"uid"`
	Call        string      `json:"call"`
	Params      interface{} `json:"params,omitempty"`
	Certificate string      `json:"certificate,omitempty"`
	Signature   string      `json:"signature,omitempty"`
	Timestamp   int64       `json:"timestamp,omitempty"`
}

type gatewayResponse struct {
	UID    string          `json:"uid"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

type pendingCall struct {
	result json.RawMessage
	err    error
}

// GatewayClient talks to a desktop print gateway over a websocket. A single
// client is shared by all callers; concurrent connect attempts collapse
// into one dial.
type GatewayClient struct {
	cfg    GatewayConfig
	dialer GatewayDialer
	signer Signer
	logger *zap.Logger

	mu         sync.Mutex
	state      ConnectionState
	conn       GatewayConn
	connecting chan struct{}
	connectErr error
	pending    map[string]chan pendingCall
}

// NewGatewayClient creates a client for the configured gateway. A nil
// signer falls back to unsigned calls with the development certificate.
func NewGatewayClient(cfg GatewayConfig, logger *zap.Logger) *GatewayClient {
	var signer Signer = insecureSigner{}
	if cfg.SignerURL != "" {
		signer = &RemoteSigner{Endpoint: cfg.SignerURL}
	}
	if cfg.Certificate == "" {
		cfg.Certificate = devCertificate
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	return &GatewayClient{
		cfg:     cfg,
		dialer:  wsDialer{},
		signer:  signer,
		logger:  logger,
		pending: make(map[string]chan pendingCall),
	}
}

// NewGatewayClientWithDialer is like NewGatewayClient but with an explicit
// dialer and signer, used by tests.
func NewGatewayClientWithDialer(cfg GatewayConfig, dialer GatewayDialer, signer Signer, logger *zap.Logger) *GatewayClient {
	c := NewGatewayClient(cfg, logger)
	if dialer != nil {
		c.dialer = dialer
	}
	if signer != nil {
		c.signer = signer
	}
	return c
}

// State returns the current connection state.
func (c *GatewayClient) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether a session is established.
func (c *GatewayClient) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect establishes the gateway session. An established session is reused
// as-is. When a connect is already in flight, the caller waits for that
// attempt instead of dialing again, so N concurrent callers produce exactly
// one dial. The secure endpoint is tried first, then the unsecured fallback
// once.
func (c *GatewayClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	if c.connecting != nil {
		wait := c.connecting
		c.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
		err := c.connectErr
		c.mu.Unlock()
		return err
	}

	done := make(chan struct{})
	c.connecting = done
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.dial(ctx)

	c.mu.Lock()
	c.connectErr = err
	c.connecting = nil
	if err != nil {
		c.state = StateDisconnected
	} else {
		c.state = StateConnected
		c.conn = conn
		go c.readPump(conn)
	}
	c.mu.Unlock()
	close(done)
	return err
}

func (c *GatewayClient) dial(ctx context.Context) (GatewayConn, error) {
	urls := []string{
		fmt.Sprintf("wss://%s:%d", c.cfg.Host, c.cfg.SecurePort),
		fmt.Sprintf("ws://%s:%d", c.cfg.Host, c.cfg.FallbackPort),
	}

	var lastErr error
	for _, url := range urls {
		conn, err := c.dialer.DialContext(ctx, url)
		if err != nil {
			lastErr = err
			c.logger.Warn("Gateway endpoint unreachable",
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		if err := c.handshake(conn); err != nil {
			conn.Close()
			lastErr = err
			continue
		}
		c.logger.Info("Gateway connected", zap.String("url", url))
		return conn, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, lastErr)
}

// handshake presents the certificate before any signed call is made.
func (c *GatewayClient) handshake(conn GatewayConn) error {
	msg := gatewayRequest{
		UID:         uuid.New().String(),
		Call:        "certificate",
		Certificate: c.cfg.Certificate,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal handshake: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("handshake write failed: %w", err)
	}
	return nil
}

// readPump consumes gateway responses and routes them to the waiting call
// by uid. A read error tears the session down and fails every pending call.
func (c *GatewayClient) readPump(conn GatewayConn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.teardown(conn, err)
			return
		}

		var resp gatewayResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Warn("Unparseable gateway message", zap.Error(err))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.UID]
		if ok {
			delete(c.pending, resp.UID)
		}
		c.mu.Unlock()
		if !ok {
			continue
		}

		if resp.Error != "" {
			ch <- pendingCall{err: fmt.Errorf("%w: %s", ErrPrintRejected, resp.Error)}
		} else {
			ch <- pendingCall{result: resp.Result}
		}
	}
}

func (c *GatewayClient) teardown(conn GatewayConn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = StateDisconnected
	}
	orphaned := c.pending
	c.pending = make(map[string]chan pendingCall)
	c.mu.Unlock()

	conn.Close()
	for _, ch := range orphaned {
		ch <- pendingCall{err: fmt.Errorf("%w: connection lost: %v", ErrConnectionFailed, cause)}
	}
	if cause != nil {
		c.logger.Warn("Gateway connection lost", zap.Error(cause))
	}
}

// Disconnect closes the session.
func (c *GatewayClient) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	c.teardown(conn, nil)
	return nil
}

// call performs one signed request/response round trip.
func (c *GatewayClient) call(ctx context.Context, name string, params interface{}) (json.RawMessage, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	req := gatewayRequest{
		UID:       uuid.New().String(),
		Call:      name,
		Params:    params,
		Timestamp: time.Now().UnixMilli(),
	}
	signature, err := c.signer.Sign(ctx, fmt.Sprintf("%s|%d", name, req.Timestamp))
	if err != nil {
		return nil, fmt.Errorf("failed to sign call %s: %w", name, err)
	}
	req.Signature = signature

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call %s: %w", name, err)
	}

	ch := make(chan pendingCall, 1)
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrConnectionFailed
	}
	c.pending[req.UID] = ch
	c.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.mu.Lock()
		delete(c.pending, req.UID)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: write failed: %v", ErrConnectionFailed, err)
	}

	timeout := time.NewTimer(c.cfg.CallTimeout)
	defer timeout.Stop()
	select {
	case res := <-ch:
		return res.result, res.err
	case <-timeout.C:
		c.mu.Lock()
		delete(c.pending, req.UID)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: call %s timed out", ErrConnectionFailed, name)
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.UID)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// ListPrinters returns the gateway's printer names in the order the
// gateway reports them.
func (c *GatewayClient) ListPrinters(ctx context.Context) ([]string, error) {
	result, err := c.call(ctx, "printers.find", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, fmt.Errorf("unexpected printer list payload: %w", err)
	}
	return names, nil
}

type printItem struct {
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
	Flavor string `json:"flavor,omitempty"`
	Data   string `json:"data"`
}

type printParams struct {
	Printer struct {
		Name string `json:"name"`
	} `json:"printer"`
	Data any `json:"data"`
}

// PrintRaw sends a raw document to the named printer. An empty payload is
// rejected before any network traffic. The primary send is a plain string
// array; if the gateway rejects that shape the call is retried once with
// each string wrapped as an explicit raw item record.
func (c *GatewayClient) PrintRaw(ctx context.Context, printerName, payload string) error {
	payload = NormalizePayload(payload)
	if payload == "" {
		return ErrEmptyPayload
	}

	params := printParams{}
	params.Printer.Name = printerName
	params.Data = []string{payload}

	_, err := c.call(ctx, "print", params)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrPrintRejected) {
		return err
	}

	c.logger.Warn("Print rejected, retrying with explicit item shape",
		zap.String("printer", printerName),
		zap.Error(err))

	params.Data = []printItem{{
		Type:   "raw",
		Format: "plain",
		Data:   payload,
	}}
	_, err = c.call(ctx, "print", params)
	return err
}

// PrintImageAndRaw rasterizes an image file, prepends it to the payload and
// sends everything as one job, so the logo and the text come out on the
// same cut.
func (c *GatewayClient) PrintImageAndRaw(ctx context.Context, printerName, imagePath, payload string) error {
	raster, err := escpos.RasterFromFile(imagePath, escpos.MaxDots58)
	if err != nil {
		c.logger.Warn("Logo raster failed, printing text only",
			zap.String("path", imagePath),
			zap.Error(err))
		return c.PrintRaw(ctx, printerName, payload)
	}
	return c.PrintRaw(ctx, printerName, string(raster)+payload)
}

// Name implements PrinterTransport.
func (c *GatewayClient) Name() string { return "gateway" }

// Available implements PrinterTransport by attempting a connect.
func (c *GatewayClient) Available(ctx context.Context) bool {
	return c.Connect(ctx) == nil
}

// Print implements PrinterTransport.
func (c *GatewayClient) Print(ctx context.Context, req PrintRequest) error {
	copies := req.Copies
	if copies < 1 {
		copies = 1
	}
	for i := 0; i < copies; i++ {
		var err error
		if req.LogoRef != "" {
			err = c.PrintImageAndRaw(ctx, req.Target, req.LogoRef, req.Payload)
		} else {
			err = c.PrintRaw(ctx, req.Target, req.Payload)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
