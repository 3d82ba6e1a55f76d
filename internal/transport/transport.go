// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common transport errors. Callers match them with errors.Is.
var (
	// ErrBridgeUnavailable means no attached printer port was found.
	ErrBridgeUnavailable = errors.New("printer bridge unavailable")
	// ErrConnectionFailed means neither the secure nor the fallback
	// gateway endpoint accepted a connection.
	ErrConnectionFailed = errors.New("gateway connection failed")
	// ErrEmptyPayload means a print was requested with nothing to print.
	ErrEmptyPayload = errors.New("empty print payload")
	// ErrPrintRejected means the gateway refused a print call.
	ErrPrintRejected = errors.New("print call rejected")
	// ErrBridgePrintFailed means the bridge accepted the job but the
	// write to the printer port failed.
	ErrBridgePrintFailed = errors.New("bridge print failed")
)

// PrintRequest is a single job handed to a transport. Payload is a fully
// formatted document in whichever dialect the transport consumes.
type PrintRequest struct {
	Target  string `json:"target"`
	Payload string `json:"payload"`
	Copies  int    `json:"copies"`
	LogoRef string `json:"logo_ref,omitempty"`
}

// Result reports a best-effort operation without raising an error.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// PrinterTransport is a way of getting bytes onto paper. The service keeps
// an ordered list of transports and dispatches to the first available one.
type PrinterTransport interface {
	Name() string
	Available(ctx context.Context) bool
	ListPrinters(ctx context.Context) ([]string, error)
	Print(ctx context.Context, req PrintRequest) error
}

// NormalizePayload coerces a payload into the single flat string the
// transports send. Nested slices are flattened in order, nil entries
// become empty strings and anything else is stringified; all-empty input
// normalizes to "".
func NormalizePayload(fragments ...any) string {
	var out strings.Builder
	for _, f := range fragments {
		flattenPayload(&out, f)
	}
	return out.String()
}

func flattenPayload(out *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		out.WriteString(t)
	case []byte:
		out.Write(t)
	case []string:
		for _, s := range t {
			out.WriteString(s)
		}
	case []any:
		for _, e := range t {
			flattenPayload(out, e)
		}
	case fmt.Stringer:
		out.WriteString(t.String())
	default:
		fmt.Fprintf(out, "%v", t)
	}
}
