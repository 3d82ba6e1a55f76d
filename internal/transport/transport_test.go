// internal/transport/transport_test.go
package transport

import "testing"

func TestNormalizePayloadFlattensNestedFragments(t *testing.T) {
	got := NormalizePayload("[C]Shop\n", []any{nil, "[L]item\n", []string{"[L]note\n"}}, []byte("[C]---\n"))
	want := "[C]Shop\n[L]item\n[L]note\n[C]---\n"
	if got != want {
		t.Errorf("NormalizePayload = %q, want %q", got, want)
	}
}

func TestNormalizePayloadEmptyInput(t *testing.T) {
	if got := NormalizePayload(nil, []any{nil, ""}, ""); got != "" {
		t.Errorf("expected empty normalization, got %q", got)
	}
	if got := NormalizePayload(); got != "" {
		t.Errorf("expected empty normalization for no fragments, got %q", got)
	}
}
