// internal/printer/resolver_test.go
package printer

import (
	"errors"
	"regexp"
	"testing"
)

func TestResolveTargetMatchesHint(t *testing.T) {
	printers := []string{"RPP02N-58", "Kitchen-BT"}
	hints := []*regexp.Regexp{regexp.MustCompile("(?i)kitchen")}

	got, err := ResolveTarget(printers, hints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Kitchen-BT" {
		t.Errorf("expected Kitchen-BT, got %q", got)
	}
}

func TestResolveTargetHintOrderWins(t *testing.T) {
	printers := []string{"Front-58", "Kitchen-BT", "Bar-BT"}
	hints := []*regexp.Regexp{
		regexp.MustCompile("(?i)bar"),
		regexp.MustCompile("(?i)kitchen"),
	}
	got, err := ResolveTarget(printers, hints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bar-BT" {
		t.Errorf("expected first hint to win, got %q", got)
	}
}

func TestResolveTargetDefaultsToFirst(t *testing.T) {
	printers := []string{"RPP02N-58", "Kitchen-BT"}
	hints := []*regexp.Regexp{regexp.MustCompile("(?i)cashier")}

	got, err := ResolveTarget(printers, hints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "RPP02N-58" {
		t.Errorf("expected stable first-printer default, got %q", got)
	}
}

func TestResolveTargetEmptyList(t *testing.T) {
	_, err := ResolveTarget(nil, nil)
	if !errors.Is(err, ErrNoPrinterAvailable) {
		t.Errorf("expected ErrNoPrinterAvailable, got %v", err)
	}
}

func TestCompileHints(t *testing.T) {
	hints := CompileHints([]string{"kitchen", "", "(["})
	if len(hints) != 2 {
		t.Fatalf("expected 2 hints, got %d", len(hints))
	}
	if !hints[0].MatchString("KITCHEN-BT") {
		t.Error("hint is not case-insensitive")
	}
	if !hints[1].MatchString("name-([") {
		t.Error("invalid pattern not matched literally")
	}
}
