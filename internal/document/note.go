// internal/document/note.go
package document

import (
	"strings"

	"print-service/internal/model"
)

const maxNoteLen = 140

// SanitizeNote flattens control characters to spaces, collapses runs of
// whitespace and truncates to the printable limit with an ellipsis marker.
// Truncation counts runes, not bytes, so a multi-byte character is never
// cut in half.
func SanitizeNote(note string) string {
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	note = replacer.Replace(note)
	note = strings.Join(strings.Fields(note), " ")
	if runes := []rune(note); len(runes) > maxNoteLen {
		note = string(runes[:maxNoteLen-3]) + "..."
	}
	return note
}

// noteFragments splits a free-text note on the "|" delimiter and drops
// fragments that restate a structured option value, so a ticket never says
// the same thing twice.
func noteFragments(note string, opts *model.ItemOptions) []string {
	var out []string
	for _, frag := range strings.Split(note, "|") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		if opts != nil && restatesOption(frag, opts) {
			continue
		}
		out = append(out, frag)
	}
	return out
}

func restatesOption(frag string, opts *model.ItemOptions) bool {
	f := strings.ToLower(frag)
	for _, v := range []string{opts.Sugar, opts.Ice, opts.Temperature, opts.Flavor, opts.Cut} {
		if v != "" && strings.Contains(f, strings.ToLower(v)) {
			return true
		}
	}
	for _, t := range opts.Toppings {
		if t != "" && strings.Contains(f, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// optionSummary renders the structured options as a single pipe-delimited
// line. An all-empty option set yields "".
func optionSummary(opts *model.ItemOptions) string {
	if opts == nil || opts.IsZero() {
		return ""
	}
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Sugar", opts.Sugar)
	add("Ice", opts.Ice)
	add("Temp", opts.Temperature)
	add("Flavor", opts.Flavor)
	add("Cut", opts.Cut)
	if len(opts.Toppings) > 0 {
		parts = append(parts, "Topping: "+strings.Join(opts.Toppings, ", "))
	}
	return strings.Join(parts, " | ")
}
