// internal/printer/resolver.go
package printer

import (
	"errors"
	"regexp"
)

// ErrNoPrinterAvailable is returned when resolution runs against an empty
// printer list.
var ErrNoPrinterAvailable = errors.New("no printer available")

// ResolveTarget picks a printer name from the available list. Hints are
// tried in order and the first printer matching a hint wins; with no match
// the first listed printer is the stable default. Resolution never touches
// hardware, it only inspects names.
func ResolveTarget(printers []string, hints []*regexp.Regexp) (string, error) {
	if len(printers) == 0 {
		return "", ErrNoPrinterAvailable
	}
	for _, hint := range hints {
		if hint == nil {
			continue
		}
		for _, name := range printers {
			if hint.MatchString(name) {
				return name, nil
			}
		}
	}
	return printers[0], nil
}

// CompileHints builds case-insensitive hints from plain substrings, skipping
// blanks. Invalid patterns are escaped and matched literally.
func CompileHints(patterns []string) []*regexp.Regexp {
	var hints []*regexp.Regexp
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(p))
		}
		hints = append(hints, re)
	}
	return hints
}
