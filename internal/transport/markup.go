// internal/transport/markup.go
package transport

import (
	"strings"

	"print-service/pkg/escpos"
)

// renderMarkup lowers the bracketed markup dialect to raw printer commands.
// Attached printers only speak control sequences, so markup documents are
// interpreted here line by line. Text without markup tags passes through
// untouched.
func renderMarkup(doc string) string {
	if !strings.Contains(doc, "[C]") && !strings.Contains(doc, "[L]") &&
		!strings.Contains(doc, "[R]") && !strings.Contains(doc, "<b>") {
		return doc
	}

	var out strings.Builder
	out.Write(escpos.Commands.Initialize)

	for _, line := range strings.Split(doc, "\n") {
		align := escpos.Commands.AlignLeft
		switch {
		case strings.HasPrefix(line, "[C]"):
			align = escpos.Commands.AlignCenter
			line = line[3:]
		case strings.HasPrefix(line, "[R]"):
			align = escpos.Commands.AlignRight
			line = line[3:]
		case strings.HasPrefix(line, "[L]"):
			line = line[3:]
		}
		out.Write(align)

		text, suffix := renderInline(&out, line)
		out.WriteString(text)
		out.Write(suffix)
		out.WriteString("\n")
	}

	out.Write(escpos.Commands.AlignLeft)
	out.Write(escpos.Commands.CutFull)
	return out.String()
}

// renderInline strips inline tags, writing the opening mode switches and
// returning the closing ones for the caller to append after the text.
func renderInline(out *strings.Builder, line string) (string, []byte) {
	type tag struct {
		open, close string
		on, off     []byte
	}
	tags := []tag{
		{"<b>", "</b>", escpos.Commands.BoldOn, escpos.Commands.BoldOff},
		{"<font size='big'>", "</font>", escpos.Commands.SizeDoubleBoth, escpos.Commands.SizeNormal},
		{"<u>", "</u>", escpos.Commands.UnderlineOn, escpos.Commands.UnderlineOff},
	}

	var suffix []byte
	for _, t := range tags {
		if strings.Contains(line, t.open) {
			out.Write(t.on)
			line = strings.ReplaceAll(line, t.open, "")
			line = strings.ReplaceAll(line, t.close, "")
			suffix = append(suffix, t.off...)
		}
	}
	// QR tags carry content the attached printer cannot rasterize from
	// markup; print the content as plain text instead.
	if strings.Contains(line, "<qrcode") {
		if start := strings.Index(line, ">"); start >= 0 {
			line = strings.TrimSuffix(line[start+1:], "</qrcode>")
		}
	}
	return line, suffix
}
