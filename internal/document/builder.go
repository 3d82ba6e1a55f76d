// internal/document/builder.go
package document

import (
	"strings"

	"github.com/shopspring/decimal"

	"print-service/internal/model"
	"print-service/pkg/escpos"
)

// Dialect selects the output form of a document.
type Dialect int

const (
	// DialectControl emits raw ESC/POS escape sequences for direct
	// transport to a physical printer.
	DialectControl Dialect = iota
	// DialectMarkup emits bracketed markup ([C]/[L]/[R], <b>) for a
	// bridge that interprets the markup itself.
	DialectMarkup
)

// Builder accumulates semantic line and row operations into a single flat
// document string. It is flushed once via String; all operations are
// append-only and never fail.
type Builder struct {
	dialect Dialect
	width   int
	buf     strings.Builder
}

// NewBuilder creates a builder for the given dialect and roll width.
func NewBuilder(dialect Dialect, width model.RollWidth) *Builder {
	return &Builder{
		dialect: dialect,
		width:   width.Columns(),
	}
}

// Width returns the column count the builder pads rows to.
func (b *Builder) Width() int { return b.width }

// Init starts the document: printer reset, charset and roll width for the
// control dialect, nothing for markup.
func (b *Builder) Init() *Builder {
	if b.dialect == DialectControl {
		b.buf.Write(escpos.Commands.Initialize)
		b.buf.Write(escpos.Commands.CharsetPC437)
		if b.width <= model.RollWidth58.Columns() {
			b.buf.Write(escpos.Commands.SetWidth58)
		} else {
			b.buf.Write(escpos.Commands.SetWidth80)
		}
	}
	return b
}

// Left appends a left-aligned text line.
func (b *Builder) Left(text string) *Builder {
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[L]" + text + "\n")
		return b
	}
	b.buf.Write(escpos.Commands.AlignLeft)
	b.buf.WriteString(text + "\n")
	return b
}

// Center appends a centered text line.
func (b *Builder) Center(text string) *Builder {
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[C]" + text + "\n")
		return b
	}
	b.buf.Write(escpos.Commands.AlignCenter)
	b.buf.WriteString(text + "\n")
	b.buf.Write(escpos.Commands.AlignLeft)
	return b
}

// CenterBold appends a centered bold line.
func (b *Builder) CenterBold(text string) *Builder {
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[C]<b>" + text + "</b>\n")
		return b
	}
	b.buf.Write(escpos.Commands.AlignCenter)
	b.buf.Write(escpos.Commands.BoldOn)
	b.buf.WriteString(text + "\n")
	b.buf.Write(escpos.Commands.BoldOff)
	b.buf.Write(escpos.Commands.AlignLeft)
	return b
}

// CenterDouble appends a centered double-size line, used for headers.
func (b *Builder) CenterDouble(text string) *Builder {
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[C]<font size='big'>" + text + "</font>\n")
		return b
	}
	b.buf.Write(escpos.Commands.AlignCenter)
	b.buf.Write(escpos.Commands.SizeDoubleBoth)
	b.buf.WriteString(text + "\n")
	b.buf.Write(escpos.Commands.SizeNormal)
	b.buf.Write(escpos.Commands.AlignLeft)
	return b
}

// Bold appends a left-aligned bold line.
func (b *Builder) Bold(text string) *Builder {
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[L]<b>" + text + "</b>\n")
		return b
	}
	b.buf.Write(escpos.Commands.BoldOn)
	b.buf.WriteString(text + "\n")
	b.buf.Write(escpos.Commands.BoldOff)
	return b
}

// Row appends a two-column row padded to the builder width.
func (b *Builder) Row(left, right string) *Builder {
	return b.Left(lr(left, right, b.width))
}

// BoldRow appends a two-column row in bold.
func (b *Builder) BoldRow(left, right string) *Builder {
	return b.Bold(lr(left, right, b.width))
}

// Separator appends a full-width dashed rule.
func (b *Builder) Separator() *Builder {
	return b.Left(strings.Repeat("-", b.width))
}

// Feed appends n blank lines.
func (b *Builder) Feed(n int) *Builder {
	for i := 0; i < n; i++ {
		b.buf.WriteString("\n")
	}
	return b
}

// Raster embeds a pre-built raster command. Markup documents carry no
// binary data, so the call is a no-op there.
func (b *Builder) Raster(cmd []byte) *Builder {
	if b.dialect == DialectControl && len(cmd) > 0 {
		b.buf.Write(escpos.Commands.AlignCenter)
		b.buf.Write(cmd)
		b.buf.Write(escpos.Commands.LineFeed)
		b.buf.Write(escpos.Commands.AlignLeft)
	}
	return b
}

// QR embeds a QR code for the content, as a raster in the control dialect
// and as a tag in markup. Generation failures drop the block silently so
// the document as a whole never fails.
func (b *Builder) QR(content string) *Builder {
	if content == "" {
		return b
	}
	if b.dialect == DialectMarkup {
		b.buf.WriteString("[C]<qrcode size='20'>" + content + "</qrcode>\n")
		return b
	}
	maxDots := escpos.MaxDots58
	if b.width > model.RollWidth58.Columns() {
		maxDots = escpos.MaxDots80
	}
	if cmd, err := escpos.QRRaster(content, maxDots); err == nil {
		b.Raster(cmd)
	}
	return b
}

// Cut finishes the document: feed and cut for the control dialect, trailing
// feeds for markup.
func (b *Builder) Cut() *Builder {
	b.Feed(3)
	if b.dialect == DialectControl {
		b.buf.Write(escpos.Commands.CutFull)
	}
	return b
}

// String flushes the accumulated document.
func (b *Builder) String() string {
	return b.buf.String()
}

// lr lays out a two-column row padded to width characters. When the two
// sides would overlap the padding clamps to a single space; the row is then
// wider than the roll and wraps on paper, which beats losing characters.
func lr(left, right string, width int) string {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// money renders an amount with the rupiah prefix and two decimals.
func money(amount decimal.Decimal) string {
	return "Rp." + amount.StringFixed(2)
}

// orDefault substitutes fallback for blank values.
func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
