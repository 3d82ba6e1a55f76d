// pkg/escpos/commands.go
package escpos

// Commands contains the ESC/POS command sequences shared by the thermal
// printers this service targets.
var Commands = struct {
	// Basic commands
	Initialize    []byte
	StatusRequest []byte

	// Text formatting
	BoldOn       []byte
	BoldOff      []byte
	UnderlineOn  []byte
	UnderlineOff []byte
	TextReset    []byte

	// Text size
	SizeNormal       []byte
	SizeDoubleWidth  []byte
	SizeDoubleHeight []byte
	SizeDoubleBoth   []byte

	// Text alignment
	AlignLeft   []byte
	AlignCenter []byte
	AlignRight  []byte

	// Character sets
	CharsetPC437 []byte
	CharsetPC850 []byte

	// Paper handling
	LineFeed   []byte
	FeedLines  []byte // + line count byte
	SetWidth58 []byte
	SetWidth80 []byte

	// Cutting
	CutFull    []byte
	CutPartial []byte

	// Cash drawer
	DrawerKickPin2 []byte
	DrawerKickPin5 []byte
}{
	// Basic commands
	Initialize:    []byte{0x1B, 0x40},       // ESC @
	StatusRequest: []byte{0x10, 0x04, 0x01}, // DLE EOT 1

	// Text formatting
	BoldOn:       []byte{0x1B, 0x45, 0x01}, // ESC E 1
	BoldOff:      []byte{0x1B, 0x45, 0x00}, // ESC E 0
	UnderlineOn:  []byte{0x1B, 0x2D, 0x01}, // ESC - 1
	UnderlineOff: []byte{0x1B, 0x2D, 0x00}, // ESC - 0
	TextReset:    []byte{0x1B, 0x21, 0x00}, // ESC ! 0

	// Text size
	SizeNormal:       []byte{0x1D, 0x21, 0x00}, // GS ! 0
	SizeDoubleWidth:  []byte{0x1D, 0x21, 0x20}, // GS ! 32
	SizeDoubleHeight: []byte{0x1D, 0x21, 0x10}, // GS ! 16
	SizeDoubleBoth:   []byte{0x1D, 0x21, 0x30}, // GS ! 48

	// Text alignment
	AlignLeft:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	AlignCenter: []byte{0x1B, 0x61, 0x01}, // ESC a 1
	AlignRight:  []byte{0x1B, 0x61, 0x02}, // ESC a 2

	// Character sets
	CharsetPC437: []byte{0x1B, 0x74, 0x00}, // ESC t 0
	CharsetPC850: []byte{0x1B, 0x74, 0x02}, // ESC t 2

	// Paper handling
	LineFeed:   []byte{0x0A},                   // LF
	FeedLines:  []byte{0x1B, 0x64},             // ESC d + n
	SetWidth58: []byte{0x1D, 0x57, 0x40, 0x01}, // GS W 320
	SetWidth80: []byte{0x1D, 0x57, 0x00, 0x02}, // GS W 512

	// Cutting
	CutFull:    []byte{0x1D, 0x56, 0x00}, // GS V 0
	CutPartial: []byte{0x1D, 0x56, 0x01}, // GS V 1

	// Cash drawer
	DrawerKickPin2: []byte{0x1B, 0x70, 0x00, 0x19, 0x19}, // ESC p 0 25 25
	DrawerKickPin5: []byte{0x1B, 0x70, 0x01, 0x19, 0x19}, // ESC p 1 25 25
}

// SetDensity returns the print density command for levels 1..5.
// Out-of-range levels fall back to the printer default (3).
func SetDensity(level int) []byte {
	if level < 1 || level > 5 {
		level = 3
	}
	// GS ( K pL pH fn m
	return []byte{0x1D, 0x28, 0x4B, 0x02, 0x00, 0x31, byte(level)}
}
