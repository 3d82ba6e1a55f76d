// internal/document/receipt_test.go
package document

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"print-service/internal/model"
)

func sampleReceipt() *model.ReceiptData {
	return &model.ReceiptData{
		ShopName:    "Kopi Senja",
		Address:     "Jl. Melati 12",
		OrderNumber: "ORD-0042",
		DateStr:     "2026-08-30 14:05",
		OrderType:   "Dine In",
		Items: []model.OrderLine{
			{Name: "Americano", Quantity: 1, Price: decimal.NewFromInt(20000)},
			{Name: "Iced Latte", Quantity: 1, Price: decimal.NewFromInt(25000)},
		},
		Subtotal:  decimal.NewFromInt(45000),
		Tax:       decimal.NewFromInt(4500),
		Service:   decimal.NewFromInt(2250),
		Total:     decimal.NewFromInt(51750),
		Payment:   "CASH",
		RollWidth: model.RollWidth58,
	}
}

func TestFormatReceiptContents(t *testing.T) {
	out := FormatReceipt(sampleReceipt(), DialectControl)

	for _, want := range []string{"Kopi Senja", "ORD-0042", "Americano", "Iced Latte", "Rp.20000.00", "Rp.51750.00", "CASH"} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt missing %q", want)
		}
	}
	if n := strings.Count(out, "TOTAL"); n != 1 {
		t.Errorf("expected exactly one TOTAL line, got %d", n)
	}
	if n := strings.Count(out, "1 x Rp."); n != 2 {
		t.Errorf("expected 2 item quantity rows, got %d", n)
	}
}

func TestFormatReceiptIsPure(t *testing.T) {
	data := sampleReceipt()
	first := FormatReceipt(data, DialectControl)
	second := FormatReceipt(data, DialectControl)
	if first != second {
		t.Error("formatter output differs between identical calls")
	}
}

func TestFormatReceiptDiscountOnlyWhenPositive(t *testing.T) {
	data := sampleReceipt()
	out := FormatReceipt(data, DialectControl)
	if strings.Contains(out, "Discount") {
		t.Error("discount line printed for zero discount")
	}

	data.Discount = decimal.NewFromInt(5000)
	out = FormatReceipt(data, DialectControl)
	if !strings.Contains(out, "Discount") || !strings.Contains(out, "-Rp.5000.00") {
		t.Error("missing negated discount line")
	}
}

func TestFormatReceiptBlankItemName(t *testing.T) {
	data := sampleReceipt()
	data.Items = append(data.Items, model.OrderLine{Name: "  ", Quantity: 1, Price: decimal.NewFromInt(1000)})
	out := FormatReceipt(data, DialectControl)
	if !strings.Contains(out, "Item") {
		t.Error("blank item name not replaced with placeholder")
	}
}

func TestFormatReceiptMarkupDialect(t *testing.T) {
	out := FormatReceipt(sampleReceipt(), DialectMarkup)
	if strings.Contains(out, "\x1B") {
		t.Error("markup document contains raw escape bytes")
	}
	if !strings.Contains(out, "[C]") {
		t.Error("markup document missing alignment tags")
	}
}

func TestFormatReceiptWidth80(t *testing.T) {
	data := sampleReceipt()
	data.RollWidth = model.RollWidth80
	out := FormatReceipt(data, DialectControl)
	if !strings.Contains(out, strings.Repeat("-", 42)) {
		t.Error("80mm receipt separator is not 42 columns")
	}
}
