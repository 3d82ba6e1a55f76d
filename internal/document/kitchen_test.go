// internal/document/kitchen_test.go
package document

import (
	"strings"
	"testing"

	"print-service/internal/model"
)

func sampleKitchenTicket() *model.KitchenTicketData {
	return &model.KitchenTicketData{
		ShopName:    "Kopi Senja",
		OrderNumber: "ORD-0042",
		DateStr:     "2026-08-30 14:05",
		OrderType:   "Dine In",
		RollWidth:   model.RollWidth58,
		Items: []model.OrderLine{
			{Name: "Americano", Quantity: 2, Note: "extra hot"},
			{Name: "Ayam Bakar", Quantity: 1,
				Options: &model.ItemOptions{Cut: "Whole", Toppings: []string{"Sambal"}},
				Note:    "Cut: Whole | no cutlery | extra sambal"},
		},
	}
}

func TestFormatKitchenTicketDedupesNoteAgainstOptions(t *testing.T) {
	out := FormatKitchenTicket(sampleKitchenTicket(), DialectMarkup)

	if n := strings.Count(out, "Whole"); n != 1 {
		t.Errorf("expected option value once, got %d occurrences", n)
	}
	if n := strings.Count(out, "ambal"); n != 1 {
		t.Errorf("expected topping once, got %d occurrences", n)
	}
	if !strings.Contains(out, "* no cutlery") {
		t.Error("non-duplicate note fragment was dropped")
	}
}

func TestFormatKitchenTicketDropsInvalidLines(t *testing.T) {
	data := sampleKitchenTicket()
	data.Items = append(data.Items,
		model.OrderLine{Name: "Ghost", Quantity: 0},
		model.OrderLine{Name: "   ", Quantity: 1},
	)
	out := FormatKitchenTicket(data, DialectMarkup)
	if strings.Contains(out, "Ghost") {
		t.Error("zero-quantity line was printed")
	}
	if n := strings.Count(out, " x "); n != 2 {
		t.Errorf("expected 2 item lines, got %d", n)
	}
}

func TestFormatKitchenTicketHeader(t *testing.T) {
	out := FormatKitchenTicket(sampleKitchenTicket(), DialectMarkup)
	for _, want := range []string{"KITCHEN", "ORD-0042", "Dine In", "2 x Americano"} {
		if !strings.Contains(out, want) {
			t.Errorf("ticket missing %q", want)
		}
	}
}

func TestFormatKitchenTicketIsPure(t *testing.T) {
	data := sampleKitchenTicket()
	if FormatKitchenTicket(data, DialectControl) != FormatKitchenTicket(data, DialectControl) {
		t.Error("formatter output differs between identical calls")
	}
}
