// internal/document/receipt.go
package document

import (
	"fmt"

	"print-service/internal/model"
)

// FormatReceipt renders a customer receipt in the requested dialect. The
// function is pure: the same data always yields the same string, and no
// transport or device state is touched.
func FormatReceipt(data *model.ReceiptData, dialect Dialect) string {
	b := NewBuilder(dialect, data.RollWidth).Init()

	b.CenterDouble(orDefault(data.ShopName, "N/A"))
	if data.Address != "" {
		b.Center(data.Address)
	}
	b.Separator()

	b.Row("Order", orDefault(data.OrderNumber, "N/A"))
	b.Row("Date", orDefault(data.DateStr, "N/A"))
	if data.OrderType != "" {
		b.Row("Type", data.OrderType)
	}
	if data.Customer != nil && data.Customer.Name != "" {
		b.Row("Customer", data.Customer.Name)
	}
	b.Separator()

	for _, item := range data.Items {
		name := orDefault(item.Name, "Item")
		b.Left(name)
		qty := fmt.Sprintf("%d x %s", item.Quantity, money(item.Price))
		b.Row(qty, money(item.LineTotal()))
		if note := SanitizeNote(item.Note); note != "" {
			b.Left("  " + note)
		}
	}
	b.Separator()

	b.Row("Subtotal", money(data.Subtotal))
	if data.Tax.IsPositive() {
		b.Row("Tax", money(data.Tax))
	}
	if data.Service.IsPositive() {
		b.Row("Service", money(data.Service))
	}
	if data.Discount.IsPositive() {
		b.Row("Discount", "-"+money(data.Discount))
	}
	b.BoldRow("TOTAL", money(data.Total))
	if data.Payment != "" {
		b.Row("Payment", data.Payment)
	}
	b.Separator()

	if data.QRContent != "" {
		b.QR(data.QRContent)
	}
	if data.Footer != "" {
		b.Center(data.Footer)
	}
	b.Center("Thank you!")

	return b.Cut().String()
}
