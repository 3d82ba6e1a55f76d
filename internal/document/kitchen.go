// internal/document/kitchen.go
package document

import (
	"fmt"

	"print-service/internal/model"
)

// FormatKitchenTicket renders a kitchen ticket. Lines with a non-positive
// quantity or a blank name are dropped, and note fragments restating a
// structured option are suppressed so the cook reads each instruction once.
func FormatKitchenTicket(data *model.KitchenTicketData, dialect Dialect) string {
	b := NewBuilder(dialect, data.RollWidth).Init()

	b.CenterDouble("KITCHEN")
	b.CenterDouble(orDefault(data.OrderNumber, "N/A"))
	if data.OrderType != "" {
		b.CenterBold(data.OrderType)
	}
	b.Center(orDefault(data.DateStr, "N/A"))
	if data.Customer != nil && data.Customer.Name != "" {
		b.Center(data.Customer.Name)
	}
	b.Separator()

	for _, item := range data.Items {
		if item.Quantity <= 0 || orDefault(item.Name, "") == "" {
			continue
		}
		b.Bold(fmt.Sprintf("%d x %s", item.Quantity, item.Name))
		if summary := optionSummary(item.Options); summary != "" {
			b.Left("  " + summary)
		}
		for _, frag := range noteFragments(SanitizeNote(item.Note), item.Options) {
			b.Left("  * " + frag)
		}
	}
	b.Separator()

	return b.Cut().String()
}
