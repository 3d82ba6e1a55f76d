// internal/document/settlement.go
package document

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"print-service/internal/model"
)

// FormatSettlement renders a settlement report. Map sections are emitted in
// sorted key order so the output is deterministic.
func FormatSettlement(data *model.SettlementData, dialect Dialect) string {
	b := NewBuilder(dialect, data.RollWidth).Init()

	b.CenterDouble("SETTLEMENT")
	b.Center(orDefault(data.ShopName, "N/A"))
	b.Center(orDefault(data.PeriodLabel, "N/A"))
	b.Center("Generated " + orDefault(data.GeneratedAt, "N/A"))
	b.Separator()

	b.Row("Orders", fmt.Sprintf("%d", data.OrderCount))
	for _, status := range sortedStatuses(data.CountsByStatus) {
		b.Row("  "+string(status), fmt.Sprintf("%d", data.CountsByStatus[status]))
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
	b.BoldRow("NET", money(data.Net))
	b.Separator()

	if len(data.ByPayment) > 0 {
		b.Bold("By payment")
		for _, key := range sortedKeys(data.ByPayment) {
			b.Row("  "+key, money(data.ByPayment[key]))
		}
	}
	if len(data.ByOrderType) > 0 {
		b.Bold("By order type")
		for _, key := range sortedKeys(data.ByOrderType) {
			b.Row("  "+key, money(data.ByOrderType[key]))
		}
	}
	if len(data.Orders) > 0 {
		b.Separator()
		for _, line := range data.Orders {
			b.Row(line.TimeStr+" "+orDefault(line.OrderNumber, "N/A"), money(line.Total))
			b.Left("  " + line.Payment + " / " + string(line.Status))
		}
	}
	b.Separator()

	return b.Cut().String()
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStatuses(m map[model.OrderStatus]int) []model.OrderStatus {
	keys := make([]model.OrderStatus, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
