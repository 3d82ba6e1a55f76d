// internal/model/settlement.go
package model

import "github.com/shopspring/decimal"

// SettlementData is a shift/day settlement report. Everything in it is
// derived from the order list at build time; nothing is stored.
type SettlementData struct {
	ShopName    string    `json:"shop_name"`
	PeriodLabel string    `json:"period_label"`
	GeneratedAt string    `json:"generated_at"`
	RollWidth   RollWidth `json:"roll_width"`

	OrderCount     int                        `json:"order_count"`
	CountsByStatus map[OrderStatus]int        `json:"counts_by_status"`
	Subtotal       decimal.Decimal            `json:"subtotal"`
	Tax            decimal.Decimal            `json:"tax"`
	Service        decimal.Decimal            `json:"service"`
	Discount       decimal.Decimal            `json:"discount"`
	Net            decimal.Decimal            `json:"net"`
	ByPayment      map[string]decimal.Decimal `json:"by_payment"`
	ByOrderType    map[string]decimal.Decimal `json:"by_order_type"`
	Orders         []SettlementLine           `json:"orders"`
}

// SettlementLine is one order row in the detailed listing.
type SettlementLine struct {
	OrderNumber string          `json:"order_number"`
	TimeStr     string          `json:"time_str"`
	Status      OrderStatus     `json:"status"`
	Payment     string          `json:"payment"`
	Total       decimal.Decimal `json:"total"`
}

// BuildSettlement aggregates a list of orders into a settlement report.
func BuildSettlement(shopName, periodLabel, generatedAt string, width RollWidth, orders []Order) SettlementData {
	s := SettlementData{
		ShopName:       shopName,
		PeriodLabel:    periodLabel,
		GeneratedAt:    generatedAt,
		RollWidth:      width,
		CountsByStatus: make(map[OrderStatus]int),
		ByPayment:      make(map[string]decimal.Decimal),
		ByOrderType:    make(map[string]decimal.Decimal),
	}

	for _, o := range orders {
		s.OrderCount++
		status := o.Status
		if status == "" {
			status = OrderStatusCompleted
		}
		s.CountsByStatus[status]++

		if status == OrderStatusCancelled {
			continue
		}

		s.Subtotal = s.Subtotal.Add(o.Subtotal)
		s.Tax = s.Tax.Add(o.Tax)
		s.Service = s.Service.Add(o.ServiceCharge)
		s.Discount = s.Discount.Add(o.Discount)
		s.Net = s.Net.Add(o.TotalAmount)

		payment := o.PaymentMethod
		if payment == "" {
			payment = "N/A"
		}
		s.ByPayment[payment] = s.ByPayment[payment].Add(o.TotalAmount)

		orderType := o.OrderType
		if orderType == "" {
			orderType = "N/A"
		}
		s.ByOrderType[orderType] = s.ByOrderType[orderType].Add(o.TotalAmount)

		s.Orders = append(s.Orders, SettlementLine{
			OrderNumber: o.OrderNumber,
			TimeStr:     o.CreatedAt.Format("15:04"),
			Status:      status,
			Payment:     payment,
			Total:       o.TotalAmount,
		})
	}

	return s
}
