// internal/model/order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the status values the order backend reports.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderProduct is one purchased product as delivered by the order backend.
type OrderProduct struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Note     string          `json:"note,omitempty"`
	Options  *ItemOptions    `json:"options,omitempty"`
}

// Order is the completed, already-persisted order handed to the print
// service after checkout. The service never mutates or stores it; printing
// failures must not affect the order itself.
type Order struct {
	OrderNumber   string          `json:"orderNumber"`
	CreatedAt     time.Time       `json:"createdAt"`
	Products      []OrderProduct  `json:"products"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountNote  string          `json:"discountNote,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OrderType     string          `json:"orderType,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Status        OrderStatus     `json:"status,omitempty"`
	User          string          `json:"user,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
}

// Lines converts backend products into formatter order lines.
func (o *Order) Lines() []OrderLine {
	lines := make([]OrderLine, 0, len(o.Products))
	for _, p := range o.Products {
		lines = append(lines, OrderLine{
			Name:     p.Name,
			Quantity: p.Quantity,
			Price:    p.Price,
			Note:     p.Note,
			Options:  p.Options,
		})
	}
	return lines
}
