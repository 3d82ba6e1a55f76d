// internal/model/ticket.go
package model

import "github.com/shopspring/decimal"

// RollWidth represents the physical paper width of a thermal printer roll.
type RollWidth int

const (
	RollWidth58 RollWidth = 58
	RollWidth80 RollWidth = 80
)

// Columns returns the character column count for the roll width.
func (w RollWidth) Columns() int {
	if w == RollWidth58 {
		return 32
	}
	return 42
}

// ItemOptions holds the structured preparation options of an order line.
// All fields are optional free-form values chosen by the customer.
type ItemOptions struct {
	Sugar       string   `json:"sugar,omitempty"`
	Ice         string   `json:"ice,omitempty"`
	Temperature string   `json:"temperature,omitempty"`
	Flavor      string   `json:"flavor,omitempty"`
	Cut         string   `json:"cut,omitempty"`
	Toppings    []string `json:"toppings,omitempty"`
}

// IsZero reports whether no option is set.
func (o ItemOptions) IsZero() bool {
	return o.Sugar == "" && o.Ice == "" && o.Temperature == "" &&
		o.Flavor == "" && o.Cut == "" && len(o.Toppings) == 0
}

// OrderLine is a single line item on a ticket. Price is only meaningful on
// customer receipts; kitchen tickets never render it.
type OrderLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Note     string          `json:"note,omitempty"`
	Options  *ItemOptions    `json:"options,omitempty"`
}

// LineTotal computes quantity * price. It is always derived, never stored.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Customer identifies the ordering customer on a ticket.
type Customer struct {
	Name string `json:"name"`
}

// ReceiptData is everything the formatter needs to render a customer receipt.
// Missing fields degrade to defaults; the formatter never fails.
type ReceiptData struct {
	ShopName    string          `json:"shop_name"`
	Address     string          `json:"address,omitempty"`
	OrderNumber string          `json:"order_number"`
	DateStr     string          `json:"date_str"`
	OrderType   string          `json:"order_type,omitempty"`
	Items       []OrderLine     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Service     decimal.Decimal `json:"service"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Payment     string          `json:"payment,omitempty"`
	Customer    *Customer       `json:"customer,omitempty"`
	RollWidth   RollWidth       `json:"roll_width"`
	LogoPath    string          `json:"logo_path,omitempty"`
	Footer      string          `json:"footer,omitempty"`
	QRContent   string          `json:"qr_content,omitempty"`
}

// KitchenTicketData is the kitchen-facing variant of a ticket: no prices,
// but preparation notes and options per line.
type KitchenTicketData struct {
	ShopName    string      `json:"shop_name"`
	OrderNumber string      `json:"order_number"`
	DateStr     string      `json:"date_str"`
	OrderType   string      `json:"order_type,omitempty"`
	Items       []OrderLine `json:"items"`
	Customer    *Customer   `json:"customer,omitempty"`
	RollWidth   RollWidth   `json:"roll_width"`
}
