// internal/model/printer.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PrinterRole describes which kind of document a printer is assigned to.
type PrinterRole string

const (
	RoleReceipt    PrinterRole = "receipt"
	RoleKitchen    PrinterRole = "kitchen"
	RoleUnassigned PrinterRole = "unassigned"
)

// PrinterTarget is a concrete, addressable printer. On the gateway transport
// the address is the printer's spooler name; on the bridge transport it is a
// port path or MAC-like address.
type PrinterTarget struct {
	DisplayName string      `json:"display_name"`
	Address     string      `json:"address"`
	Role        PrinterRole `json:"role"`
}

// PairedPrinter is a printer the bridge transport already knows about.
type PairedPrinter struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// JobStatus is the lifecycle state of a print job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusPrinted JobStatus = "PRINTED"
	JobStatusFailed  JobStatus = "FAILED"
)

// PrintJob is the unit of dispatch: one document to one target, printed
// Copies times. Jobs are re-derivable from the order plus current settings,
// so they are recorded for troubleshooting only, never replayed from storage.
type PrintJob struct {
	ID          uuid.UUID   `json:"id"`
	OrderNumber string      `json:"order_number"`
	Role        PrinterRole `json:"role"`
	Target      string      `json:"target"`
	Copies      int         `json:"copies"`
	Attempt     int         `json:"attempt"`
	Status      JobStatus   `json:"status"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewPrintJob creates a queued job with a fresh id.
func NewPrintJob(orderNumber string, role PrinterRole, target string, copies int) *PrintJob {
	if copies < 1 {
		copies = 1
	}
	return &PrintJob{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		Role:        role,
		Target:      target,
		Copies:      copies,
		Attempt:     1,
		Status:      JobStatusQueued,
		CreatedAt:   time.Now(),
	}
}

// PrintSettings is the process-wide printer preference set. It is loaded at
// startup and changed only by an explicit save from the settings screen.
type PrintSettings struct {
	ReceiptPrinter string    `json:"receipt_printer"`
	KitchenPrinter string    `json:"kitchen_printer"`
	ReceiptCopies  int       `json:"receipt_copies"`
	KitchenCopies  int       `json:"kitchen_copies"`
	RollWidth      RollWidth `json:"roll_width"`
	Density        int       `json:"density"`
	ShopName       string    `json:"shop_name"`
	ShopAddress    string    `json:"shop_address"`
	FooterText     string    `json:"footer_text"`
	LogoPath       string    `json:"logo_path"`
}

// Normalize fills defaults for unset values.
func (s *PrintSettings) Normalize() {
	if s.ReceiptCopies < 1 {
		s.ReceiptCopies = 1
	}
	if s.KitchenCopies < 1 {
		s.KitchenCopies = 1
	}
	if s.RollWidth != RollWidth58 && s.RollWidth != RollWidth80 {
		s.RollWidth = RollWidth58
	}
	if s.Density < 1 || s.Density > 5 {
		s.Density = 3
	}
}
