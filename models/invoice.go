// models/invoice.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses. Only pending and partially_paid invoices are eligible
// targets for payment reconciliation.
const (
	InvoiceStatusPending       = "pending"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusCancelled     = "cancelled"
)

// Invoice is a rent demand raised against a lease.
type Invoice struct {
	gorm.Model
	LeaseID       uint            `json:"leaseId" gorm:"index;not null"`
	Lease         Lease           `json:"lease"`
	TenantID      uint            `json:"tenantId" gorm:"index;not null"`
	Tenant        Tenant          `json:"tenant"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	DueDate       time.Time       `json:"dueDate" gorm:"index"`
	Status        string          `json:"status" gorm:"default:'pending';index"`
	// ReferenceCode, when set, is handed to the tenant as the payment
	// reference and treated as a near-certain identifier on match.
	ReferenceCode *string    `json:"referenceCode" gorm:"uniqueIndex"`
	PaidAt        *time.Time `json:"paidAt"`
	PaymentSource string     `json:"paymentSource"`
}

// Eligible reports whether the invoice may still receive a payment.
func (i *Invoice) Eligible() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusPartiallyPaid
}
