package reconciliation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

// Payment is the engine's view of an inbound payment event. It is built from
// the persisted models.PaymentEvent and never mutated.
type Payment struct {
	EventID           uint
	ExternalID        string
	PhoneNumber       string
	Amount            decimal.Decimal
	TransTime         string
	ReferenceCode     string
	BankPaybillNumber string
	BankAccountNumber string
}

// PaymentFromEvent projects a persisted event into the engine's input shape.
func PaymentFromEvent(ev *models.PaymentEvent) Payment {
	return Payment{
		EventID:           ev.ID,
		ExternalID:        ev.ExternalID,
		PhoneNumber:       ev.PhoneNumber,
		Amount:            ev.Amount,
		TransTime:         ev.TransTime,
		ReferenceCode:     ev.ReferenceCode,
		BankPaybillNumber: ev.BankPaybillNumber,
		BankAccountNumber: ev.BankAccountNumber,
	}
}

// Candidate is an eligible invoice as seen by the matchers: just enough to
// verify amounts, date proximity and the tenant's phone.
type Candidate struct {
	InvoiceID   uint
	TenantPhone string
	Amount      decimal.Decimal
	DueDate     time.Time
}

// Channel is a resolved landlord payment channel.
type Channel struct {
	ID         uint
	LandlordID uint
	BankName   string
}

// InvoiceStore reads eligible (pending or partially paid) invoices. A nil
// result with a nil error means "not found"; errors are infrastructure
// failures only.
type InvoiceStore interface {
	// EligibleByReference returns the eligible invoice carrying the given
	// payment reference code.
	EligibleByReference(ctx context.Context, code string) (*Candidate, error)
	// CandidatesForLandlord returns eligible invoices for units owned by the
	// landlord whose amount and due date fall inside the given inclusive
	// ranges, ordered by due date then invoice id ascending.
	CandidatesForLandlord(ctx context.Context, landlordID uint, minAmount, maxAmount decimal.Decimal, from, to time.Time) ([]Candidate, error)
}

// ChannelStore resolves registered landlord bank channels.
type ChannelStore interface {
	// ActiveChannel returns the active channel registered for the
	// (paybill, account) pair, or nil when none is registered.
	ActiveChannel(ctx context.Context, paybill, account string) (*Channel, error)
}
