// models/payment_event.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reconciliation statuses of a payment event.
const (
	ReconStatusReceived      = "received"
	ReconStatusMatched       = "matched"
	ReconStatusPendingReview = "pending_review"
)

// RawPayload stores the untouched provider notification as JSONB for audit.
type RawPayload json.RawMessage

func (p RawPayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return []byte(p), nil
}

func (p *RawPayload) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	*p = append((*p)[0:0], bytes...)
	return nil
}

func (p RawPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *RawPayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[0:0], data...)
	return nil
}

// PaymentEvent is an inbound mobile-money/bank payment notification, persisted
// exactly as received. The ingestion layer creates it; the reconciliation
// engine decides which invoice (if any) it pays; the recorder writes the
// Reconciliation* fields exactly once.
type PaymentEvent struct {
	gorm.Model
	ExternalID  string          `json:"externalId" gorm:"uniqueIndex;not null"`
	Provider    string          `json:"provider"` // mpesa_paybill, bank_paybill, ...
	PhoneNumber string          `json:"phoneNumber"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	// TransTime is the provider's transaction timestamp, kept verbatim.
	// M-Pesa sends compact yyyymmddhhmmss; bank feeds send RFC 3339.
	TransTime string `json:"transTime"`

	// Optional disambiguating attributes; which of them are populated decides
	// the matching pathway.
	ReferenceCode     string `json:"referenceCode"`
	BankPaybillNumber string `json:"bankPaybillNumber"`
	BankAccountNumber string `json:"bankAccountNumber"`

	RawPayload RawPayload `json:"rawPayload" gorm:"type:jsonb"`

	ReconciliationStatus string     `json:"reconciliationStatus" gorm:"default:'received';index"`
	MatchedInvoiceID     *uint      `json:"matchedInvoiceId"`
	ReconciliationMethod string     `json:"reconciliationMethod"`
	ConfidenceScore      int        `json:"confidenceScore"`
	ReconciledAt         *time.Time `json:"reconciledAt"`
	// ReconciliationNotes is the joined reasons trail shown in the review queue.
	ReconciliationNotes string `json:"reconciliationNotes"`
}
