package reconciliation

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

var (
	// ErrEventNotFound means the payment event row to record against is gone.
	ErrEventNotFound = errors.New("payment event not found")
	// ErrInvoiceNotPayable means the matched invoice is no longer pending or
	// partially paid, typically because a concurrent event already paid it.
	ErrInvoiceNotPayable = errors.New("matched invoice is not payable")
)

var eligibleStatuses = []string{models.InvoiceStatusPending, models.InvoiceStatusPartiallyPaid}

// Recorder commits a reconciliation result. The event-row update and the
// invoice-status transition happen in one transaction: a failure anywhere
// rolls back both, leaving the event exactly as received.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Commit(ctx context.Context, eventID uint, res Result) error {
	now := time.Now()
	notes := strings.Join(res.Reasons, "; ")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !res.Matched {
			update := tx.Model(&models.PaymentEvent{}).
				Where("id = ?", eventID).
				Updates(map[string]interface{}{
					"reconciliation_status": models.ReconStatusPendingReview,
					"reconciliation_method": string(res.Method),
					"confidence_score":      res.Score,
					"reconciled_at":         now,
					"reconciliation_notes":  notes,
				})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				return ErrEventNotFound
			}
			return nil
		}

		score := res.Score
		if score == 0 {
			score = 100
		}

		update := tx.Model(&models.PaymentEvent{}).
			Where("id = ?", eventID).
			Updates(map[string]interface{}{
				"reconciliation_status": models.ReconStatusMatched,
				"matched_invoice_id":    res.InvoiceID,
				"reconciliation_method": string(res.Method),
				"confidence_score":      score,
				"reconciled_at":         now,
				"reconciliation_notes":  notes,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrEventNotFound
		}

		// Conditional transition so that two events can never both pay the
		// same invoice: the loser matches zero rows and the whole commit,
		// event update included, rolls back.
		invoice := tx.Model(&models.Invoice{}).
			Where("id = ? AND status IN ?", res.InvoiceID, eligibleStatuses).
			Updates(map[string]interface{}{
				"status":         models.InvoiceStatusPaid,
				"paid_at":        now,
				"payment_source": string(res.Method),
			})
		if invoice.Error != nil {
			return invoice.Error
		}
		if invoice.RowsAffected == 0 {
			return ErrInvoiceNotPayable
		}
		return nil
	})
}
