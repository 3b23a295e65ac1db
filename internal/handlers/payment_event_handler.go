// internal/handlers/payment_event_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/reconciliation"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

// PaymentEventInput is the normalized shape the ingestion layer delivers; the
// raw provider webhook has already been parsed and verified upstream.
type PaymentEventInput struct {
	ExternalID        string          `json:"externalId" binding:"required"`
	Provider          string          `json:"provider"`
	PhoneNumber       string          `json:"phoneNumber"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	TransTime         string          `json:"transTime"`
	ReferenceCode     string          `json:"referenceCode"`
	BankPaybillNumber string          `json:"bankPaybillNumber"`
	BankAccountNumber string          `json:"bankAccountNumber"`
	RawPayload        json.RawMessage `json:"rawPayload"`

	// Optional per-call policy overrides; unset fields keep the defaults.
	Config *reconciliation.Config `json:"config"`
}

func newEngine() *reconciliation.Engine {
	stores := reconciliation.NewGormStores(config.DB, config.RDB)
	return reconciliation.NewEngine(stores, stores)
}

// runReconciliation runs the engine over a stored event and commits the
// outcome. Losing the race for the invoice is not an error: the event is
// routed to manual review instead.
func runReconciliation(ctx context.Context, event *models.PaymentEvent, cfg reconciliation.Config) (reconciliation.Result, error) {
	result, err := newEngine().Reconcile(ctx, reconciliation.PaymentFromEvent(event), cfg)
	if err != nil {
		return reconciliation.Result{}, err
	}

	recorder := reconciliation.NewRecorder(config.DB)
	if err := recorder.Commit(ctx, event.ID, result); err != nil {
		if !errors.Is(err, reconciliation.ErrInvoiceNotPayable) {
			return reconciliation.Result{}, err
		}
		result = reconciliation.Result{
			Matched:    false,
			Confidence: reconciliation.ConfidenceLow,
			Method:     reconciliation.MethodManualReview,
			Reasons: append(result.Reasons,
				fmt.Sprintf("invoice %d was paid by a concurrent payment", result.InvoiceID)),
		}
		if err := recorder.Commit(ctx, event.ID, result); err != nil {
			return reconciliation.Result{}, err
		}
	}
	return result, nil
}

// CreatePaymentEventHandler persists an inbound payment event, reconciles it
// and commits the outcome. Every event ends in exactly one of matched or
// pending_review; there is no silent drop.
func CreatePaymentEventHandler(c *gin.Context) {
	var input PaymentEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	cfg := reconciliation.DefaultConfig()
	if input.Config != nil {
		cfg = *input.Config
	}

	// Providers retry webhooks; the external id dedupes them.
	var existing models.PaymentEvent
	err := config.DB.Where("external_id = ?", input.ExternalID).First(&existing).Error
	if err == nil {
		if existing.ReconciliationStatus != models.ReconStatusReceived {
			c.JSON(http.StatusConflict, gin.H{
				"error":                "Payment event already received",
				"eventId":              existing.ID,
				"reconciliationStatus": existing.ReconciliationStatus,
			})
			return
		}
		// A previous attempt stored the row but failed before recording an
		// outcome. The retry picks the stored event up where it stopped, so
		// no event can strand in received state.
		result, err := runReconciliation(c.Request.Context(), &existing, cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed", "eventId": existing.ID})
			return
		}
		Feed.BroadcastOutcome(&existing, result)
		c.JSON(http.StatusOK, gin.H{"eventId": existing.ID, "result": result})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	event := models.PaymentEvent{
		ExternalID:           input.ExternalID,
		Provider:             input.Provider,
		PhoneNumber:          input.PhoneNumber,
		Amount:               input.Amount,
		TransTime:            input.TransTime,
		ReferenceCode:        input.ReferenceCode,
		BankPaybillNumber:    input.BankPaybillNumber,
		BankAccountNumber:    input.BankAccountNumber,
		RawPayload:           models.RawPayload(input.RawPayload),
		ReconciliationStatus: models.ReconStatusReceived,
	}
	if err := config.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store payment event"})
		return
	}

	result, err := runReconciliation(c.Request.Context(), &event, cfg)
	if err != nil {
		// The event stays in received state; the provider's retry re-runs it.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed", "eventId": event.ID})
		return
	}

	Feed.BroadcastOutcome(&event, result)

	c.JSON(http.StatusCreated, gin.H{
		"eventId": event.ID,
		"result":  result,
	})
}

type PaymentEventResponse struct {
	ID                   uint   `json:"ID"`
	ExternalID           string `json:"ExternalID"`
	Provider             string `json:"Provider"`
	PhoneNumber          string `json:"PhoneNumber"`
	Amount               string `json:"Amount"`
	TransTime            string `json:"TransTime"`
	ReconciliationStatus string `json:"ReconciliationStatus"`
	ReconciliationMethod string `json:"ReconciliationMethod"`
	ConfidenceScore      int    `json:"ConfidenceScore"`
	MatchedInvoiceID     *uint  `json:"MatchedInvoiceID"`
	ReconciliationNotes  string `json:"ReconciliationNotes"`
}

// ListPaymentEventsHandler returns payment events with pagination, optionally
// filtered by reconciliation status.
func ListPaymentEventsHandler(c *gin.Context) {
	var results []PaymentEventResponse
	var totalRows int64

	baseQuery := config.DB.Table("payment_events pe").
		Where("pe.deleted_at IS NULL")

	if status := c.Query("status"); status != "" {
		baseQuery = baseQuery.Where("pe.reconciliation_status = ?", status)
	}

	if err := baseQuery.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payment events"})
		return
	}

	finalQuery := baseQuery.Select(`
		pe.id AS "ID",
		pe.external_id AS "ExternalID",
		pe.provider AS "Provider",
		pe.phone_number AS "PhoneNumber",
		pe.amount AS "Amount",
		pe.trans_time AS "TransTime",
		pe.reconciliation_status AS "ReconciliationStatus",
		pe.reconciliation_method AS "ReconciliationMethod",
		pe.confidence_score AS "ConfidenceScore",
		pe.matched_invoice_id AS "MatchedInvoiceID",
		pe.reconciliation_notes AS "ReconciliationNotes"
	`).
		Scopes(Paginate(c)).
		Order("pe.created_at DESC")

	if err := finalQuery.Scan(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment events"})
		return
	}

	if results == nil {
		results = make([]PaymentEventResponse, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, results, totalRows))
}

// GetPaymentEventHandler returns one payment event with its audit trail.
func GetPaymentEventHandler(c *gin.Context) {
	id := c.Param("id")
	var event models.PaymentEvent
	if err := config.DB.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListReviewQueueHandler returns the events waiting for a human decision,
// oldest first so the queue drains in order.
func ListReviewQueueHandler(c *gin.Context) {
	var results []PaymentEventResponse
	var totalRows int64

	baseQuery := config.DB.Table("payment_events pe").
		Where("pe.reconciliation_status = ?", models.ReconStatusPendingReview).
		Where("pe.deleted_at IS NULL")

	if err := baseQuery.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count review queue"})
		return
	}

	finalQuery := baseQuery.Select(`
		pe.id AS "ID",
		pe.external_id AS "ExternalID",
		pe.provider AS "Provider",
		pe.phone_number AS "PhoneNumber",
		pe.amount AS "Amount",
		pe.trans_time AS "TransTime",
		pe.reconciliation_status AS "ReconciliationStatus",
		pe.reconciliation_method AS "ReconciliationMethod",
		pe.confidence_score AS "ConfidenceScore",
		pe.matched_invoice_id AS "MatchedInvoiceID",
		pe.reconciliation_notes AS "ReconciliationNotes"
	`).
		Scopes(Paginate(c)).
		Order("pe.created_at ASC")

	if err := finalQuery.Scan(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review queue"})
		return
	}

	if results == nil {
		results = make([]PaymentEventResponse, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, results, totalRows))
}

type ResolveReviewInput struct {
	InvoiceID uint `json:"invoiceId" binding:"required"`
}

// ResolveReviewHandler lets a reviewer match a pending event to an invoice by
// hand. The commit runs through the same recorder as automatic matches, so
// the audit trail and the double-payment guard are identical.
func ResolveReviewHandler(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var input ResolveReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var event models.PaymentEvent
	if err := config.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}
	if event.ReconciliationStatus != models.ReconStatusPendingReview {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment event is not pending review"})
		return
	}

	result := reconciliation.Result{
		Matched:    true,
		Confidence: reconciliation.ConfidenceHigh,
		InvoiceID:  input.InvoiceID,
		Score:      100,
		Method:     reconciliation.MethodManualReview,
		Reasons: []string{
			fmt.Sprintf("manually matched to invoice %d by %s", input.InvoiceID, c.GetString("email")),
		},
	}

	if err := reconciliation.NewRecorder(config.DB).Commit(c.Request.Context(), event.ID, result); err != nil {
		if errors.Is(err, reconciliation.ErrInvoiceNotPayable) {
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice is not payable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record resolution"})
		return
	}

	Feed.BroadcastOutcome(&event, result)

	c.JSON(http.StatusOK, gin.H{"eventId": event.ID, "result": result})
}
