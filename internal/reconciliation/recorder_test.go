package reconciliation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "recorder.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{},
		&models.Lease{}, &models.Invoice{}, &models.LandlordPaymentChannel{},
		&models.PaymentEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedInvoiceAndEvent(t *testing.T, db *gorm.DB, invoiceStatus string) (uint, uint) {
	t.Helper()
	invoice := models.Invoice{
		LeaseID:  1,
		TenantID: 1,
		Amount:   amt("5000"),
		DueDate:  time.Now().Add(48 * time.Hour),
		Status:   invoiceStatus,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	event := models.PaymentEvent{
		ExternalID:           "TX-" + invoiceStatus + "-1",
		Amount:               amt("5000"),
		ReconciliationStatus: models.ReconStatusReceived,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event.ID, invoice.ID
}

func TestRecorderCommitsMatch(t *testing.T) {
	db := testDB(t)
	eventID, invoiceID := seedInvoiceAndEvent(t, db, models.InvoiceStatusPending)

	res := Result{
		Matched:    true,
		Confidence: ConfidenceExact,
		InvoiceID:  invoiceID,
		Score:      100,
		Method:     MethodDeterministic,
		Reasons:    []string{"reference code matches", "amount equals invoice amount"},
	}
	if err := NewRecorder(db).Commit(context.Background(), eventID, res); err != nil {
		t.Fatal(err)
	}

	var event models.PaymentEvent
	if err := db.First(&event, eventID).Error; err != nil {
		t.Fatal(err)
	}
	if event.ReconciliationStatus != models.ReconStatusMatched {
		t.Errorf("event status = %q, want matched", event.ReconciliationStatus)
	}
	if event.MatchedInvoiceID == nil || *event.MatchedInvoiceID != invoiceID {
		t.Errorf("MatchedInvoiceID = %v, want %d", event.MatchedInvoiceID, invoiceID)
	}
	if event.ConfidenceScore != 100 || event.ReconciliationMethod != "deterministic" {
		t.Errorf("score/method = %d/%q", event.ConfidenceScore, event.ReconciliationMethod)
	}
	if event.ReconciliationNotes != "reference code matches; amount equals invoice amount" {
		t.Errorf("notes = %q", event.ReconciliationNotes)
	}
	if event.ReconciledAt == nil {
		t.Error("ReconciledAt not set")
	}

	var invoice models.Invoice
	if err := db.First(&invoice, invoiceID).Error; err != nil {
		t.Fatal(err)
	}
	if invoice.Status != models.InvoiceStatusPaid || invoice.PaidAt == nil {
		t.Errorf("invoice not marked paid: status %q, paidAt %v", invoice.Status, invoice.PaidAt)
	}
}

func TestRecorderDefaultsScoreTo100OnMatch(t *testing.T) {
	db := testDB(t)
	eventID, invoiceID := seedInvoiceAndEvent(t, db, models.InvoiceStatusPartiallyPaid)

	res := Result{Matched: true, Confidence: ConfidenceHigh, InvoiceID: invoiceID, Method: MethodManualReview}
	if err := NewRecorder(db).Commit(context.Background(), eventID, res); err != nil {
		t.Fatal(err)
	}

	var event models.PaymentEvent
	db.First(&event, eventID)
	if event.ConfidenceScore != 100 {
		t.Errorf("score = %d, want default 100", event.ConfidenceScore)
	}
}

func TestRecorderCommitsPendingReview(t *testing.T) {
	db := testDB(t)
	eventID, invoiceID := seedInvoiceAndEvent(t, db, models.InvoiceStatusPending)

	res := Result{
		Matched:    false,
		Confidence: ConfidenceLow,
		Method:     MethodManualReview,
		Reasons:    []string{"2 candidates, top score 80"},
	}
	if err := NewRecorder(db).Commit(context.Background(), eventID, res); err != nil {
		t.Fatal(err)
	}

	var event models.PaymentEvent
	db.First(&event, eventID)
	if event.ReconciliationStatus != models.ReconStatusPendingReview {
		t.Errorf("event status = %q, want pending_review", event.ReconciliationStatus)
	}
	if event.MatchedInvoiceID != nil {
		t.Errorf("MatchedInvoiceID = %v, want nil", event.MatchedInvoiceID)
	}
	if event.ConfidenceScore != 0 {
		t.Errorf("score = %d, want 0", event.ConfidenceScore)
	}

	// The invoice must be untouched by a non-match.
	var invoice models.Invoice
	db.First(&invoice, invoiceID)
	if invoice.Status != models.InvoiceStatusPending {
		t.Errorf("invoice status = %q, want pending", invoice.Status)
	}
}

func TestRecorderRollsBackWhenInvoiceNotPayable(t *testing.T) {
	db := testDB(t)
	eventID, invoiceID := seedInvoiceAndEvent(t, db, models.InvoiceStatusPaid)

	res := Result{Matched: true, Confidence: ConfidenceHigh, InvoiceID: invoiceID, Score: 90, Method: MethodHeuristicL2}
	err := NewRecorder(db).Commit(context.Background(), eventID, res)
	if !errors.Is(err, ErrInvoiceNotPayable) {
		t.Fatalf("err = %v, want ErrInvoiceNotPayable", err)
	}

	// The whole transaction rolled back: the event row is exactly as received.
	var event models.PaymentEvent
	db.First(&event, eventID)
	if event.ReconciliationStatus != models.ReconStatusReceived {
		t.Errorf("event status = %q, want received after rollback", event.ReconciliationStatus)
	}
	if event.MatchedInvoiceID != nil || event.ReconciledAt != nil {
		t.Errorf("event partially committed: %+v", event)
	}
}

func TestRecorderSecondEventCannotRepayInvoice(t *testing.T) {
	db := testDB(t)
	eventID, invoiceID := seedInvoiceAndEvent(t, db, models.InvoiceStatusPending)

	second := models.PaymentEvent{
		ExternalID:           "TX-second",
		Amount:               amt("5000"),
		ReconciliationStatus: models.ReconStatusReceived,
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatal(err)
	}

	recorder := NewRecorder(db)
	res := Result{Matched: true, Confidence: ConfidenceHigh, InvoiceID: invoiceID, Score: 90, Method: MethodHeuristicL2}

	if err := recorder.Commit(context.Background(), eventID, res); err != nil {
		t.Fatal(err)
	}
	if err := recorder.Commit(context.Background(), second.ID, res); !errors.Is(err, ErrInvoiceNotPayable) {
		t.Fatalf("second commit err = %v, want ErrInvoiceNotPayable", err)
	}
}

func TestRecorderEventNotFound(t *testing.T) {
	db := testDB(t)

	err := NewRecorder(db).Commit(context.Background(), 9999, Result{Matched: false, Method: MethodManualReview})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}
