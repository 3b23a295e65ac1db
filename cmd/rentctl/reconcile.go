package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/reconciliation"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

var (
	reconcileCommit       bool
	reconcileWindowHours  int
	reconcileTolerance    float64
	reconcileThreshold    int
	reconcileRequirePhone bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [event.json]",
	Short: "Reconcile one payment event from a JSON file",
	Long: `Reconcile a payment event against the live database.

The file carries the normalized event shape:
  {"externalId": "TX100", "amount": "5000", "referenceCode": "INV-001",
   "phoneNumber": "0722000111", "transTime": "20250310093000",
   "bankPaybillNumber": "522522", "bankAccountNumber": "998877"}

By default this is a dry run that prints the decision without touching any
rows; pass --commit to persist the event and its outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileCommit, "commit", false, "persist the event and its outcome")
	reconcileCmd.Flags().IntVar(&reconcileWindowHours, "window-hours", 72, "due-date window half-width in hours")
	reconcileCmd.Flags().Float64Var(&reconcileTolerance, "tolerance", 0, "amount tolerance in percent")
	reconcileCmd.Flags().IntVar(&reconcileThreshold, "threshold", 85, "auto-match score threshold")
	reconcileCmd.Flags().BoolVar(&reconcileRequirePhone, "require-phone", false, "require a phone match for level-3 auto-matches")
}

type eventFile struct {
	ExternalID        string          `json:"externalId"`
	Provider          string          `json:"provider"`
	PhoneNumber       string          `json:"phoneNumber"`
	Amount            decimal.Decimal `json:"amount"`
	TransTime         string          `json:"transTime"`
	ReferenceCode     string          `json:"referenceCode"`
	BankPaybillNumber string          `json:"bankPaybillNumber"`
	BankAccountNumber string          `json:"bankAccountNumber"`
}

func runReconcile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var ev eventFile
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if ev.ExternalID == "" {
		// Hand-built test events rarely carry a provider id.
		ev.ExternalID = "cli-" + uuid.NewString()
	}

	config.ConnectDB()
	config.ConnectRedis()

	cfg := reconciliation.Config{
		DateWindowHours:        reconcileWindowHours,
		AmountTolerancePercent: reconcileTolerance,
		AutoMatchThreshold:     reconcileThreshold,
		RequirePhoneMatch:      reconcileRequirePhone,
	}

	stores := reconciliation.NewGormStores(config.DB, config.RDB)
	engine := reconciliation.NewEngine(stores, stores)

	payment := reconciliation.Payment{
		ExternalID:        ev.ExternalID,
		PhoneNumber:       ev.PhoneNumber,
		Amount:            ev.Amount,
		TransTime:         ev.TransTime,
		ReferenceCode:     ev.ReferenceCode,
		BankPaybillNumber: ev.BankPaybillNumber,
		BankAccountNumber: ev.BankAccountNumber,
	}

	ctx := context.Background()
	result, err := engine.Reconcile(ctx, payment, cfg)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !reconcileCommit {
		fmt.Println("dry run: nothing persisted (use --commit to record)")
		return nil
	}

	event := models.PaymentEvent{
		ExternalID:           ev.ExternalID,
		Provider:             ev.Provider,
		PhoneNumber:          ev.PhoneNumber,
		Amount:               ev.Amount,
		TransTime:            ev.TransTime,
		ReferenceCode:        ev.ReferenceCode,
		BankPaybillNumber:    ev.BankPaybillNumber,
		BankAccountNumber:    ev.BankAccountNumber,
		RawPayload:           models.RawPayload(data),
		ReconciliationStatus: models.ReconStatusReceived,
	}
	if err := config.DB.Create(&event).Error; err != nil {
		return fmt.Errorf("store event: %w", err)
	}

	if err := reconciliation.NewRecorder(config.DB).Commit(ctx, event.ID, result); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	fmt.Printf("committed event %d\n", event.ID)
	return nil
}
