package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/handlers"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List payment events waiting for manual review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.ConnectDB()

		rows, err := handlers.FetchReviewRows()
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("review queue is empty")
			return nil
		}

		fmt.Printf("%-8s %-20s %-14s %12s %6s  %s\n",
			"EVENT", "EXTERNAL ID", "PHONE", "AMOUNT", "SCORE", "REASONS")
		for _, r := range rows {
			fmt.Printf("%-8d %-20s %-14s %12s %6d  %s\n",
				r.EventID, r.ExternalID, r.PhoneNumber, r.Amount.StringFixed(2), r.Score, r.Notes)
		}
		return nil
	},
}
