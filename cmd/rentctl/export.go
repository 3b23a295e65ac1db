package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/handlers"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/reports"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the manual review queue as an xlsx workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.ConnectDB()

		rows, err := handlers.FetchReviewRows()
		if err != nil {
			return err
		}

		f, err := reports.BuildReviewQueueWorkbook(rows)
		if err != nil {
			return err
		}
		if err := f.SaveAs(exportOut); err != nil {
			return err
		}

		fmt.Printf("wrote %d rows to %s\n", len(rows), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "review-queue.xlsx", "output file path")
}
