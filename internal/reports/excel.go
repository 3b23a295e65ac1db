// Package reports builds spreadsheet exports for the back office.
package reports

import (
	"fmt"
	"time"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReviewRow is one pending-review payment event as it appears in the export.
type ReviewRow struct {
	EventID     uint
	ExternalID  string
	PhoneNumber string
	Amount      decimal.Decimal
	TransTime   string
	ReceivedAt  time.Time
	Score       int
	Notes       string
}

var reviewHeaders = []string{
	"Event ID", "External ID", "Phone", "Amount (KES)", "Amount in words",
	"Provider time", "Received", "Score", "Reasons",
}

// BuildReviewQueueWorkbook renders the review queue as an xlsx workbook.
func BuildReviewQueueWorkbook(rows []ReviewRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Review Queue"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range reviewHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		values := []interface{}{
			row.EventID,
			row.ExternalID,
			row.PhoneNumber,
			row.Amount.StringFixed(2),
			AmountInWords(row.Amount),
			row.TransTime,
			row.ReceivedAt.Format("2006-01-02 15:04"),
			row.Score,
			row.Notes,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// AmountInWords spells out a shilling amount for printed review sheets.
func AmountInWords(d decimal.Decimal) string {
	shillings := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(shillings)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	words := num2words.Convert(int(shillings))
	if cents == 0 {
		return fmt.Sprintf("%s shillings", words)
	}
	return fmt.Sprintf("%s shillings and %02d cents", words, cents)
}
