package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAmountInWords(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"5000", "five thousand shillings"},
		{"5000.50", "five thousand shillings and 50 cents"},
		{"0.05", "zero shillings and 05 cents"},
	}
	for _, tc := range testCases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := AmountInWords(d); got != tc.want {
			t.Errorf("AmountInWords(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildReviewQueueWorkbook(t *testing.T) {
	rows := []ReviewRow{
		{
			EventID:     1,
			ExternalID:  "TX100",
			PhoneNumber: "0722000111",
			Amount:      decimal.RequireFromString("12000"),
			TransTime:   "20250310093000",
			ReceivedAt:  time.Date(2025, 3, 10, 9, 31, 0, 0, time.UTC),
			Score:       80,
			Notes:       "2 candidates, top score 80",
		},
	}

	f, err := BuildReviewQueueWorkbook(rows)
	if err != nil {
		t.Fatal(err)
	}

	const sheet = "Review Queue"
	got, err := f.GetCellValue(sheet, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "TX100" {
		t.Errorf("B2 = %q, want TX100", got)
	}

	header, err := f.GetCellValue(sheet, "E1")
	if err != nil {
		t.Fatal(err)
	}
	if header != "Amount in words" {
		t.Errorf("E1 = %q", header)
	}
}
