package reconciliation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// centTolerance is the slack allowed when two amounts are required to be
// "equal"; it absorbs rounding in provider feeds.
var centTolerance = decimal.NewFromFloat(0.01)

func amountsClose(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(centTolerance) <= 0
}

// matchByReference is level 1: an exact match on the payer-entered reference
// code. The code is trusted as a near-unforgeable identifier, so the amount is
// the only corroborating check and no date window applies.
func (e *Engine) matchByReference(ctx context.Context, p Payment) (Result, error) {
	if p.ReferenceCode == "" {
		return unmatched(ConfidenceLow, MethodDeterministic, "no reference code"), nil
	}

	cand, err := e.invoices.EligibleByReference(ctx, p.ReferenceCode)
	if err != nil {
		return Result{}, fmt.Errorf("invoice lookup by reference %q: %w", p.ReferenceCode, err)
	}
	if cand == nil {
		return unmatched(ConfidenceLow, MethodDeterministic,
			fmt.Sprintf("no invoice found with reference code %q", p.ReferenceCode)), nil
	}

	if !amountsClose(cand.Amount, p.Amount) {
		return unmatched(ConfidenceLow, MethodDeterministic,
			fmt.Sprintf("reference code %q matched invoice %d but amounts differ: invoice %s, payment %s",
				p.ReferenceCode, cand.InvoiceID, cand.Amount.StringFixed(2), p.Amount.StringFixed(2))), nil
	}

	return Result{
		Matched:    true,
		Confidence: ConfidenceExact,
		InvoiceID:  cand.InvoiceID,
		Score:      100,
		Method:     MethodDeterministic,
		Reasons: []string{
			fmt.Sprintf("reference code %q matches invoice %d", p.ReferenceCode, cand.InvoiceID),
			fmt.Sprintf("payment amount %s equals invoice amount", p.Amount.StringFixed(2)),
		},
	}, nil
}
