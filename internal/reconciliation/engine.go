package reconciliation

import "context"

// Engine sequences the three matching levels over the injected stores. It is
// stateless between calls; policy arrives per call as a Config.
type Engine struct {
	invoices InvoiceStore
	channels ChannelStore
}

func NewEngine(invoices InvoiceStore, channels ChannelStore) *Engine {
	return &Engine{invoices: invoices, channels: channels}
}

// Reconcile runs levels 1 → 2 (→ 3) in order, short-circuiting on the first
// match. A reference-code match always takes precedence, even when bank
// channel fields are also present. Business non-matches are returned as
// results; only infrastructure failures surface as errors.
func (e *Engine) Reconcile(ctx context.Context, p Payment, cfg Config) (Result, error) {
	var l1 *Result
	if p.ReferenceCode != "" {
		res, err := e.matchByReference(ctx, p)
		if err != nil {
			return Result{}, err
		}
		if res.Matched {
			return res, nil
		}
		l1 = &res
	}

	if p.BankPaybillNumber != "" && p.BankAccountNumber != "" {
		return e.matchByBankChannel(ctx, p, cfg)
	}

	if l1 != nil {
		return *l1, nil
	}

	return unmatched(ConfidenceLow, MethodManualReview,
		"payment type not supported for auto-reconciliation"), nil
}
