package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Level-3 scoring weights. The base score reflects surviving the level-2
// amount and due-date filter; bonuses reward corroborating evidence.
const (
	baseScore       = 60
	phoneBonus      = 30
	dateBonus       = 10
	amountBonus     = 10
	ambiguityMargin = 20
	highScoreFloor  = 95
)

// transTimeLayouts are the provider timestamp formats accepted at level 2:
// M-Pesa compact transaction time and RFC 3339 from bank feeds.
var transTimeLayouts = []string{"20060102150405", time.RFC3339}

func parseTransTime(raw string) (time.Time, error) {
	for _, layout := range transTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	// Report every accepted layout, not whichever one happened to fail last:
	// the audit reason has to tell a reviewer what the input should look like.
	return time.Time{}, fmt.Errorf("%q matches none of the accepted layouts (%s)",
		raw, strings.Join(transTimeLayouts, ", "))
}

// matchByBankChannel is level 2: resolve the receiving bank channel to a
// landlord, then narrow that landlord's eligible invoices by amount band and
// due-date window. A single survivor is a high-confidence match; several
// escalate to level-3 scoring.
func (e *Engine) matchByBankChannel(ctx context.Context, p Payment, cfg Config) (Result, error) {
	if p.BankPaybillNumber == "" || p.BankAccountNumber == "" {
		return unmatched(ConfidenceLow, MethodHeuristicL2, "not a bank paybill payment"), nil
	}

	ch, err := e.channels.ActiveChannel(ctx, p.BankPaybillNumber, p.BankAccountNumber)
	if err != nil {
		return Result{}, fmt.Errorf("channel lookup for paybill %s: %w", p.BankPaybillNumber, err)
	}
	if ch == nil {
		return unmatched(ConfidenceLow, MethodHeuristicL2,
			fmt.Sprintf("bank account not registered: paybill %s, account %s",
				p.BankPaybillNumber, p.BankAccountNumber)), nil
	}

	// A timestamp we cannot parse is a definitive non-match, never silently
	// replaced with "now": the window would be meaningless.
	ts, err := parseTransTime(p.TransTime)
	if err != nil {
		return unmatched(ConfidenceLow, MethodHeuristicL2,
			fmt.Sprintf("cannot parse payment timestamp: %v", err)), nil
	}

	window := time.Duration(cfg.DateWindowHours) * time.Hour
	from, to := ts.Add(-window), ts.Add(window)

	tol := decimal.NewFromFloat(cfg.AmountTolerancePercent).Div(decimal.NewFromInt(100))
	minAmount := p.Amount.Mul(decimal.NewFromInt(1).Sub(tol))
	maxAmount := p.Amount.Mul(decimal.NewFromInt(1).Add(tol))

	cands, err := e.invoices.CandidatesForLandlord(ctx, ch.LandlordID, minAmount, maxAmount, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("candidate search for landlord %d: %w", ch.LandlordID, err)
	}

	switch len(cands) {
	case 0:
		return unmatched(ConfidenceLow, MethodHeuristicL2,
			fmt.Sprintf("no eligible invoice for landlord %d with amount in [%s, %s] due between %s and %s",
				ch.LandlordID, minAmount.StringFixed(2), maxAmount.StringFixed(2),
				from.Format(time.RFC3339), to.Format(time.RFC3339))), nil
	case 1:
		return Result{
			Matched:    true,
			Confidence: ConfidenceHigh,
			InvoiceID:  cands[0].InvoiceID,
			Score:      90,
			Method:     MethodHeuristicL2,
			Reasons: []string{
				fmt.Sprintf("single invoice %d matches amount and due-date window", cands[0].InvoiceID),
				fmt.Sprintf("payment received on verified %s channel (paybill %s, account %s)",
					ch.BankName, p.BankPaybillNumber, p.BankAccountNumber),
			},
		}, nil
	default:
		return e.disambiguate(p, ts, cands, cfg), nil
	}
}

type scoredCandidate struct {
	Candidate
	score        int
	phoneMatched bool
	reasons      []string
}

// disambiguate is level 3: score the surviving candidates and pick a winner
// only when the outcome is unambiguous. When in doubt it refuses to guess and
// routes the event to manual review.
func (e *Engine) disambiguate(p Payment, ts time.Time, cands []Candidate, cfg Config) Result {
	if p.PhoneNumber == "" {
		return unmatched(ConfidenceMedium, MethodHeuristicL3,
			fmt.Sprintf("%d candidate invoices; payer phone number required to disambiguate", len(cands)))
	}

	payerPhone := NormalizePhone(p.PhoneNumber)

	scored := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		s := scoredCandidate{
			Candidate: c,
			score:     baseScore,
			reasons: []string{
				fmt.Sprintf("invoice %d within amount and due-date window", c.InvoiceID),
			},
		}
		if c.TenantPhone != "" && NormalizePhone(c.TenantPhone) == payerPhone {
			s.score += phoneBonus
			s.phoneMatched = true
			s.reasons = append(s.reasons, "payer phone matches tenant phone")
		}
		if diff := absDuration(ts.Sub(c.DueDate)); diff <= 7*24*time.Hour {
			s.score += dateBonus
			s.reasons = append(s.reasons, fmt.Sprintf("due date within %d days of payment", int(diff.Hours()/24)))
		}
		if amountsClose(c.Amount, p.Amount) {
			s.score += amountBonus
			s.reasons = append(s.reasons, "amount matches payment exactly")
		}
		// Scores are reported on a 0-100 scale.
		if s.score > 100 {
			s.score = 100
		}
		scored = append(scored, s)
	}

	// Stable sort: equal scores keep the store order (due date, then invoice
	// id ascending), so the tie-break is deterministic.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	top := scored[0]
	unambiguous := len(scored) == 1 || top.score-scored[1].score >= ambiguityMargin

	if top.score >= cfg.AutoMatchThreshold && unambiguous {
		if cfg.RequirePhoneMatch && !top.phoneMatched {
			return Result{
				Matched:    false,
				Confidence: ConfidenceLow,
				Score:      top.score,
				Method:     MethodManualReview,
				Reasons: []string{
					fmt.Sprintf("%d candidates, top score %d", len(scored), top.score),
					"phone match required by policy but best candidate's phone does not match",
				},
			}
		}
		conf := ConfidenceMedium
		if top.score >= highScoreFloor {
			conf = ConfidenceHigh
		}
		return Result{
			Matched:    true,
			Confidence: conf,
			InvoiceID:  top.InvoiceID,
			Score:      top.score,
			Method:     MethodHeuristicL3,
			Reasons:    append(top.reasons, fmt.Sprintf("best of %d candidates with score %d", len(scored), top.score)),
		}
	}

	return Result{
		Matched:    false,
		Confidence: ConfidenceLow,
		Score:      top.score,
		Method:     MethodManualReview,
		Reasons: []string{
			fmt.Sprintf("%d candidates, top score %d: ambiguous or below auto-match threshold %d",
				len(scored), top.score, cfg.AutoMatchThreshold),
		},
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
