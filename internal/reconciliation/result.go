// Package reconciliation decides which outstanding invoice, if any, an inbound
// payment notification pays, and commits that decision atomically.
package reconciliation

// Confidence is the qualitative certainty of a match, ordered
// exact > high > medium > low. It is distinct from the numeric score.
type Confidence string

const (
	ConfidenceExact  Confidence = "exact"
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Method records which matching pathway produced a result.
type Method string

const (
	MethodDeterministic Method = "deterministic"
	MethodHeuristicL2   Method = "heuristic_l2"
	MethodHeuristicL3   Method = "heuristic_l3"
	MethodManualReview  Method = "manual_review"
)

// Result is the immutable outcome of one reconciliation attempt. Reasons are a
// human-readable audit trail for the review queue; they never drive control flow.
type Result struct {
	Matched    bool       `json:"matched"`
	Confidence Confidence `json:"confidence"`
	InvoiceID  uint       `json:"invoiceId,omitempty"`
	Score      int        `json:"score"`
	Method     Method     `json:"method"`
	Reasons    []string   `json:"reasons"`
}

func unmatched(conf Confidence, method Method, reasons ...string) Result {
	return Result{
		Matched:    false,
		Confidence: conf,
		Method:     method,
		Reasons:    reasons,
	}
}
