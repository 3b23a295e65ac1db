package reconciliation

import (
	"context"
	"strings"
	"testing"
	"time"
)

func bankStores(cands ...Candidate) *fakeStores {
	return &fakeStores{
		channels: map[string]Channel{
			"522522|998877": {ID: 1, LandlordID: 4, BankName: "KCB"},
		},
		invoices: map[uint][]Candidate{4: cands},
	}
}

func bankPayment(amount, phone string) Payment {
	return Payment{
		ExternalID:        "TX200",
		BankPaybillNumber: "522522",
		BankAccountNumber: "998877",
		Amount:            amt(amount),
		TransTime:         transTime,
		PhoneNumber:       phone,
	}
}

func TestBankChannelNotRegistered(t *testing.T) {
	stores := &fakeStores{}
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", ""), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched || res.Method != MethodHeuristicL2 {
		t.Fatalf("unregistered channel must not match, got %+v", res)
	}
	if !strings.Contains(strings.Join(res.Reasons, " "), "not registered") {
		t.Errorf("reasons = %v", res.Reasons)
	}
}

func TestMalformedTimestampIsDefinitiveNonMatch(t *testing.T) {
	stores := bankStores(Candidate{InvoiceID: 9, Amount: amt("12000"), DueDate: dueAt(transTime)})
	engine := NewEngine(stores, stores)

	p := bankPayment("12000", "")
	p.TransTime = "yesterday-ish"

	res, err := engine.Reconcile(context.Background(), p, DefaultConfig())
	if err != nil {
		t.Fatalf("a bad timestamp is a non-match, not an error: %v", err)
	}
	if res.Matched {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(strings.Join(res.Reasons, " "), "timestamp") {
		t.Errorf("reasons should explain the parse failure, got %v", res.Reasons)
	}
}

func TestTimestampReasonListsAcceptedLayouts(t *testing.T) {
	stores := bankStores(Candidate{InvoiceID: 9, Amount: amt("12000"), DueDate: dueAt(transTime)})
	engine := NewEngine(stores, stores)

	// One digit short of a valid compact TransTime. The reason must name the
	// input and every accepted layout, not just whichever parse failed last.
	p := bankPayment("12000", "")
	p.TransTime = "2025031009300"

	res, err := engine.Reconcile(context.Background(), p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched {
		t.Fatalf("got %+v", res)
	}
	joined := strings.Join(res.Reasons, " ")
	if !strings.Contains(joined, `"2025031009300"`) {
		t.Errorf("reasons should quote the rejected input, got %v", res.Reasons)
	}
	for _, layout := range transTimeLayouts {
		if !strings.Contains(joined, layout) {
			t.Errorf("reasons should list accepted layout %q, got %v", layout, res.Reasons)
		}
	}
}

func TestMpesaCompactTimestampAccepted(t *testing.T) {
	// 2025-03-10 09:30:00 in M-Pesa's compact TransTime form.
	stores := bankStores(Candidate{InvoiceID: 9, Amount: amt("12000"), DueDate: dueAt(transTime)})
	engine := NewEngine(stores, stores)

	p := bankPayment("12000", "")
	p.TransTime = "20250310093000"

	res, err := engine.Reconcile(context.Background(), p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Matched {
		t.Fatalf("got %+v", res)
	}
}

func TestUniqueCandidateMatchesHighWithoutPhone(t *testing.T) {
	stores := bankStores(Candidate{
		InvoiceID:   9,
		TenantPhone: "0700000000",
		Amount:      amt("12000"),
		DueDate:     dueAt("2025-03-11T00:00:00Z"),
	})
	engine := NewEngine(stores, stores)

	// No payer phone at all: a unique level-2 candidate never needs one.
	res, err := engine.Reconcile(context.Background(), bankPayment("12000", ""), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Matched || res.Confidence != ConfidenceHigh || res.Score != 90 || res.Method != MethodHeuristicL2 {
		t.Fatalf("want high/90/heuristic_l2, got %+v", res)
	}
}

func TestDateWindowBoundary(t *testing.T) {
	base := dueAt(transTime)

	testCases := []struct {
		name    string
		dueDate time.Time
		want    bool
	}{
		{"exactly at +72h is included", base.Add(72 * time.Hour), true},
		{"exactly at -72h is included", base.Add(-72 * time.Hour), true},
		{"one hour beyond is excluded", base.Add(73 * time.Hour), false},
		{"one hour before the window is excluded", base.Add(-73 * time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stores := bankStores(Candidate{InvoiceID: 9, Amount: amt("12000"), DueDate: tc.dueDate})
			engine := NewEngine(stores, stores)

			res, err := engine.Reconcile(context.Background(), bankPayment("12000", ""), DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			if res.Matched != tc.want {
				t.Fatalf("matched = %v, want %v (%+v)", res.Matched, tc.want, res)
			}
		})
	}
}

func TestZeroCandidatesListsCriteria(t *testing.T) {
	stores := bankStores() // registered channel, no invoices in range
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", ""), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched {
		t.Fatalf("got %+v", res)
	}
	joined := strings.Join(res.Reasons, " ")
	if !strings.Contains(joined, "no eligible invoice") || !strings.Contains(joined, "12000") {
		t.Errorf("reasons should cite the search criteria, got %v", res.Reasons)
	}
}

func TestDisambiguationPhoneWins(t *testing.T) {
	stores := bankStores(
		Candidate{InvoiceID: 11, TenantPhone: "+254722000111", Amount: amt("12000"), DueDate: dueAt("2025-03-11T00:00:00Z")},
		Candidate{InvoiceID: 12, TenantPhone: "0733999888", Amount: amt("12000"), DueDate: dueAt("2025-03-12T00:00:00Z")},
	)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Matched || res.Method != MethodHeuristicL3 {
		t.Fatalf("want level-3 match, got %+v", res)
	}
	if res.InvoiceID != 11 {
		t.Errorf("InvoiceID = %d, want 11 (phone-matched candidate)", res.InvoiceID)
	}
	if res.Confidence != ConfidenceHigh || res.Score != 100 {
		t.Errorf("phone+date+amount should score 100/high, got %d/%s", res.Score, res.Confidence)
	}
}

func TestDisambiguationNoPhoneOnPayment(t *testing.T) {
	stores := bankStores(
		Candidate{InvoiceID: 11, Amount: amt("12000"), DueDate: dueAt("2025-03-11T00:00:00Z")},
		Candidate{InvoiceID: 12, Amount: amt("12000"), DueDate: dueAt("2025-03-12T00:00:00Z")},
	)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", ""), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched || res.Confidence != ConfidenceMedium || res.Method != MethodHeuristicL3 {
		t.Fatalf("want medium non-match when phone is missing, got %+v", res)
	}
}

func TestAmbiguousCandidatesFallToManualReview(t *testing.T) {
	// Both tenants share the payer's phone, so both score 100: above the
	// threshold, but with no margin between them.
	stores := bankStores(
		Candidate{InvoiceID: 11, TenantPhone: "0722000111", Amount: amt("12000"), DueDate: dueAt("2025-03-11T00:00:00Z")},
		Candidate{InvoiceID: 12, TenantPhone: "254722000111", Amount: amt("12000"), DueDate: dueAt("2025-03-12T00:00:00Z")},
	)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched {
		t.Fatalf("equal top scores must never auto-match, got %+v", res)
	}
	if res.Confidence != ConfidenceLow || res.Method != MethodManualReview {
		t.Errorf("want low/manual_review, got %s/%s", res.Confidence, res.Method)
	}
	if !strings.Contains(strings.Join(res.Reasons, " "), "2 candidates") {
		t.Errorf("reasons should report the candidate count, got %v", res.Reasons)
	}
}

func TestBelowThresholdFallsToManualReview(t *testing.T) {
	// Nobody matches the payer phone: top score 80 < default threshold 85.
	stores := bankStores(
		Candidate{InvoiceID: 11, TenantPhone: "0733000001", Amount: amt("12000"), DueDate: dueAt("2025-03-11T00:00:00Z")},
		Candidate{InvoiceID: 12, TenantPhone: "0733000002", Amount: amt("12000"), DueDate: dueAt("2025-03-12T00:00:00Z")},
	)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched || res.Method != MethodManualReview {
		t.Fatalf("got %+v", res)
	}
	if res.Score != 80 {
		t.Errorf("top score = %d, want 80", res.Score)
	}
}

// wideConfig opens the date window and amount band far enough that the level-3
// date and amount bonuses actually discriminate between candidates.
func wideConfig() Config {
	cfg := DefaultConfig()
	cfg.DateWindowHours = 24 * 30
	cfg.AmountTolerancePercent = 10
	return cfg
}

func TestMediumConfidenceMatch(t *testing.T) {
	// Phone matches but the due date is 20 days out and the amount is off by
	// 5%: 60+30 = 90, below the 95 floor for high confidence.
	stores := bankStores(
		Candidate{InvoiceID: 11, TenantPhone: "0722000111", Amount: amt("11400"), DueDate: dueAt("2025-03-30T09:30:00Z")},
		Candidate{InvoiceID: 12, TenantPhone: "0733000002", Amount: amt("11400"), DueDate: dueAt("2025-03-30T09:30:00Z")},
	)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), wideConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Matched || res.Confidence != ConfidenceMedium || res.Score != 90 {
		t.Fatalf("want medium/90 match, got %+v", res)
	}
}

func TestRequirePhoneMatchBlocksAutoMatch(t *testing.T) {
	cfg := wideConfig()
	cfg.AutoMatchThreshold = 75
	cfg.RequirePhoneMatch = true

	// Top candidate scores 80 (due in 2 days, exact amount) with no phone
	// match; runner-up scores 60. Unambiguous and above the lowered
	// threshold, so only the phone policy decides.
	cands := []Candidate{
		{InvoiceID: 11, TenantPhone: "0733000001", Amount: amt("12000"), DueDate: dueAt("2025-03-12T09:30:00Z")},
		{InvoiceID: 12, TenantPhone: "0733000002", Amount: amt("11400"), DueDate: dueAt("2025-03-30T09:30:00Z")},
	}

	stores := bankStores(cands...)
	engine := NewEngine(stores, stores)

	res, err := engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched || res.Method != MethodManualReview {
		t.Fatalf("RequirePhoneMatch must block this match, got %+v", res)
	}

	cfg.RequirePhoneMatch = false
	stores = bankStores(cands...)
	engine = NewEngine(stores, stores)
	res, err = engine.Reconcile(context.Background(), bankPayment("12000", "0722000111"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Matched || res.InvoiceID != 11 || res.Score != 80 {
		t.Fatalf("same scenario without the policy should match 11 at 80, got %+v", res)
	}
}
