package reconciliation

// Config is the tunable matching policy. It is built once per reconciliation
// call (or defaulted) and never mutated mid-run; there is no package-level
// configuration state.
type Config struct {
	// DateWindowHours is the half-width of the symmetric due-date window
	// applied by the level-2 candidate search.
	DateWindowHours int `json:"dateWindowHours"`
	// AmountTolerancePercent widens the level-2 amount band. Zero means the
	// invoice amount must equal the payment amount.
	AmountTolerancePercent float64 `json:"amountTolerancePercent"`
	// AutoMatchThreshold is the minimum level-3 score for an automatic match.
	AutoMatchThreshold int `json:"autoMatchThreshold"`
	// RequirePhoneMatch, when set, refuses a level-3 auto-match whose winning
	// candidate did not score the phone-number bonus.
	RequirePhoneMatch bool `json:"requirePhoneMatch"`
}

func DefaultConfig() Config {
	return Config{
		DateWindowHours:        72,
		AmountTolerancePercent: 0,
		AutoMatchThreshold:     85,
		RequirePhoneMatch:      false,
	}
}
