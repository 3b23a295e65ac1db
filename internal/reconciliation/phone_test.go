package reconciliation

import "testing"

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		name, in, want string
	}{
		{"international with plus", "+254712345678", "0712345678"},
		{"international without plus", "254712345678", "0712345678"},
		{"local", "0712345678", "0712345678"},
		{"embedded whitespace", "+254 712 345 678", "0712345678"},
		{"dashes", "0712-345-678", "0712345678"},
		{"short number untouched", "254", "254"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePhone(tc.in)
			if got != tc.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
			}
			// Normalization must be idempotent.
			if again := NormalizePhone(got); again != got {
				t.Errorf("NormalizePhone(%q) not idempotent: %q", got, again)
			}
		})
	}
}
