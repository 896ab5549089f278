package payments

import (
	"fmt"
	"strconv"
	"strings"
)

// MinorUnits converts a decimal money string (e.g. "280.50") to integer
// minor units (28050). The conversion is done on the string so float
// drift can never change the charged amount. A third fraction digit
// rounds half up.
func MinorUnits(total string) (int64, error) {
	s := strings.TrimSpace(total)
	if s == "" {
		return 0, fmt.Errorf("payments: empty amount")
	}

	negative := false
	if s[0] == '+' || s[0] == '-' {
		negative = s[0] == '-'
		s = s[1:]
	}
	if negative {
		return 0, fmt.Errorf("payments: negative amount %q", total)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payments: invalid amount %q", total)
	}

	// Normalize the fraction to exactly two digits, rounding half up on
	// the third.
	roundUp := false
	switch {
	case frac == "":
		frac = "00"
	case len(frac) == 1:
		frac += "0"
	case len(frac) > 2:
		if frac[2] >= '5' {
			roundUp = true
		}
		frac = frac[:2]
	}

	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payments: invalid amount %q", total)
	}
	minor := units*100 + cents
	if roundUp {
		minor++
	}
	return minor, nil
}

// FormatMinor renders minor units back to a 2-decimal money string
// (28050 -> "280.50").
func FormatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
