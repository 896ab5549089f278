package payments

import "testing"

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"35.00", 3500},
		{"280.50", 28050},
		{"0.99", 99},
		{"1", 100},
		{"1.5", 150},
		{"0.1", 10},
		{"840.00", 84000},
		{" 12.34 ", 1234},
		{"1.005", 101}, // third digit rounds half up
		{"1.004", 100},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := MinorUnits(tc.in)
		if err != nil {
			t.Errorf("MinorUnits(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MinorUnits(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMinorUnitsRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "-5.00", "abc", "12.x9", "1.2.3"} {
		if _, err := MinorUnits(in); err == nil {
			t.Errorf("MinorUnits(%q) should fail", in)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{3500, "35.00"},
		{28050, "280.50"},
		{99, "0.99"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.in); got != tc.want {
			t.Errorf("FormatMinor(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMinorUnitsFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"35.00", "280.50", "0.05", "1999.99"} {
		minor, err := MinorUnits(s)
		if err != nil {
			t.Fatalf("MinorUnits(%q): %v", s, err)
		}
		if got := FormatMinor(minor); got != s {
			t.Errorf("round trip %q -> %d -> %q", s, minor, got)
		}
	}
}
