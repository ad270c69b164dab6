package youtube

import "testing"

func TestParseISO8601Duration(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantOK  bool
	}{
		{"PT45S", 45, true},
		{"PT1M", 60, true},
		{"PT1M30S", 90, true},
		{"PT2H", 7200, true},
		{"PT1H2M3S", 3723, true},
		{"P1DT3H", 97200, true},
		{"PT0S", 0, true},
		{"", 0, false},
		{"1M30S", 0, false},
		{"PT", 0, false},
		{"PTXS", 0, false},
		{"PT1M30", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseISO8601Duration(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("parseISO8601Duration(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
