package money

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"R1,234.56", 1234.56, true},
		{"R 1 234.56", 1234.56, true},
		{"ZAR 980", 980, true},
		{"r450.5", 450.5, true},
		{"2500000", 2500000, true},
		{"unknown", 0, false},
		{"N/A", 0, false},
		{"", 0, false},
		{"Standard", 0, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 99.99, 1234.56, 1000000, 12345678.9} {
		s := Format(v)
		got, ok := Parse(s)
		if !ok || got != v {
			t.Errorf("Parse(Format(%v)) = %v, %v (formatted %q)", v, got, ok, s)
		}
	}
	if got := Format(1234.5); got != "R1,234.50" {
		t.Errorf("Format(1234.5) = %q", got)
	}
	if got := FormatWhole(2500000); got != "R2,500,000" {
		t.Errorf("FormatWhole = %q", got)
	}
}

func TestParseLoose(t *testing.T) {
	got, ok := ParseLoose(" 1,250.00    350.00")
	if !ok || got != 1250 {
		t.Fatalf("ParseLoose = %v, %v", got, ok)
	}
	if _, ok := ParseLoose("included"); ok {
		t.Fatal("expected no amount")
	}
}

func TestAverageExcludesUnknown(t *testing.T) {
	if got := Average([]string{"R100", "R200", "unknown"}); got != "R150.00" {
		t.Fatalf("Average = %q, want R150.00", got)
	}
	if got := Average([]string{"unknown"}); got != "N/A" {
		t.Fatalf("Average = %q, want N/A", got)
	}
}

func TestParseLooseStopsAtGroupBoundary(t *testing.T) {
	for in, want := range map[string]float64{
		"971 2024 renewal":  971,
		"1 250 2024":        1250,
		"R 1 200 000 cover": 1200000,
	} {
		if got, ok := ParseLoose(in); !ok || got != want {
			t.Errorf("ParseLoose(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
}
