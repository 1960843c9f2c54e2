package stats

import "testing"

func TestPriceBookNet(t *testing.T) {
	book := NewPriceBook(nil)

	tests := []struct {
		name   string
		title  string
		listed float64
		want   string
	}{
		{"explicit table entry", "Sinki TDM", 60, "48.5"},
		{"entry matching is case and space insensitive", "  CHEATLOOP ESP ", 40, "30"},
		{"codm rule without table entry", "Some CODM Hack", 50, "31"},
		{"fallback is 85% of listed", "Unknown Product", 100, "85"},
		{"fallback with fractional result", "Unknown Product", 31, "26.35"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := book.Net(tt.title, tt.listed); got.String() != tt.want {
				t.Errorf("Net(%q, %v) = %s, want %s", tt.title, tt.listed, got, tt.want)
			}
		})
	}
}

func TestPriceBookCustomTable(t *testing.T) {
	book := NewPriceBook(map[string]float64{"my product": 12.5})
	if got := book.Net("My Product", 99); got.String() != "12.5" {
		t.Errorf("custom entry = %s, want 12.5", got)
	}
	// Custom table replaces the default one entirely.
	if got := book.Net("sinki tdm", 100); got.String() != "85" {
		t.Errorf("default entry leaked through custom table: %s", got)
	}
}
