package catalog

import "testing"

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1,204", 1204},
		{"12", 12},
		{" 7 ", 7},
		{"+5", 5},
		{"2.9", 2},
		{"-3", 0},
		{"0", 0},
		{"abc", 0},
		{"NaN", 0},
		{"", 0},
		{"99999999999", 2147483647},
	}
	for _, tt := range tests {
		if got := ParseQuantity(tt.in); got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
