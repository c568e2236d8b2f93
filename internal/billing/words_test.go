package billing

import (
	"math"
	"strings"
	"testing"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{10, "Ten"},
		{15, "Fifteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{110, "One Hundred Ten"},
		{999, "Nine Hundred Ninety Nine"},
		{1001, "One Thousand One"},
		{1269, "One Thousand Two Hundred Sixty Nine"},
		{1000000, "One Million"},
		{2000017, "Two Million Seventeen"},
		{1000000000, "One Billion"},
		{1234567891, "One Billion Two Hundred Thirty Four Million Five Hundred Sixty Seven Thousand Eight Hundred Ninety One"},
		{-12, "Minus Twelve"},
		{1000000000000, "One Thousand Billion"},
	}

	for _, tt := range tests {
		if got := NumberToWords(tt.in); got != tt.want {
			t.Errorf("NumberToWords(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumberToWords_Extremes(t *testing.T) {
	for _, n := range []int64{math.MaxInt64, math.MinInt64} {
		got := NumberToWords(n)
		if got == "" || strings.Contains(got, "  ") {
			t.Errorf("NumberToWords(%d) = %q", n, got)
		}
	}
}
