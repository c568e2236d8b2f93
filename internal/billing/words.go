package billing

import "strings"

var (
	onesWords = [...]string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teenWords = [...]string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tensWords = [...]string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// scales in descending order; short scale.
var scales = []struct {
	value int64
	name  string
}{
	{1_000_000_000, "Billion"},
	{1_000_000, "Million"},
	{1_000, "Thousand"},
}

// NumberToWords spells an integer in English long form.
//
//	NumberToWords(0)       == "Zero"
//	NumberToWords(1001)    == "One Thousand One"
//	NumberToWords(1000000) == "One Million"
//
// Negative values are prefixed with "Minus". A billions group of a thousand
// or more is itself spelled in full ("One Thousand Billion").
func NumberToWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		// -MinInt64 overflows; spell it through uint64.
		return "Minus " + unsignedWords(uint64(-(n+1))+1)
	}
	return unsignedWords(uint64(n))
}

func unsignedWords(n uint64) string {
	var parts []string

	for _, sc := range scales {
		group := n / uint64(sc.value)
		n %= uint64(sc.value)
		if group == 0 {
			continue
		}
		if group >= 1000 {
			parts = append(parts, unsignedWords(group), sc.name)
		} else {
			parts = append(parts, lessThanThousand(int(group)), sc.name)
		}
	}

	if n > 0 {
		parts = append(parts, lessThanThousand(int(n)))
	}

	return strings.Join(parts, " ")
}

// lessThanThousand spells 1..999; 0 yields "".
func lessThanThousand(n int) string {
	var parts []string

	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}

	switch {
	case n >= 20:
		parts = append(parts, tensWords[n/10])
		if n%10 > 0 {
			parts = append(parts, onesWords[n%10])
		}
	case n >= 10:
		parts = append(parts, teenWords[n-10])
	case n > 0:
		parts = append(parts, onesWords[n])
	}

	return strings.Join(parts, " ")
}
