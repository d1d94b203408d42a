package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatThousands renders a coin amount with comma separators, the way the
// game prints prices in chat.
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// CompactNumber shortens a coin amount with K/M/B suffixes for chat and
// notification text.
func CompactNumber(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000_000:
		return trimZero(n/1_000_000_000) + "B"
	case abs >= 1_000_000:
		return trimZero(n/1_000_000) + "M"
	case abs >= 1_000:
		return trimZero(n/1_000) + "K"
	}
	return trimZero(n)
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// FormatPrice renders a unit price for sign input. Whole numbers drop the
// decimal point; fractional bazaar prices keep one digit.
func FormatPrice(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// TitleCase uppercases the first letter of each word. Bazaar search wants
// item names in this form when no item tag is available.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
