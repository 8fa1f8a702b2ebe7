package csv

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CleanPrice reduces a scraped price such as "1,500원" to whole won by
// keeping only its digits.
func CleanPrice(value string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if digits == "" {
		return 0, fmt.Errorf("no numeric value in %q", value)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", value, err)
	}
	return n, nil
}

// FormatWon formats a price with thousands separators, e.g. 12500 -> "12,500원".
func FormatWon(won int64) string {
	s := strconv.FormatInt(won, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "원"
	if neg {
		return "-" + out
	}
	return out
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
