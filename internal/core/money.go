// Package core provides the expense domain: categories, amounts and the
// monthly sheet addressing.
//
// Amounts follow the es-AR convention: "." groups thousands and "," is the
// decimal point, both when parsing user input and when formatting replies.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// amountFormat is a go-humanize pattern: "." thousands, "," decimals, 2 digits.
	amountFormat = "#.###,##"

	// MaxAmount is the exclusive upper bound of an accepted amount. Below it a
	// float64 still resolves cents when rounded to two decimals.
	MaxAmount = 1e13
)

// ParseAmount converts a user token such as "3.500,50" to 3500.5.
//
// Every "." is dropped and the first "," becomes the decimal point. The
// token must be left with digits and at most one decimal point and the
// value must stay below MaxAmount, otherwise ErrInvalidAmount is returned;
// a not-a-number value is never produced.
//
// Examples:
//
//	ParseAmount("10")           -> 10
//	ParseAmount("3.500,50")     -> 3500.5
//	ParseAmount("1.234.567,89") -> 1234567.89
func ParseAmount(token string) (float64, error) {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" || s == "." {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= MaxAmount {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// FormatAmount renders f with thousands grouping and two decimals, e.g.
// 3500.5 -> "3.500,50". Non-finite values render as "-".
func FormatAmount(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	if math.Abs(f) >= MaxAmount {
		return formatLarge(f)
	}
	return humanize.FormatFloat(amountFormat, f)
}

// formatLarge groups the integer part without going through int64, which
// FormatFloat does and which overflows past 2^63. Cents are not
// representable at this magnitude and always render as ",00".
func formatLarge(f float64) string {
	grouped := humanize.Commaf(math.Trunc(f))
	return strings.ReplaceAll(grouped, ",", ".") + ",00"
}
