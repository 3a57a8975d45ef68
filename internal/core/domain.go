package core

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Category is one of the fixed expense buckets of the monthly sheet.
type Category string

const (
	Arreglos Category = "Arreglos"
	Agua     Category = "Agua"
	Carne    Category = "Carne"
	Limpieza Category = "Limpieza"
	Super    Category = "Super"
	Verdura  Category = "Verdura"
)

// CategoryInfo pairs a category with the glyph shown in reports.
type CategoryInfo struct {
	Category Category
	Icon     string
}

// categoryTable is order-significant: report lines and the totals range
// of the sheet follow this order.
var categoryTable = []CategoryInfo{
	{Arreglos, "⚙️"},
	{Agua, "💧"},
	{Carne, "🥩"},
	{Limpieza, "🧹"},
	{Super, "💳"},
	{Verdura, "🥦"},
}

// UnknownSubmitter is stored when the chat gives no display name.
const UnknownSubmitter = "Desconocido"

type Expense struct {
	Timestamp time.Time
	Category  Category
	Note      string
	Submitter string
	Amount    float64
}

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrZeroTimestamp   = errors.New("timestamp cannot be zero")
)

// Categories returns the category table in report order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categoryTable...)
}

// CategoryNames returns the valid category names in report order.
func CategoryNames() []string {
	out := make([]string, len(categoryTable))
	for i, c := range categoryTable {
		out[i] = string(c.Category)
	}
	return out
}

// NormalizeCategory upper-cases the first letter and lower-cases the rest.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// LookupCategory normalizes s and reports whether it names a known category.
func LookupCategory(s string) (Category, bool) {
	n := Category(NormalizeCategory(s))
	for _, c := range categoryTable {
		if c.Category == n {
			return n, true
		}
	}
	return "", false
}

func (c Category) Validate() error {
	if _, ok := LookupCategory(string(c)); !ok || NormalizeCategory(string(c)) != string(c) {
		return ErrInvalidCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 || e.Amount >= MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}
