// Package parser turns chat text into expense entries.
//
// An entry is "<category> <amount> [note...]": one alphabetic token, then a
// token made of digits, "." and ",", then free text. Text starting with the
// command marker is never treated as an entry.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gastos/internal/core"
)

// CommandMarker prefixes bot commands.
const CommandMarker = "/"

var entryPattern = regexp.MustCompile(`(?s)^([a-zA-ZáéíóúÁÉÍÓÚüÜñÑ]+)\s+([0-9.,]+)(?:\s+(.*))?$`)

// ErrBadFormat is returned when text does not have the entry shape.
var ErrBadFormat = errors.New("bad format")

// Entry is a validated expense submission, before it is stamped and stored.
type Entry struct {
	Category core.Category
	Amount   float64
	Note     string
}

// InvalidCategoryError carries the token as the user typed it.
type InvalidCategoryError struct {
	Input string
	Valid []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q", e.Input)
}

func (e *InvalidCategoryError) Unwrap() error { return core.ErrInvalidCategory }

// InvalidAmountError carries the numeric token that could not be parsed.
type InvalidAmountError struct {
	Input string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Input)
}

func (e *InvalidAmountError) Unwrap() error { return core.ErrInvalidAmount }

// IsCommand reports whether text starts with the command marker.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), CommandMarker)
}

// Command extracts the lower-cased command name from "/name@bot args".
func Command(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, CommandMarker) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(text, CommandMarker))
	if len(fields) == 0 {
		return "", false
	}
	name, _, _ := strings.Cut(fields[0], "@")
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// Parse validates text as an expense entry. The category is checked before
// the amount, so a bad category is reported even when the amount is bad too.
func Parse(text string) (Entry, error) {
	m := entryPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Entry{}, ErrBadFormat
	}
	catToken, amountToken := m[1], m[2]

	category, ok := core.LookupCategory(catToken)
	if !ok {
		return Entry{}, &InvalidCategoryError{Input: catToken, Valid: core.CategoryNames()}
	}

	amount, err := core.ParseAmount(amountToken)
	if err != nil {
		return Entry{}, &InvalidAmountError{Input: amountToken}
	}

	return Entry{
		Category: category,
		Amount:   amount,
		Note:     strings.Join(strings.Fields(m[3]), " "),
	}, nil
}
