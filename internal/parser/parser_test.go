package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestParse_ValidEntries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Entry
	}{
		{"example", "Super 3.500,50 frutas", Entry{core.Super, 3500.50, "frutas"}},
		{"no note", "agua 10", Entry{core.Agua, 10, ""}},
		{"upper case", "SUPER 1.234.567,89", Entry{core.Super, 1234567.89, ""}},
		{"multi word note", "carne 2.000 asado del  domingo", Entry{core.Carne, 2000, "asado del domingo"}},
		{"tabs", "Verdura\t150,5\tferia", Entry{core.Verdura, 150.5, "feria"}},
		{"surrounding space", "  limpieza 300  ", Entry{core.Limpieza, 300, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.InDelta(t, tt.want.Amount, got.Amount, 1e-9)
			assert.Equal(t, tt.want.Note, got.Note)
		})
	}
}

func TestParse_CategoryCaseInsensitive(t *testing.T) {
	for _, in := range []string{"super 1", "SUPER 1", "Super 1", "sUpEr 1"} {
		e, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, core.Super, e.Category, in)
	}
}

func TestParse_BadFormat(t *testing.T) {
	for _, in := range []string{
		"",
		"hola",
		"Super",
		"3500 Super",
		"Super abc",
		"Super 12a",
		"Super2 100",
		"Super-ok 100",
	} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrBadFormat, in)
	}
}

func TestParse_InvalidCategory(t *testing.T) {
	_, err := Parse("comida 100 pizza")
	var catErr *InvalidCategoryError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "comida", catErr.Input)
	assert.Equal(t, core.CategoryNames(), catErr.Valid)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestParse_InvalidAmount(t *testing.T) {
	for _, in := range []string{"Super .", "Super ,", "Super ...", "Super 1,2,3"} {
		_, err := Parse(in)
		var amtErr *InvalidAmountError
		require.True(t, errors.As(err, &amtErr), in)
		assert.ErrorIs(t, err, core.ErrInvalidAmount, in)
	}
}

func TestParse_CategoryCheckedBeforeAmount(t *testing.T) {
	_, err := Parse("Comida ...")
	var catErr *InvalidCategoryError
	assert.True(t, errors.As(err, &catErr))
}

func TestParse_SucceedsIffKnownCategory(t *testing.T) {
	tokens := []string{"arreglos", "agua", "carne", "limpieza", "super", "verdura", "ropa", "nafta", "Ñoquis"}
	for _, tok := range tokens {
		_, known := core.LookupCategory(tok)
		_, err := Parse(tok + " 100 nota")
		assert.Equal(t, known, err == nil, tok)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		in   string
		name string
		ok   bool
	}{
		{"/reporte", "reporte", true},
		{"/REPORTE", "reporte", true},
		{"/reporte@GastosBot", "reporte", true},
		{"/reporte ahora", "reporte", true},
		{"/start", "start", true},
		{"/", "", false},
		{"/@bot", "", false},
		{"reporte", "", false},
	}
	for _, tt := range tests {
		name, ok := Command(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.name, name, tt.in)
	}
	assert.True(t, IsCommand(" /x"))
	assert.False(t, IsCommand("Super 10"))
}

func TestParse_MultilineNote(t *testing.T) {
	e, err := Parse("Super 100 pan\ny leche")
	require.NoError(t, err)
	assert.Equal(t, "pan y leche", e.Note)
}
