package core

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]string{
		"super":    "Super",
		"SUPER":    "Super",
		"Super":    "Super",
		"sUpEr":    "Super",
		" agua ":   "Agua",
		"ñandú":    "Ñandú",
		"LIMPIEZA": "Limpieza",
		"":         "",
	}
	for in, want := range cases {
		if got := NormalizeCategory(in); got != want {
			t.Fatalf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	for _, name := range []string{"super", "SUPER", "Super", "verdura", "ARREGLOS"} {
		if _, ok := LookupCategory(name); !ok {
			t.Fatalf("expected %q to be a valid category", name)
		}
	}
	for _, name := range []string{"Comida", "", "Supermercado", "Sup"} {
		if _, ok := LookupCategory(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if c, _ := LookupCategory("cARNE"); c != Carne {
		t.Fatalf("expected Carne, got %q", c)
	}
}

func TestCategoriesOrder(t *testing.T) {
	want := []string{"Arreglos", "Agua", "Carne", "Limpieza", "Super", "Verdura"}
	got := CategoryNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q want %q", i, got[i], want[i])
		}
	}
	infos := Categories()
	infos[0].Icon = "x"
	if Categories()[0].Icon == "x" {
		t.Fatalf("Categories must return a copy")
	}
}

func TestExpenseValidate(t *testing.T) {
	ts := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	good := Expense{Timestamp: ts, Category: Super, Note: "frutas", Submitter: "Ana", Amount: 3500.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Category: Super, Amount: 1},
		{Timestamp: ts, Category: "Comida", Amount: 1},
		{Timestamp: ts, Category: "super", Amount: 1},
		{Timestamp: ts, Category: Super, Amount: math.NaN()},
		{Timestamp: ts, Category: Super, Amount: math.Inf(1)},
		{Timestamp: ts, Category: Super, Amount: MaxAmount},
		{Timestamp: ts, Category: Super, Amount: -1},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
