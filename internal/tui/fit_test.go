package tui

import "testing"

func TestFitLabel(t *testing.T) {
	if got := fitLabel("Alphabet", 5); got != "Alph…" {
		t.Fatalf("expected truncation, got %q", got)
	}
	if got := fitLabel("A", 3); got != "A  " {
		t.Fatalf("expected padding, got %q", got)
	}
	if got := fitLabel("日本", 4); got != "日本" {
		t.Fatalf("expected wide runes to fit, got %q", got)
	}
	if got := fitLabel("x", 0); got != "" {
		t.Fatalf("expected empty label for zero width, got %q", got)
	}
}

func TestLabelColumn(t *testing.T) {
	if got := labelColumn([]string{"a", "abcd"}, 10); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := labelColumn([]string{"a very long entity name"}, 10); got != 10 {
		t.Fatalf("expected cap 10, got %d", got)
	}
}

func TestBarCells(t *testing.T) {
	if got := barCells(50, 4); got != "██" {
		t.Fatalf("expected two full cells, got %q", got)
	}
	if got := barCells(12.5, 1); got != "▏" {
		t.Fatalf("expected one eighth, got %q", got)
	}
	if got := barCells(100, 2); got != "██" {
		t.Fatalf("expected full bar, got %q", got)
	}
	if got := barCells(0, 10); got != "" {
		t.Fatalf("expected empty bar, got %q", got)
	}
}

func TestSlotRow(t *testing.T) {
	if got := slotRow(268, 536, 20); got != 10 {
		t.Fatalf("expected row 10, got %d", got)
	}
	if got := slotRow(10, 0, 20); got != 0 {
		t.Fatalf("expected 0 for empty area, got %d", got)
	}
}
