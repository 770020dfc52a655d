package ui

import (
	"testing"
	"time"

	"github.com/five82/cijene/internal/state"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  Mlijeko  ", 20, "Mlijeko"},
		{"Čokolada za kuhanje", 10, "Čokolad..."},
		{"abc", 0, "abc"},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestCellPadsAndTruncates(t *testing.T) {
	if got := cell("ab", 4); got != "ab  " {
		t.Fatalf("cell short = %q", got)
	}
	if got := cell("abcdefgh", 6); got != "abc..." {
		t.Fatalf("cell long = %q", got)
	}
	if got := cell("žćč", 4); len([]rune(got)) != 4 {
		t.Fatalf("cell rune width = %d, want 4", len([]rune(got)))
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(1.5, state.CurrencyEUR); got != "1.50 €" {
		t.Fatalf("EUR = %q", got)
	}
	if got := formatPrice(1, state.CurrencyHRK); got != "7.53 kn" {
		t.Fatalf("HRK = %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-45000:   "-45,000",
		10000000: "10,000,000",
	}
	for in, want := range tests {
		if got := formatCount(in); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.t, now); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestLabelFallsBackToEnglish(t *testing.T) {
	if got := label(state.LanguageEnglish, "Stores"); got != "Stores" {
		t.Fatalf("english label = %q", got)
	}
	if got := label(state.LanguageCroatian, "no such label"); got != "no such label" {
		t.Fatalf("missing croatian label = %q", got)
	}
	if got := label(state.LanguageCroatian, "Stores"); got == "Stores" {
		t.Fatalf("croatian label was not translated")
	}
}

func TestResolveTheme(t *testing.T) {
	if got := ResolveTheme(state.ThemeDark, false).Name; got != "Dark" {
		t.Fatalf("dark = %q", got)
	}
	if got := ResolveTheme(state.ThemeLight, true).Name; got != "Light" {
		t.Fatalf("light = %q", got)
	}
	if got := ResolveTheme(state.ThemeSystem, true).Name; got != "Dark" {
		t.Fatalf("system dark = %q", got)
	}
	if got := ResolveTheme(state.ThemeSystem, false).Name; got != "Light" {
		t.Fatalf("system light = %q", got)
	}
}

func TestNextThemeCycles(t *testing.T) {
	got := nextTheme(state.ThemeLight)
	got = nextTheme(got)
	got = nextTheme(got)
	if got != state.ThemeLight {
		t.Fatalf("three steps = %q, want light", got)
	}
	if nextTheme(state.Theme("bogus")) != state.ThemeSystem {
		t.Fatalf("unknown theme should reset to system")
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		total, selected, height int
		start, end              int
	}{
		{5, 0, 10, 0, 5},
		{20, 0, 10, 0, 10},
		{20, 9, 10, 0, 10},
		{20, 10, 10, 1, 11},
		{20, 19, 10, 10, 20},
		{3, 1, 0, 0, 3},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.total, tt.selected, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = %d,%d want %d,%d",
				tt.total, tt.selected, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestSelectRowClamps(t *testing.T) {
	if got := selectRow(0, 5, "k", 3); got != 0 {
		t.Fatalf("up at top = %d", got)
	}
	if got := selectRow(4, 5, "j", 3); got != 4 {
		t.Fatalf("down at bottom = %d", got)
	}
	if got := selectRow(1, 5, "pgdown", 3); got != 4 {
		t.Fatalf("page down = %d", got)
	}
	if got := selectRow(3, 5, "g", 3); got != 0 {
		t.Fatalf("top = %d", got)
	}
	if got := selectRow(0, 5, "G", 3); got != 4 {
		t.Fatalf("bottom = %d", got)
	}
	if got := selectRow(2, 0, "j", 3); got != 0 {
		t.Fatalf("empty list = %d", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:                  "-",
		512:                "0.5 KiB",
		3 * 1024 * 1024:    "3.00 MiB",
		5 << 30:            "5.00 GiB",
		1536 * 1024 * 1024: "1.50 GiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
