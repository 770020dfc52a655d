package ui

import "github.com/five82/cijene/internal/state"

// Croatian labels for view titles and common words. Missing keys fall back
// to the English text.
var croatian = map[string]string{
	"Chains":     "Trgovački lanci",
	"Stores":     "Trgovine",
	"Products":   "Proizvodi",
	"Product":    "Proizvod",
	"Favorites":  "Favoriti",
	"Compare":    "Usporedba",
	"Settings":   "Postavke",
	"Logs":       "Zapisi",
	"Archives":   "Arhive",
	"Health":     "Stanje",
	"Prices":     "Cijene",
	"Search":     "Traži",
	"Loading":    "Učitavanje",
	"Offline":    "Izvan mreže",
	"Online":     "Na mreži",
	"Best":       "Najniža",
	"Worst":      "Najviša",
	"Average":    "Prosjek",
	"No results": "Nema rezultata",
}

// label translates an English UI label into lang.
func label(lang state.Language, english string) string {
	if lang == state.LanguageCroatian {
		if hr, ok := croatian[english]; ok {
			return hr
		}
	}
	return english
}
