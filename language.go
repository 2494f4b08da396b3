package slidefy

import (
	"strings"
)

// nonEnglishRunes are diacritic characters whose presence marks slide text as
// non-English. The set covers the languages this service historically saw
// (German, French, Spanish, Portuguese, Scandinavian).
var nonEnglishRunes = "äöüßÄÖÜéèêëàâçñíóúáìòùãõøåæœÉÈÀÇ"

// nonEnglishMarkers are function words that identify non-English prose when
// they appear as standalone tokens.
var nonEnglishMarkers = map[string]bool{
	// German
	"der": true, "die": true, "das": true, "und": true, "für": true,
	"mit": true, "eine": true, "einer": true, "nicht": true, "ist": true,
	// French
	"le": true, "la": true, "les": true, "une": true, "est": true,
	"avec": true, "pour": true, "dans": true,
	// Spanish
	"el": true, "los": true, "las": true, "una": true, "con": true,
	"para": true, "que": true, "es": true,
}

// looksEnglish applies a cheap heuristic: text containing any marker
// diacritic or non-English function word is treated as not English.
func looksEnglish(text string) bool {
	if strings.ContainsAny(text, nonEnglishRunes) {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]{}«»—–-")
		if nonEnglishMarkers[w] {
			return false
		}
	}
	return true
}
