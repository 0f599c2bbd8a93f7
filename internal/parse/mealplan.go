// Package parse extracts meal plans and physical-measure readings from raw
// assessment text with regular expressions, without any model call. Malformed or
// unexpected text never fails parsing; it only yields fewer entries.
package parse

import (
	"regexp"
	"strings"
	"unicode"
)

// MealEntry is one food line of a meal section. Measure and Quantity carry the same
// captured string: the numeric quantity is never separated from its unit token.
type MealEntry struct {
	Food     string `json:"food"`
	Measure  string `json:"measure"`
	Quantity string `json:"quantity"`
}

// mealSectionRe matches the closed set of meal-section headers. Any other header is
// not a section boundary. PRÉ[- ]?TREINO must precede TREINO so the longer header
// wins the alternation.
var mealSectionRe = regexp.MustCompile(`(?i)(CAFÉ DA MANHÃ|ALMOÇO|LANCHE I|JANTAR|PRÉ[- ]?TREINO|TREINO)`)

// mealItemRe matches "<food description><quantity with unit>". The description is a
// non-greedy run of letters, digits, spaces and ()/-+., punctuation; the unit token
// comes from a closed, case-insensitive set.
var mealItemRe = regexp.MustCompile(`(?i)^\s*([\p{L}\p{N}_ ()/\-+.,]+?)\s*(\d+(?:[.,]\d+)?\s*(?:unidades?|unids?|porções|porção|xícaras?|xicaras?|colher(?:es)?|conchas?|fatias?|gramas?|grs?|g|ml|kg|litros?|l|copos?)\.?)\s*$`)

// ParseMealPlan splits text into meal sections on the known header keywords and
// parses each section body into food entries. Keys are the uppercased section names;
// lines that do not look like "<food> <quantity+unit>" are dropped silently.
func ParseMealPlan(text string) map[string][]MealEntry {
	plan := make(map[string][]MealEntry)
	locs := mealSectionRe.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		header := strings.ToUpper(strings.TrimSpace(text[loc[2]:loc[3]]))
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := text[loc[1]:bodyEnd]
		entries := parseMealSection(body)
		if len(entries) > 0 {
			plan[header] = entries
		}
	}
	return plan
}

func parseMealSection(body string) []MealEntry {
	var entries []MealEntry
	for _, line := range splitItemLines(body) {
		m := mealItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		food := strings.TrimSpace(m[1])
		measure := strings.TrimSpace(m[2])
		if food == "" {
			continue
		}
		entries = append(entries, MealEntry{Food: food, Measure: measure, Quantity: measure})
	}
	return entries
}

// splitItemLines tokenizes a section body into candidate item lines. A boundary is a
// line break or the zero-width position between a digit and an uppercase letter,
// which recovers items that ran together without a newline in the PDF text
// (e.g. "Ovo 2Pão Integral 1 fatia").
func splitItemLines(body string) []string {
	var b strings.Builder
	runes := []rune(body)
	for i, r := range runes {
		b.WriteRune(r)
		if unicode.IsDigit(r) && i+1 < len(runes) && unicode.IsUpper(runes[i+1]) {
			b.WriteByte('\n')
		}
	}
	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
