package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nutrigen/nutrigen/internal/models"
)

// PhysicalMeasures is the raw regex extraction of a physical-assessment table.
// Dates and Measures are parallel, unkeyed collections: by convention the Nth token
// of a measure aligns with the Nth date, but nothing enforces it. Use
// ParseMeasureTable for the aligned form.
type PhysicalMeasures struct {
	// Dates holds every DD/MM/YYYY-shaped substring in document order, duplicates
	// included, with no calendar validation.
	Dates []string `json:"dates"`
	// Measures maps a known measurement label to the whitespace-split tokens that
	// followed its last occurrence. Earlier occurrences are overwritten.
	Measures map[string][]string `json:"measures"`
}

var dateRe = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

// measureLabels is the closed set of recognized measurement labels (Portuguese
// nutrition-assessment terminology). Labels outside this list are never extracted.
// Compound labels come before their prefixes so the longer label wins.
var measureLabels = []string{
	"Peso",
	"Altura",
	"IMC",
	"% Gordura",
	"% Massa Magra",
	"Massa Muscular",
	"Gordura Visceral",
	"Idade Metabólica",
	"Taxa Metabólica Basal",
	"Pescoço",
	"Ombro",
	"Tórax",
	"Cintura",
	"Abdômen",
	"Quadril",
	"Braço Direito",
	"Braço Esquerdo",
	"Antebraço Direito",
	"Antebraço Esquerdo",
	"Coxa Direita",
	"Coxa Esquerda",
	"Panturrilha Direita",
	"Panturrilha Esquerda",
	"Tríceps",
	"Bíceps",
	"Subescapular",
	"Supra-ilíaca",
	"Axilar Média",
	"Peitoral",
	"Abdominal",
}

// measureUnits maps labels to their customary unit, used when converting regex
// output into structured data. Unlisted labels carry no unit.
var measureUnits = map[string]string{
	"Peso":                  "kg",
	"Altura":                "cm",
	"Massa Muscular":        "kg",
	"% Gordura":             "%",
	"% Massa Magra":         "%",
	"Gordura Visceral":      "",
	"IMC":                   "kg/m²",
	"Taxa Metabólica Basal": "kcal",
	"Pescoço":               "cm",
	"Ombro":                 "cm",
	"Tórax":                 "cm",
	"Cintura":               "cm",
	"Abdômen":               "cm",
	"Quadril":               "cm",
	"Braço Direito":         "cm",
	"Braço Esquerdo":        "cm",
	"Antebraço Direito":     "cm",
	"Antebraço Esquerdo":    "cm",
	"Coxa Direita":          "cm",
	"Coxa Esquerda":         "cm",
	"Panturrilha Direita":   "cm",
	"Panturrilha Esquerda":  "cm",
	"Tríceps":               "mm",
	"Bíceps":                "mm",
	"Subescapular":          "mm",
	"Supra-ilíaca":          "mm",
	"Axilar Média":          "mm",
	"Peitoral":              "mm",
	"Abdominal":             "mm",
}

// labelRes is compiled once per label: the label, optionally a colon, then the rest
// of the line.
var labelRes = compileLabelRes()

func compileLabelRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(measureLabels))
	for _, label := range measureLabels {
		// Word boundary keeps "Braço" from matching inside "Antebraço". \b is
		// ASCII-only in RE2, so it is applied only to labels starting with an
		// ASCII letter ("% Gordura" would never match behind one).
		prefix := ""
		if c := label[0]; (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			prefix = `\b`
		}
		res[label] = regexp.MustCompile(`(?i)` + prefix + regexp.QuoteMeta(label) + `[ \t]*:?[ \t]*([^\n]+)`)
	}
	return res
}

// ParsePhysicalMeasures scans text for assessment dates and known measurement
// labels. For a repeated label the last occurrence wins, which loses earlier
// columns; callers needing the full history should use ParseMeasureTable.
func ParsePhysicalMeasures(text string) PhysicalMeasures {
	out := PhysicalMeasures{
		Dates:    dateRe.FindAllString(text, -1),
		Measures: make(map[string][]string),
	}
	for _, label := range measureLabels {
		matches := labelRes[label].FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		last := matches[len(matches)-1]
		tokens := strings.Fields(last[1])
		if len(tokens) > 0 {
			out.Measures[label] = tokens
		}
	}
	return out
}

// MeasureTable is the aligned form of a physical-assessment table: one column per
// assessment date, one row per label. Readings from repeated label occurrences are
// appended in document order instead of overwritten.
type MeasureTable struct {
	// Dates are the distinct assessment dates in order of first appearance.
	Dates []string `json:"dates"`
	// Rows maps a label to its readings, aligned positionally with Dates.
	Rows map[string][]string `json:"rows"`
	// Inconsistencies reports rows whose reading count does not match the date
	// count; those rows cannot be aligned and are kept for inspection only.
	Inconsistencies []string `json:"inconsistencies,omitempty"`
}

// ParseMeasureTable extracts dates and per-label readings with explicit alignment.
// Unlike ParsePhysicalMeasures, a label appearing once per assessment column keeps
// every reading, and a count mismatch between dates and readings is reported rather
// than silently misaligned.
func ParseMeasureTable(text string) *MeasureTable {
	t := &MeasureTable{Rows: make(map[string][]string)}
	seen := make(map[string]bool)
	for _, d := range dateRe.FindAllString(text, -1) {
		if !seen[d] {
			seen[d] = true
			t.Dates = append(t.Dates, d)
		}
	}
	for _, label := range measureLabels {
		var tokens []string
		for _, m := range labelRes[label].FindAllStringSubmatch(text, -1) {
			tokens = append(tokens, strings.Fields(m[1])...)
		}
		if len(tokens) == 0 {
			continue
		}
		t.Rows[label] = tokens
		if len(t.Dates) > 0 && len(tokens) != len(t.Dates) {
			t.Inconsistencies = append(t.Inconsistencies,
				fmt.Sprintf("%s: %d reading(s) for %d date(s)", label, len(tokens), len(t.Dates)))
		}
	}
	return t
}

// UnitFor returns the customary unit for a label, or the empty string.
func UnitFor(label string) string {
	return measureUnits[label]
}

// ToStructuredData converts the aligned table into the chartable contract: one
// assessment per date, one metric per label reading. Rows whose reading count does
// not match the date count are excluded; they are listed in Inconsistencies.
func (t *MeasureTable) ToStructuredData() *models.StructuredData {
	data := &models.StructuredData{}
	for i, date := range t.Dates {
		a := models.Assessment{Date: date}
		for _, label := range measureLabels {
			tokens := t.Rows[label]
			if len(tokens) != len(t.Dates) {
				continue
			}
			a.Metrics = append(a.Metrics, models.Metric{
				Name:  label,
				Value: tokens[i],
				Unit:  measureUnits[label],
			})
		}
		if len(a.Metrics) > 0 {
			data.Assessments = append(data.Assessments, a)
		}
	}
	return data
}
