// Package charts turns structured assessment data into evolution chart
// specifications, one chart per unit of measure. Building is a pure function of its
// input: rows that cannot be resolved are dropped, never defaulted.
package charts

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nutrigen/nutrigen/internal/models"
)

// unitSentinel is used when a metric carries no unit at all.
const unitSentinel = "N/A"

// dateLayout is the day-first assessment date format: "03/04/2024" is the 3rd of
// April, never March 4th.
const dateLayout = "02/01/2006"

type flatRow struct {
	date  time.Time
	name  string
	value float64
	unit  string
}

// BuildEvolutionCharts flattens assessments into (date, name, value, unit) rows,
// drops rows whose date, value, or name cannot be resolved, sorts the survivors
// chronologically, and emits one line-chart spec per unit of measure. Units are
// grouped by a canonical key (case-folded, trimmed) so "Kg" and "kg" share a chart,
// while the first original spelling is kept for display. Returns an empty list for
// empty input.
func BuildEvolutionCharts(data *models.StructuredData) []*models.ChartSpec {
	if data == nil || len(data.Assessments) == 0 {
		return nil
	}
	rows := flatten(data.Assessments)
	if len(rows) == 0 {
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	// Partition by canonical unit key, preserving first-encounter order after the
	// sort; remember the display spelling first seen for each key.
	var order []string
	display := make(map[string]string)
	byUnit := make(map[string][]flatRow)
	for _, row := range rows {
		key := canonicalUnit(row.unit)
		if _, ok := byUnit[key]; !ok {
			order = append(order, key)
			display[key] = row.unit
		}
		byUnit[key] = append(byUnit[key], row)
	}

	specs := make([]*models.ChartSpec, 0, len(order))
	for _, key := range order {
		specs = append(specs, buildChart(display[key], byUnit[key]))
	}
	return specs
}

// flatten emits one row per (assessment, metric) pair. Assessments without a
// parseable day-first date are skipped entirely; metrics without a resolvable
// numeric value or a non-empty name are skipped. A missing unit becomes the
// sentinel, not an empty string.
func flatten(assessments []models.Assessment) []flatRow {
	var rows []flatRow
	for _, a := range assessments {
		if strings.TrimSpace(a.Date) == "" {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(a.Date))
		if err != nil {
			continue
		}
		for _, m := range a.Metrics {
			name := strings.TrimSpace(m.Name)
			if name == "" {
				continue
			}
			value, ok := resolveValue(m.Value)
			if !ok {
				continue
			}
			unit := m.Unit
			if strings.TrimSpace(unit) == "" {
				unit = unitSentinel
			}
			rows = append(rows, flatRow{date: date, name: name, value: value, unit: unit})
		}
	}
	return rows
}

// resolveValue coerces a metric value to float64. The LLM path produces JSON
// numbers or numeric strings; the regex path produces tokens that may use a decimal
// comma. Token lists and anything else are unresolvable.
func resolveValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func canonicalUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

func buildChart(unit string, rows []flatRow) *models.ChartSpec {
	var names []string
	points := make(map[string][]models.ChartPoint)
	for _, row := range rows {
		if _, ok := points[row.name]; !ok {
			names = append(names, row.name)
		}
		points[row.name] = append(points[row.name], models.ChartPoint{Date: row.date, Value: row.value})
	}
	series := make([]models.ChartSeries, 0, len(names))
	for _, name := range names {
		series = append(series, models.ChartSeries{Name: name, Points: points[name]})
	}
	return &models.ChartSpec{
		Unit:          unit,
		Title:         "Evolução das Métricas (" + unit + ")",
		TitleCentered: true,
		XLabel:        "Data",
		YLabel:        "Valor (" + unit + ")",
		LegendTitle:   "Métricas",
		SeriesLabel:   "Métrica",
		Markers:       true,
		Series:        series,
	}
}
