// Package cli provides terminal output helpers for the command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nutrigen/nutrigen/internal/models"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteStructuredData writes an extraction result to w in the given format.
func WriteStructuredData(w io.Writer, data *models.StructuredData, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	writeStructuredDataText(w, data)
	return nil
}

func writeStructuredDataText(w io.Writer, data *models.StructuredData) {
	if data.IsEmpty() {
		fmt.Fprintln(w, "Nothing extracted from the documents.")
		return
	}
	for _, a := range data.Assessments {
		fmt.Fprintf(w, "─── Avaliação %s ───\n", a.Date)
		for _, m := range a.Metrics {
			unit := m.Unit
			if unit != "" {
				unit = " " + unit
			}
			fmt.Fprintf(w, "  %-24s %v%s\n", m.Name, m.Value, unit)
		}
	}
	if data.MealPlan != nil {
		fmt.Fprintf(w, "─── Plano Alimentar")
		if data.MealPlan.LastUpdateDate != "" {
			fmt.Fprintf(w, " (%s)", data.MealPlan.LastUpdateDate)
		}
		fmt.Fprintln(w, " ───")
		for _, meal := range data.MealPlan.Meals {
			fmt.Fprintf(w, "  %s\n", meal.Name)
			for _, item := range meal.Items {
				if item.Quantity != nil {
					fmt.Fprintf(w, "    - %s: %v %s\n", item.Food, item.Quantity, item.Unit)
				} else {
					fmt.Fprintf(w, "    - %s\n", item.Food)
				}
			}
		}
	}
}

// WriteSessions writes a session listing to w in the given format.
func WriteSessions(w io.Writer, sessions []*models.Session, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  (updated %s)\n", s.ID, s.Name, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// WriteAnswer writes a chat answer to w in the given format.
func WriteAnswer(w io.Writer, question, answer string, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"question": question, "answer": answer})
	}
	fmt.Fprintf(w, "\n%s\n", answer)
	return nil
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
