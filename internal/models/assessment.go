package models

// StructuredData is the contract between document extraction (LLM or regex) and the
// chart builder. Assessments keep document order, which is not guaranteed to be
// chronological; the chart builder sorts by parsed date.
type StructuredData struct {
	Assessments []Assessment `json:"assessments"`
	MealPlan    *MealPlan    `json:"meal_plan,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (d *StructuredData) IsEmpty() bool {
	return d == nil || (len(d.Assessments) == 0 && d.MealPlan == nil)
}

// Assessment is one dated column of a physical assessment. Date is expected as
// DD/MM/YYYY but may be missing or malformed; assessments without a usable date are
// skipped by the chart builder.
type Assessment struct {
	Date    string   `json:"date"`
	Metrics []Metric `json:"metrics"`
}

// Metric is a single reading. Value is left untyped on purpose: the LLM path yields
// JSON numbers or numeric strings, the regex path yields raw token lists. Resolution
// to a float happens in the chart builder, which drops what it cannot resolve.
type Metric struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// MealPlan is the structured meal plan, usually matching the most recent assessment.
type MealPlan struct {
	LastUpdateDate string `json:"last_update_date,omitempty"`
	Meals          []Meal `json:"meals"`
}

// Meal is a named section of the plan (e.g. "Café da Manhã") with its items in
// document order.
type Meal struct {
	Name  string     `json:"name"`
	Items []MealItem `json:"items"`
}

// MealItem is one food line. Quantity is untyped: the LLM emits numbers, the regex
// extractor emits the quantity-with-unit string unsplit.
type MealItem struct {
	Food     string `json:"food"`
	Quantity any    `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}
