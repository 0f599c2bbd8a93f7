package models

import "time"

// ChartPoint is a single dated reading on a series.
type ChartPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ChartSeries is one line on a chart: all readings of one metric name, in
// chronological order.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartSpec is a self-contained line-chart specification for one unit of measure.
// It carries series data plus axis and legend metadata; rendering is up to the
// consumer.
type ChartSpec struct {
	// Unit is the display label of the unit group (original spelling as first seen).
	Unit          string        `json:"unit"`
	Title         string        `json:"title"`
	TitleCentered bool          `json:"title_centered"`
	XLabel        string        `json:"x_label"`
	YLabel        string        `json:"y_label"`
	LegendTitle   string        `json:"legend_title"`
	SeriesLabel   string        `json:"series_label"`
	Markers       bool          `json:"markers"`
	Series        []ChartSeries `json:"series"`
}
