package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nutrigen/nutrigen/internal/models"
)

func sampleData() *models.StructuredData {
	return &models.StructuredData{
		Assessments: []models.Assessment{
			{
				Date: "01/06/2024",
				Metrics: []models.Metric{
					{Name: "Peso", Value: 80.5, Unit: "kg"},
					{Name: "% Gordura", Value: "22.1", Unit: "%"},
				},
			},
		},
		MealPlan: &models.MealPlan{
			LastUpdateDate: "01/06/2024",
			Meals: []models.Meal{
				{Name: "ALMOÇO", Items: []models.MealItem{
					{Food: "Arroz integral", Quantity: 100, Unit: "g"},
					{Food: "Salada"},
				}},
			},
		},
	}
}

func TestWriteStructuredData_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStructuredData(&buf, sampleData(), OutputJSON); err != nil {
		t.Fatalf("WriteStructuredData(json): %v", err)
	}
	var decoded models.StructuredData
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Assessments) != 1 || decoded.Assessments[0].Date != "01/06/2024" {
		t.Errorf("decoded assessments: %+v", decoded.Assessments)
	}
	if decoded.MealPlan == nil || len(decoded.MealPlan.Meals) != 1 {
		t.Errorf("decoded meal plan: %+v", decoded.MealPlan)
	}
}

func TestWriteStructuredData_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStructuredData(&buf, sampleData(), OutputText); err != nil {
		t.Fatalf("WriteStructuredData(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Avaliação 01/06/2024", "Peso", "80.5 kg", "Plano Alimentar (01/06/2024)", "ALMOÇO", "Arroz integral", "Salada"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteStructuredData_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStructuredData(&buf, &models.StructuredData{}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Nothing extracted") {
		t.Errorf("empty data output: %q", buf.String())
	}
}

func TestWriteSessions(t *testing.T) {
	sessions := []*models.Session{
		{ID: "id-1", Name: "Avaliações", UpdatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	var buf bytes.Buffer
	if err := WriteSessions(&buf, sessions, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "id-1") || !strings.Contains(out, "Avaliações") || !strings.Contains(out, "2024-06-01") {
		t.Errorf("sessions output: %q", out)
	}

	buf.Reset()
	if err := WriteSessions(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No sessions") {
		t.Errorf("empty listing output: %q", buf.String())
	}

	buf.Reset()
	if err := WriteSessions(&buf, sessions, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []*models.Session
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("JSON listing decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "id-1" {
		t.Errorf("decoded sessions: %+v", decoded)
	}
}

func TestWriteAnswer(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, "Qual meu peso?", "80.5 kg", OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "80.5 kg") {
		t.Errorf("text answer output: %q", buf.String())
	}

	buf.Reset()
	if err := WriteAnswer(&buf, "Qual meu peso?", "80.5 kg", OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("JSON answer decode: %v", err)
	}
	if decoded["answer"] != "80.5 kg" || decoded["question"] != "Qual meu peso?" {
		t.Errorf("decoded answer: %v", decoded)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
		{"single long", "word", 1, "word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.s, tt.maxWords)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}
