package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/glazeops/glaze/internal/catalog"
)

// Summary aggregates what one pipeline run did.
type Summary struct {
	RunID                string
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
	CategoriesDiscovered int
	ProductsCollected    int
	ProductsExtracted    int
	ExtractFailures      int
	ProductsEnriched     int
	FactsByLevel         map[string]int
	Selected             int
}

// Tally counts resolved facts by confidence level across the given
// records.
func Tally(records []catalog.Record) map[string]int {
	byLevel := map[string]int{}
	for _, r := range records {
		for _, lvl := range r.Enrichment.Levels {
			byLevel[lvl]++
		}
	}
	return byLevel
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable run summary.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Glaze Run Summary
-----------------
Run:          {{.RunID}}
Time:         {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:     {{.Duration}}

Categories:   {{.CategoriesDiscovered}}
Collected:    {{.ProductsCollected}} product urls
Extracted:    {{.ProductsExtracted}} ({{.ExtractFailures}} failures)
Enriched:     {{.ProductsEnriched}}
Selected:     {{.Selected}}

Facts by confidence:
{{- range $lvl, $count := .FactsByLevel}}
  {{$lvl}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
