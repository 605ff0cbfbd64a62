package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/glazeops/glaze/internal/catalog"
)

func sampleRecords() []catalog.Record {
	return []catalog.Record{
		{
			Product: catalog.Product{
				URL:         "https://shop.example/product/snail-essence/",
				Name:        "COSRX - Advanced Snail 96 Mucin Power Essence",
				Brand:       "COSRX",
				Category:    "Face Care",
				Size:        "100 ml",
				Ingredients: []string{"Snail Secretion Filtrate", "Betaine", "Panthenol"},
				Description: "Lightweight essence for hydration.",
				ImageURL:    "https://shop.example/img/snail.jpg",
				Position:    0,
			},
			Enrichment: catalog.Enrichment{
				ProductURL: "https://shop.example/product/snail-essence/",
				Facts: map[catalog.Field]catalog.Fact{
					catalog.FieldOfficialPage: {
						Field:     catalog.FieldOfficialPage,
						Value:     "https://cosrx.com/products/snail-essence",
						SourceURL: "https://cosrx.com/products/snail-essence",
					},
					catalog.FieldOrigin: {
						Field:     catalog.FieldOrigin,
						Value:     "South Korea",
						SourceURL: "https://www.sephora.com/p/1",
					},
				},
				Levels: map[catalog.Field]string{
					catalog.FieldOfficialPage: "HIGH",
					catalog.FieldOrigin:       "MEDIUM",
				},
				SourceURLs: []string{"https://cosrx.com/products/snail-essence", "https://www.sephora.com/p/1"},
				Score:      3,
			},
		},
		{
			Product: catalog.Product{
				URL:      "https://shop.example/product/aloe-toner/",
				Name:     "Aloe Soothing Toner",
				Brand:    "Benton",
				Position: 1,
			},
			Enrichment: catalog.Enrichment{
				ProductURL: "https://shop.example/product/aloe-toner/",
				Score:      0,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("row count = %d, want header + %d records", len(rows), len(records))
	}
	if rows[0][0] != "url" || rows[0][len(rows[0])-1] != "score" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[0] != records[0].Product.URL {
		t.Errorf("url column = %q", first[0])
	}
	if first[5] != "Snail Secretion Filtrate; Betaine; Panthenol" {
		t.Errorf("ingredients column = %q", first[5])
	}
	if first[9] != "HIGH" {
		t.Errorf("official page confidence column = %q", first[9])
	}
	if first[len(first)-1] != "3" {
		t.Errorf("score column = %q", first[len(first)-1])
	}
}

func TestWriteJSON(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, records); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var rows []Row
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(rows) != len(records) {
		t.Fatalf("row count = %d, want %d", len(rows), len(records))
	}
	if rows[0].Origin != "South Korea" || rows[0].OriginConfidence != "MEDIUM" {
		t.Errorf("origin = %q/%q", rows[0].Origin, rows[0].OriginConfidence)
	}
	if rows[1].OfficialPage != "" || rows[1].Score != 0 {
		t.Errorf("unresolved fields should export empty: %+v", rows[1])
	}
}

// Both files must carry the identical record set: same URLs, same field
// values, in the same order.
func TestWriteFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	records := sampleRecords()

	csvPath, jsonPath, err := WriteFiles(dir, "enriched_products", records)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if filepath.Base(csvPath) != "enriched_products.csv" || filepath.Base(jsonPath) != "enriched_products.json" {
		t.Errorf("unexpected paths: %s %s", csvPath, jsonPath)
	}

	csvData, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	csvRows, err := csv.NewReader(bytes.NewReader(csvData)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var jsonRows []Row
	if err := json.Unmarshal(jsonData, &jsonRows); err != nil {
		t.Fatalf("parse json: %v", err)
	}

	if len(csvRows)-1 != len(jsonRows) {
		t.Fatalf("csv has %d rows, json has %d", len(csvRows)-1, len(jsonRows))
	}
	for i, jr := range jsonRows {
		cr := csvRows[i+1]
		if cr[0] != jr.URL {
			t.Errorf("row %d: csv url %q != json url %q", i, cr[0], jr.URL)
		}
		if cr[1] != jr.Name || cr[5] != jr.Ingredients || cr[20] != jr.SourceURLs {
			t.Errorf("row %d: csv and json field values diverge", i)
		}
	}
}

func TestWriteFilesDefaultBaseName(t *testing.T) {
	dir := t.TempDir()
	csvPath, jsonPath, err := WriteFiles(dir, "", nil)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if filepath.Base(csvPath) != "products.csv" || filepath.Base(jsonPath) != "products.json" {
		t.Errorf("unexpected default paths: %s %s", csvPath, jsonPath)
	}
}
