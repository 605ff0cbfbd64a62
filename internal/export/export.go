package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/glazeops/glaze/internal/catalog"
)

// headers defines the CSV column order. The JSON export carries the same
// rows, so both files always hold the identical record set.
var headers = []string{
	"url",
	"name",
	"brand",
	"category",
	"size",
	"ingredients",
	"description",
	"image_url",
	"official_page",
	"official_page_confidence",
	"brand_website",
	"brand_website_confidence",
	"barcode_or_sku",
	"barcode_confidence",
	"country_of_origin",
	"origin_confidence",
	"external_ingredients",
	"ingredients_confidence",
	"external_description",
	"description_confidence",
	"source_urls",
	"score",
}

// Row is the flattened export shape of one selected record.
type Row struct {
	URL                    string `json:"url"`
	Name                   string `json:"name"`
	Brand                  string `json:"brand"`
	Category               string `json:"category"`
	Size                   string `json:"size"`
	Ingredients            string `json:"ingredients"`
	Description            string `json:"description"`
	ImageURL               string `json:"image_url"`
	OfficialPage           string `json:"official_page"`
	OfficialPageConfidence string `json:"official_page_confidence"`
	BrandWebsite           string `json:"brand_website"`
	BrandWebsiteConfidence string `json:"brand_website_confidence"`
	Barcode                string `json:"barcode_or_sku"`
	BarcodeConfidence      string `json:"barcode_confidence"`
	Origin                 string `json:"country_of_origin"`
	OriginConfidence       string `json:"origin_confidence"`
	ExternalIngredients    string `json:"external_ingredients"`
	IngredientsConfidence  string `json:"ingredients_confidence"`
	ExternalDescription    string `json:"external_description"`
	DescriptionConfidence  string `json:"description_confidence"`
	SourceURLs             string `json:"source_urls"`
	Score                  int    `json:"score"`
}

// NewRow flattens a record into its export shape.
func NewRow(r catalog.Record) Row {
	return Row{
		URL:                    r.Product.URL,
		Name:                   r.Product.Name,
		Brand:                  r.Product.Brand,
		Category:               r.Product.Category,
		Size:                   r.Product.Size,
		Ingredients:            strings.Join(r.Product.Ingredients, "; "),
		Description:            r.Product.Description,
		ImageURL:               r.Product.ImageURL,
		OfficialPage:           r.FieldValue(catalog.FieldOfficialPage),
		OfficialPageConfidence: r.FieldLevel(catalog.FieldOfficialPage),
		BrandWebsite:           r.FieldValue(catalog.FieldBrandWebsite),
		BrandWebsiteConfidence: r.FieldLevel(catalog.FieldBrandWebsite),
		Barcode:                r.FieldValue(catalog.FieldBarcode),
		BarcodeConfidence:      r.FieldLevel(catalog.FieldBarcode),
		Origin:                 r.FieldValue(catalog.FieldOrigin),
		OriginConfidence:       r.FieldLevel(catalog.FieldOrigin),
		ExternalIngredients:    r.FieldValue(catalog.FieldIngredients),
		IngredientsConfidence:  r.FieldLevel(catalog.FieldIngredients),
		ExternalDescription:    r.FieldValue(catalog.FieldDescription),
		DescriptionConfidence:  r.FieldLevel(catalog.FieldDescription),
		SourceURLs:             strings.Join(r.Enrichment.SourceURLs, "; "),
		Score:                  r.Enrichment.Score,
	}
}

func (r Row) csvRecord() []string {
	return []string{
		r.URL,
		r.Name,
		r.Brand,
		r.Category,
		r.Size,
		r.Ingredients,
		r.Description,
		r.ImageURL,
		r.OfficialPage,
		r.OfficialPageConfidence,
		r.BrandWebsite,
		r.BrandWebsiteConfidence,
		r.Barcode,
		r.BarcodeConfidence,
		r.Origin,
		r.OriginConfidence,
		r.ExternalIngredients,
		r.IngredientsConfidence,
		r.ExternalDescription,
		r.DescriptionConfidence,
		r.SourceURLs,
		strconv.Itoa(r.Score),
	}
}

// WriteCSV writes the selected records as CSV with a fixed header.
func WriteCSV(w io.Writer, records []catalog.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(NewRow(rec).csvRecord()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the selected records as an indented JSON array of the
// same rows the CSV carries.
func WriteJSON(w io.Writer, records []catalog.Record) error {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NewRow(rec))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteFiles writes both export files into dir and returns their paths.
func WriteFiles(dir, baseName string, records []catalog.Record) (string, string, error) {
	if baseName == "" {
		baseName = "products"
	}

	csvPath := filepath.Join(dir, baseName+".csv")
	jsonPath := filepath.Join(dir, baseName+".json")

	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("create csv file: %w", err)
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, records); err != nil {
		return "", "", err
	}

	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		return "", "", fmt.Errorf("create json file: %w", err)
	}
	defer jsonFile.Close()

	if err := WriteJSON(jsonFile, records); err != nil {
		return "", "", err
	}

	return csvPath, jsonPath, nil
}
