package catalog

// Confidence is the categorical trust rating assigned to an enriched field.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

// String returns the wire/export form of the confidence level.
func (c Confidence) String() string {
	switch c {
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Weight maps a confidence level to its contribution to the aggregate score.
func (c Confidence) Weight() int {
	switch c {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}

// Bump raises a confidence level by one. High stays High.
func (c Confidence) Bump() Confidence {
	if c >= High {
		return High
	}
	return c + 1
}

// Cap lowers c to max if it exceeds it.
func (c Confidence) Cap(max Confidence) Confidence {
	if c > max {
		return max
	}
	return c
}

// ParseConfidence maps the export form back to a Confidence. Unknown
// strings parse as Low.
func ParseConfidence(s string) Confidence {
	switch s {
	case "HIGH":
		return High
	case "MEDIUM":
		return Medium
	default:
		return Low
	}
}

// Field names the enrichment targets. One search query is issued per field.
type Field string

const (
	FieldOfficialPage Field = "official_page"
	FieldBrandWebsite Field = "brand_website"
	FieldBarcode      Field = "barcode_or_sku"
	FieldOrigin       Field = "country_of_origin"
	FieldIngredients  Field = "external_ingredients"
	FieldDescription  Field = "external_description"
)

// Fields lists all enrichment fields in resolution order.
var Fields = []Field{
	FieldOfficialPage,
	FieldBrandWebsite,
	FieldBarcode,
	FieldOrigin,
	FieldIngredients,
	FieldDescription,
}

// Fact is one candidate value for an enrichment field, tied to the search
// result it came from. Structured marks values lifted from an explicitly
// labelled page section ("Ingredients", "Made in", "INCI").
type Fact struct {
	Field      Field      `json:"field"`
	Value      string     `json:"value"`
	SourceURL  string     `json:"source_url"`
	Snippet    string     `json:"snippet,omitempty"`
	Structured bool       `json:"structured"`
	Confidence Confidence `json:"-"`
}

// Enrichment holds the resolved facts for one product: at most one fact
// per field, the full set of consulted sources, and the aggregate score.
type Enrichment struct {
	ProductURL string           `json:"product_url"`
	Facts      map[Field]Fact   `json:"facts"`
	Levels     map[Field]string `json:"levels"`
	SourceURLs []string         `json:"source_urls"`
	Score      int              `json:"score"`
}

// Record is a Product merged with its Enrichment; the unit the exporters
// write for the selected top-N set.
type Record struct {
	Product    Product    `json:"product"`
	Enrichment Enrichment `json:"enrichment"`
}

// FieldValue returns the resolved value for a field, or "" when the field
// stayed unresolved.
func (r Record) FieldValue(f Field) string {
	if fact, ok := r.Enrichment.Facts[f]; ok {
		return fact.Value
	}
	return ""
}

// FieldLevel returns the confidence label for a resolved field, or "" when
// the field stayed unresolved.
func (r Record) FieldLevel(f Field) string {
	if lvl, ok := r.Enrichment.Levels[f]; ok {
		return lvl
	}
	return ""
}
