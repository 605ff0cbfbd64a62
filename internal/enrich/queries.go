package enrich

import (
	"regexp"
	"strings"

	"github.com/glazeops/glaze/internal/catalog"
)

var (
	parenPattern = regexp.MustCompile(`\([^)]*\)`)
	sizeToken    = regexp.MustCompile(`(?i)\b\d+\s?(ml|g|oz|patches|pcs)\b`)
	spacePattern = regexp.MustCompile(`\s{2,}`)
)

// normalizeName strips parenthesized fragments and size tokens from a
// product title so queries stay focused on the product itself.
func normalizeName(name string) string {
	name = parenPattern.ReplaceAllString(name, "")
	name = sizeToken.ReplaceAllString(name, "")
	name = spacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// queryTarget pairs an enrichment field with the query template that
// targets it. Brand website facts are derived from official page hits
// rather than queried separately.
type queryTarget struct {
	field  catalog.Field
	suffix string
}

var queryTargets = []queryTarget{
	{catalog.FieldOfficialPage, "product official site"},
	{catalog.FieldIngredients, "ingredients or composition"},
	{catalog.FieldBarcode, "where to buy"},
	{catalog.FieldOrigin, "country of origin"},
	{catalog.FieldDescription, "product information"},
}

// BuildQueries returns the bounded per-field query set for one product.
func BuildQueries(p catalog.Product) map[catalog.Field]string {
	base := normalizeName(p.Name)

	queries := make(map[catalog.Field]string, len(queryTargets))
	for _, t := range queryTargets {
		queries[t.field] = base + " " + t.suffix
	}
	return queries
}
