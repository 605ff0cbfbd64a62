package extractor

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageData is everything parsed off a single product page.
type PageData struct {
	Name        string
	Brand       string
	Size        string
	Ingredients []string
	Description string
	ImageURL    string
}

var (
	ingredientStartKeys = []string{"product contains", "ingredients"}
	ingredientStopKeys  = []string{"product effects", "recommended for", "how to use"}
	sizeLabels          = []string{"capacity", "quantity", "size", "net weight", "contents", "volume", "weight"}

	// Quantity expressions like "50 ml", "80g", "48 patches".
	sizePattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:ml|g|kg|oz|lb|pcs?|pieces?|patches?|tabs?|tablets?|bottles?|packs?)\b`)
)

// ErrNoProductName is returned when a page carries no recognizable product
// heading; such pages are skipped rather than stored half-empty.
var ErrNoProductName = errors.New("no product name found on page")

// Parse extracts the product data from a product page body.
func Parse(body []byte) (*PageData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	name, brand := parseNameAndBrand(doc)
	if name == "" {
		return nil, ErrNoProductName
	}

	return &PageData{
		Name:        name,
		Brand:       brand,
		Size:        parseSize(doc),
		Ingredients: parseIngredients(doc),
		Description: parseDescription(doc),
		ImageURL:    parseImageURL(doc),
	}, nil
}

// parseNameAndBrand reads the first <strong> as the product title. The
// brand is the title segment before the first " - " after dash
// normalization.
func parseNameAndBrand(doc *goquery.Document) (string, string) {
	strong := doc.Find("strong").First()
	if strong.Length() == 0 {
		return "", ""
	}

	name := strings.TrimSpace(strong.Text())
	return name, brandFromName(name)
}

func brandFromName(name string) string {
	normalized := strings.ReplaceAll(name, "–", " - ")
	parts := strings.SplitN(normalized, " - ", 2)
	return strings.TrimSpace(parts[0])
}

// parseIngredients walks the siblings after the "Product contains" /
// "Ingredients" marker until a stop marker, pulling ingredient names out
// of <ul><li> or <p> lines of the form "Name - role".
func parseIngredients(doc *goquery.Document) []string {
	var ingredients []string

	start := findStrong(doc, ingredientStartKeys)
	if start == nil {
		return ingredients
	}

	for cur := start.Parent().Next(); cur.Length() > 0; cur = cur.Next() {
		text := strings.ToLower(strings.TrimSpace(cur.Text()))
		if containsAny(text, ingredientStopKeys) {
			break
		}

		switch goquery.NodeName(cur) {
		case "ul":
			cur.Find("li").Each(func(i int, li *goquery.Selection) {
				if name := ingredientName(li.Text()); name != "" {
					ingredients = append(ingredients, name)
				}
			})
		case "p":
			if name := ingredientName(cur.Text()); name != "" {
				ingredients = append(ingredients, name)
			}
		}
	}

	return ingredients
}

// ingredientName takes the part before the first dash of an
// "ingredient - role" line.
func ingredientName(line string) string {
	line = strings.ReplaceAll(line, "–", "-")
	if !strings.Contains(line, "-") {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(line, "-", 2)[0])
}

// parseSize finds a labelled <strong> ("Capacity:", "Size:", ...) and
// matches a quantity expression in the text that follows it, up to the
// next <strong>.
func parseSize(doc *goquery.Document) string {
	var size string

	doc.Find("strong").EachWithBreak(func(i int, s *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(s.Text()))
		if !containsAny(label, sizeLabels) {
			return true
		}

		combined := textAfter(s)
		combined = strings.ReplaceAll(combined, "–", "-")

		if m := sizePattern.FindString(combined); m != "" {
			size = strings.TrimSpace(m)
			return false
		}
		return true
	})

	return size
}

// textAfter joins the text of the sibling nodes following s within its
// parent, stopping at the next <strong>.
func textAfter(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	target := s.Get(0)

	var parts []string
	passed := false

	s.Parent().Contents().EachWithBreak(func(i int, n *goquery.Selection) bool {
		if n.Get(0) == target {
			passed = true
			return true
		}
		if !passed {
			return true
		}
		if n.Is("strong") {
			return false
		}
		parts = append(parts, n.Text())
		return true
	})

	return strings.TrimSpace(strings.Join(parts, " "))
}

// parseDescription reads the WooCommerce description tab panel.
func parseDescription(doc *goquery.Document) string {
	desc := doc.Find("div.woocommerce-Tabs-panel--description#tab-description")
	if desc.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(desc.Text())
}

// parseImageURL reads the main product image.
func parseImageURL(doc *goquery.Document) string {
	src, _ := doc.Find("img.wp-post-image").First().Attr("src")
	return src
}

// findStrong returns the first <strong> whose text contains one of keys
// (case-insensitive), or nil.
func findStrong(doc *goquery.Document, keys []string) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("strong").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if containsAny(strings.ToLower(s.Text()), keys) {
			found = s
			return false
		}
		return true
	})

	return found
}

func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
