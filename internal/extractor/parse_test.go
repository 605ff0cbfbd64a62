package extractor

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const productPage = `<!DOCTYPE html>
<html><body>
<h1 class="product_title"><strong>COSRX - Advanced Snail 96 Mucin Power Essence</strong></h1>
<img class="wp-post-image" src="https://shop.example/img/snail.jpg">
<div class="woocommerce-Tabs-panel--description" id="tab-description">
<p>A lightweight essence with 96% snail secretion filtrate for lasting hydration.</p>
<p><strong>Capacity:</strong> 100 ml</p>
<p><strong>Product contains:</strong></p>
<ul>
<li>Snail Secretion Filtrate - repair and hydration</li>
<li>Betaine - moisture retention</li>
<li>Panthenol &#8211; soothing</li>
</ul>
<p>Allantoin - calming support</p>
<p><strong>How to use:</strong> apply after cleansing.</p>
</div>
</body></html>`

func TestParseProductPage(t *testing.T) {
	data, err := Parse([]byte(productPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if data.Name != "COSRX - Advanced Snail 96 Mucin Power Essence" {
		t.Errorf("Name = %q", data.Name)
	}
	if data.Brand != "COSRX" {
		t.Errorf("Brand = %q", data.Brand)
	}
	if data.Size != "100 ml" {
		t.Errorf("Size = %q", data.Size)
	}

	wantIngredients := []string{"Snail Secretion Filtrate", "Betaine", "Panthenol", "Allantoin"}
	if !reflect.DeepEqual(data.Ingredients, wantIngredients) {
		t.Errorf("Ingredients = %v, want %v", data.Ingredients, wantIngredients)
	}

	if data.ImageURL != "https://shop.example/img/snail.jpg" {
		t.Errorf("ImageURL = %q", data.ImageURL)
	}
	if !strings.Contains(data.Description, "96% snail secretion filtrate") {
		t.Errorf("Description = %q", data.Description)
	}
}

func TestParseNoProductName(t *testing.T) {
	_, err := Parse([]byte(`<html><body><p>Nothing here.</p></body></html>`))
	if !errors.Is(err, ErrNoProductName) {
		t.Errorf("err = %v, want ErrNoProductName", err)
	}
}

func TestParseBrandFromEnDashTitle(t *testing.T) {
	page := `<html><body><strong>Dr-G &#8211; Red Blemish Clear Soothing Cream</strong></body></html>`
	data, err := Parse([]byte(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if data.Brand != "Dr-G" {
		t.Errorf("Brand = %q", data.Brand)
	}
}

func TestParseTitleWithoutBrandSeparator(t *testing.T) {
	page := `<html><body><strong>Aloe Soothing Toner</strong></body></html>`
	data, err := Parse([]byte(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Without a separator the whole title stands in for the brand.
	if data.Brand != "Aloe Soothing Toner" {
		t.Errorf("Brand = %q", data.Brand)
	}
}

func TestParseSizeVariants(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "patches",
			html: `<html><body><strong>X - Y</strong><p><strong>Quantity:</strong> 48 patches per pack</p></body></html>`,
			want: "48 patches",
		},
		{
			name: "grams without space",
			html: `<html><body><strong>X - Y</strong><p><strong>Net weight:</strong> 80g</p></body></html>`,
			want: "80g",
		},
		{
			name: "no size section",
			html: `<html><body><strong>X - Y</strong><p>Nothing labelled.</p></body></html>`,
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := Parse([]byte(c.html))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if data.Size != c.want {
				t.Errorf("Size = %q, want %q", data.Size, c.want)
			}
		})
	}
}

func TestParseIngredientsStopsAtMarker(t *testing.T) {
	page := `<html><body>
<strong>Brand - Product</strong>
<p><strong>Ingredients:</strong></p>
<ul><li>Niacinamide - brightening</li></ul>
<p><strong>Recommended for:</strong> all skin types</p>
<ul><li>Not An Ingredient - noise</li></ul>
</body></html>`

	data, err := Parse([]byte(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"Niacinamide"}
	if !reflect.DeepEqual(data.Ingredients, want) {
		t.Errorf("Ingredients = %v, want %v", data.Ingredients, want)
	}
}
