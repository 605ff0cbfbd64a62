package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/glazeops/glaze/pkg/httpclient"
)

// DefaultEndpoint is the Google Custom Search JSON API endpoint.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSE is a SearchProvider backed by the Google Custom Search JSON
// API.
type GoogleCSE struct {
	APIKey   string
	CX       string
	Endpoint string
	client   *httpclient.Client
}

// NewGoogleCSE creates a client for the given API key and search engine
// ID.
func NewGoogleCSE(apiKey, cx string) (*GoogleCSE, error) {
	client, err := httpclient.New(httpclient.Config{
		Timeout:      10 * time.Second,
		MaxRedirects: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	return &GoogleCSE{
		APIKey:   apiKey,
		CX:       cx,
		Endpoint: DefaultEndpoint,
		client:   client,
	}, nil
}

type cseResponse struct {
	Items []Result `json:"items"`
}

// Search issues one query and returns up to limit ranked results.
func (g *GoogleCSE) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("cx", g.CX)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search %q: status %d: %s", query, resp.StatusCode, body)
	}

	var parsed cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(parsed.Items) > limit {
		parsed.Items = parsed.Items[:limit]
	}
	return parsed.Items, nil
}
