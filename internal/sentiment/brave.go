package sentiment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const defaultBraveBaseURL = "https://api.search.brave.com"

// BraveFetcher pulls recent news snippets from the Brave Search API. A
// missing API key or any request failure yields an empty headline list so
// the analyst falls back to neutral.
type BraveFetcher struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewBraveFetcher builds a fetcher; an empty baseURL selects production.
func NewBraveFetcher(baseURL, apiKey string, log zerolog.Logger) *BraveFetcher {
	if baseURL == "" {
		baseURL = defaultBraveBaseURL
	}
	return &BraveFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// FetchHeadlines returns up to five news snippets for the base asset.
func (f *BraveFetcher) FetchHeadlines(ctx context.Context, baseAsset string) ([]string, error) {
	if f.apiKey == "" {
		f.log.Debug().Msg("no Brave API key configured, skipping news fetch")
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", baseAsset+" crypto news")
	q.Set("count", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/res/v1/web/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", f.apiKey)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave search: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}

	headlines := make([]string, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		if r.Description != "" {
			headlines = append(headlines, r.Description)
		}
	}
	return headlines, nil
}
