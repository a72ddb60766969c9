package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"costbook/internal/core"
)

// HTTPFetcher retrieves a rate table as JSON over HTTP. The expected payload
// is {"USD":1,"ILS":3.4,"GBP":0.6,"EURO":0.7}, each value meaning
// "1 USD = N units of that currency". Any payload that fails validation is
// rejected in full.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (core.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("fetch rates: unexpected status %d", res.StatusCode)
	}

	var payload map[core.Currency]float64
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates payload: %w", err)
	}

	table := core.RateTable(payload)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
