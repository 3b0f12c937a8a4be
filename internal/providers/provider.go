// Package providers contains torrent search provider adapters and the
// ordered failover aggregator that drives them.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/magnetarr/magnetarr/internal/models"
)

// Provider is a single torrent indexer. Implementations return raw results
// without classification; normalization happens downstream.
type Provider interface {
	Name() string
	Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error)
}

// fetchJSON issues a GET request and decodes the JSON body into out.
func fetchJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
