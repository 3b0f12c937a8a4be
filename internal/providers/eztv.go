package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
)

const eztvAPIBase = "https://eztvx.to/api"

// EZTV searches the EZTV API. The API only supports IMDb identifier lookups,
// so a query without one returns a validation error and the aggregator moves
// on to the next provider.
type EZTV struct {
	httpClient *http.Client
}

type eztvTorrent struct {
	Title        string `json:"title"`
	Hash         string `json:"hash"`
	MagnetURL    string `json:"magnet_url"`
	Seeds        int    `json:"seeds"`
	Peers        int    `json:"peers"`
	SizeBytes    string `json:"size_bytes"`
	DateReleased int64  `json:"date_released_unix"`
}

type eztvResponse struct {
	TorrentsCount int           `json:"torrents_count"`
	Torrents      []eztvTorrent `json:"torrents"`
}

func NewEZTV(httpClient *http.Client) *EZTV {
	return &EZTV{httpClient: httpClient}
}

func (e *EZTV) Name() string {
	return constants.ProviderEZTV
}

func (e *EZTV) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	if query.ID == "" {
		return nil, errors.NewValidation("EZTV requires an IMDb identifier", nil)
	}

	// The API expects the numeric part without the tt prefix.
	imdbID := strings.TrimPrefix(query.ID, "tt")
	searchURL := fmt.Sprintf("%s/get-torrents?imdb_id=%s&limit=100", eztvAPIBase, imdbID)

	var response eztvResponse
	if err := fetchJSON(ctx, e.httpClient, searchURL, &response); err != nil {
		return nil, err
	}

	results := make([]models.RawResult, 0, len(response.Torrents))
	for _, t := range response.Torrents {
		size, _ := strconv.ParseInt(t.SizeBytes, 10, 64)
		result := models.RawResult{
			Title:     t.Title,
			Hash:      strings.ToLower(t.Hash),
			MagnetURI: t.MagnetURL,
			Size:      size,
			Seeders:   t.Seeds,
			Peers:     t.Peers,
			Provider:  constants.ProviderEZTV,
		}
		if t.DateReleased > 0 {
			result.PublishedAt = time.Unix(t.DateReleased, 0).UTC()
		}
		results = append(results, result)
	}
	return results, nil
}
