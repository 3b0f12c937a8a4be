package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/models"
)

const (
	apibayAPIBase       = "https://apibay.org"
	apibayVideoCategory = "200"
)

// ApiBay searches The Pirate Bay mirror API. When the query carries an IMDb
// identifier it is passed straight through, which gives far better precision
// than a title search.
type ApiBay struct {
	httpClient *http.Client
}

type apibayTorrent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	InfoHash string `json:"info_hash"`
	Seeders  string `json:"seeders"`
	Leechers string `json:"leechers"`
	Size     string `json:"size"`
	Added    string `json:"added"`
	IMDB     string `json:"imdb"`
}

func NewApiBay(httpClient *http.Client) *ApiBay {
	return &ApiBay{httpClient: httpClient}
}

func (a *ApiBay) Name() string {
	return constants.ProviderApiBay
}

func (a *ApiBay) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	q := query.ID
	if q == "" {
		q = query.Title
		if query.Year != "" {
			q = fmt.Sprintf("%s %s", q, query.Year)
		}
	}

	searchURL := fmt.Sprintf("%s/q.php?q=%s&cat=%s", apibayAPIBase, url.QueryEscape(q), apibayVideoCategory)

	var torrents []apibayTorrent
	if err := fetchJSON(ctx, a.httpClient, searchURL, &torrents); err != nil {
		return nil, err
	}

	results := make([]models.RawResult, 0, len(torrents))
	for _, t := range torrents {
		// The API signals an empty result set with a single placeholder row.
		if t.ID == "0" || t.InfoHash == strings.Repeat("0", 40) {
			continue
		}

		size, _ := strconv.ParseInt(t.Size, 10, 64)
		seeders, _ := strconv.Atoi(t.Seeders)
		leechers, _ := strconv.Atoi(t.Leechers)

		result := models.RawResult{
			Title:    t.Name,
			Hash:     strings.ToLower(t.InfoHash),
			Size:     size,
			Seeders:  seeders,
			Peers:    leechers,
			Provider: constants.ProviderApiBay,
		}
		if added, err := strconv.ParseInt(t.Added, 10, 64); err == nil && added > 0 {
			result.PublishedAt = time.Unix(added, 0).UTC()
		}
		results = append(results, result)
	}
	return results, nil
}
