package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/models"
)

const torrentsCSVAPIBase = "https://torrents-csv.com"

// TorrentsCSV searches the torrents-csv.com index. The API has no IMDb
// lookup, so queries always go by title.
type TorrentsCSV struct {
	httpClient *http.Client
}

type torrentsCSVTorrent struct {
	InfoHash    string `json:"infohash"`
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	CreatedUnix int64  `json:"created_unix"`
	Seeders     int    `json:"seeders"`
	Leechers    int    `json:"leechers"`
}

type torrentsCSVResponse struct {
	Torrents []torrentsCSVTorrent `json:"torrents"`
	Next     int64                `json:"next"`
}

func NewTorrentsCSV(httpClient *http.Client) *TorrentsCSV {
	return &TorrentsCSV{httpClient: httpClient}
}

func (t *TorrentsCSV) Name() string {
	return constants.ProviderTorrentsCSV
}

func (t *TorrentsCSV) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	q := query.Title
	if q == "" {
		q = query.OriginalTitle
	}
	if query.Year != "" {
		q = fmt.Sprintf("%s %s", q, query.Year)
	}

	searchURL := fmt.Sprintf("%s/service/search?q=%s", torrentsCSVAPIBase, url.QueryEscape(q))

	var response torrentsCSVResponse
	if err := fetchJSON(ctx, t.httpClient, searchURL, &response); err != nil {
		return nil, err
	}

	results := make([]models.RawResult, 0, len(response.Torrents))
	for _, torrent := range response.Torrents {
		result := models.RawResult{
			Title:    torrent.Name,
			Hash:     strings.ToLower(torrent.InfoHash),
			Size:     torrent.SizeBytes,
			Seeders:  torrent.Seeders,
			Peers:    torrent.Leechers,
			Provider: constants.ProviderTorrentsCSV,
		}
		if torrent.CreatedUnix > 0 {
			result.PublishedAt = time.Unix(torrent.CreatedUnix, 0).UTC()
		}
		results = append(results, result)
	}
	return results, nil
}
