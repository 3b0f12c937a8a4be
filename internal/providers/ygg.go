package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
)

const yggAPIBase = "https://yggapi.eu"

// YGG searches the YGG API. The passkey authenticates against this provider
// only; it is attached to YGG requests and nowhere else.
type YGG struct {
	httpClient *http.Client
	passkey    string
}

type yggTorrent struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Size    int64  `json:"size"`
	Hash    string `json:"hash,omitempty"`
	Seeders int    `json:"seeders"`
	Peers   int    `json:"leechers"`
}

func NewYGG(httpClient *http.Client, passkey string) *YGG {
	return &YGG{httpClient: httpClient, passkey: passkey}
}

func (y *YGG) Name() string {
	return constants.ProviderYGG
}

func (y *YGG) Search(ctx context.Context, query models.MovieQuery) ([]models.RawResult, error) {
	if y.passkey == "" {
		return nil, errors.NewValidation("YGG passkey not configured", nil)
	}

	q := query.Title
	if q == "" {
		q = query.OriginalTitle
	}
	if query.Year != "" {
		q = fmt.Sprintf("%s %s", q, query.Year)
	}

	searchURL := fmt.Sprintf("%s/torrents?q=%s&page=1&per_page=100&passkey=%s",
		yggAPIBase, url.QueryEscape(q), url.QueryEscape(y.passkey))

	var torrents []yggTorrent
	if err := fetchJSON(ctx, y.httpClient, searchURL, &torrents); err != nil {
		return nil, err
	}

	results := make([]models.RawResult, 0, len(torrents))
	for _, t := range torrents {
		hash := strings.ToLower(t.Hash)
		if hash == "" {
			// The search endpoint omits hashes for some entries; resolve
			// them individually.
			resolved, err := y.torrentHash(ctx, t.ID)
			if err != nil {
				continue
			}
			hash = resolved
		}

		results = append(results, models.RawResult{
			Title:    t.Title,
			Hash:     hash,
			Size:     t.Size,
			Seeders:  t.Seeders,
			Peers:    t.Peers,
			Provider: constants.ProviderYGG,
		})
	}
	return results, nil
}

func (y *YGG) torrentHash(ctx context.Context, torrentID int) (string, error) {
	detailURL := fmt.Sprintf("%s/torrent/%s?passkey=%s",
		yggAPIBase, strconv.Itoa(torrentID), url.QueryEscape(y.passkey))

	var result struct {
		Hash string `json:"hash"`
	}
	if err := fetchJSON(ctx, y.httpClient, detailURL, &result); err != nil {
		return "", fmt.Errorf("failed to get torrent hash: %w", err)
	}
	if result.Hash == "" {
		return "", fmt.Errorf("torrent %d has no hash", torrentID)
	}
	return strings.ToLower(result.Hash), nil
}
