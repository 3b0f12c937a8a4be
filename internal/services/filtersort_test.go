package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetarr/magnetarr/internal/models"
)

func tp(t time.Time) *time.Time { return &t }

func sampleResults() []models.NormalizedResult {
	day := func(d int) *time.Time {
		return tp(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
	}
	return []models.NormalizedResult{
		{Hash: "h1", Title: "Movie.2160p.MULTI.x265-GRP", Quality: "2160p", VideoType: "web-dl", Voice: "multi", VideoCodec: "h265", AudioLangs: []string{"fr", "en"}, Provider: "apibay", Seeders: 50, Peers: 10, Size: 9000, PublishedAt: day(3), Cached: true},
		{Hash: "h2", Title: "Movie.1080p.FRENCH.x264-GRP", Quality: "1080p", VideoType: "bluray", Voice: "french", VideoCodec: "h264", AudioLangs: []string{"fr"}, Provider: "ygg", Seeders: 120, Peers: 40, Size: 4000, PublishedAt: day(1), Cached: false},
		{Hash: "h3", Title: "Movie.1080p.VOSTFR.x265-GRP", Quality: "1080p", VideoType: "web-dl", Voice: "vostfr", VideoCodec: "h265", AudioLangs: []string{"en"}, Provider: "torrentscsv", Seeders: 120, Peers: 5, Size: 5000, Cached: true},
		{Hash: "h4", Title: "Movie.720p.MULTI.x264-GRP", Quality: "720p", VideoType: "web-dl", Voice: "multi", VideoCodec: "h264", AudioLangs: []string{"fr", "en"}, Provider: "apibay", Seeders: 7, Peers: 2, Size: 1500, PublishedAt: day(9), Cached: false},
	}
}

func TestFilterAllPassesThrough(t *testing.T) {
	engine := NewFilterSortEngine(300)

	criteria := models.FilterCriteria{Quality: models.FilterAll, Voice: ""}
	out := engine.Apply(sampleResults(), criteria, models.DefaultSort())
	assert.Len(t, out, 4)
}

func TestFilterDimensions(t *testing.T) {
	engine := NewFilterSortEngine(300)
	results := sampleResults()

	tests := []struct {
		name     string
		criteria models.FilterCriteria
		want     []string
	}{
		{"quality", models.FilterCriteria{Quality: "1080p"}, []string{"h2", "h3"}},
		{"quality case insensitive", models.FilterCriteria{Quality: "1080P"}, []string{"h2", "h3"}},
		{"voice", models.FilterCriteria{Voice: "multi"}, []string{"h1", "h4"}},
		{"video codec", models.FilterCriteria{VideoCodec: "h264"}, []string{"h2", "h4"}},
		{"tracker", models.FilterCriteria{Tracker: "ygg"}, []string{"h2"}},
		{"audio lang", models.FilterCriteria{AudioLang: "en"}, []string{"h3", "h1", "h4"}},
		{"cached only", models.FilterCriteria{CachedOnly: true}, []string{"h3", "h1"}},
		{"combined", models.FilterCriteria{Quality: "1080p", CachedOnly: true}, []string{"h3"}},
		{"no match", models.FilterCriteria{Quality: "480p"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Apply(results, tt.criteria, models.SortSpec{})
			var hashes []string
			for _, r := range out {
				hashes = append(hashes, r.Hash)
			}
			assert.Equal(t, tt.want, hashes)
		})
	}
}

func TestSortOrders(t *testing.T) {
	engine := NewFilterSortEngine(300)
	results := sampleResults()

	tests := []struct {
		name string
		spec models.SortSpec
		want []string
	}{
		{"seeders desc", models.SortSpec{Field: models.SortBySeeders, Direction: models.SortDesc}, []string{"h2", "h3", "h1", "h4"}},
		{"seeders asc", models.SortSpec{Field: models.SortBySeeders, Direction: models.SortAsc}, []string{"h4", "h1", "h2", "h3"}},
		{"size desc", models.SortSpec{Field: models.SortBySize, Direction: models.SortDesc}, []string{"h1", "h3", "h2", "h4"}},
		{"peers asc", models.SortSpec{Field: models.SortByPeers, Direction: models.SortAsc}, []string{"h4", "h3", "h1", "h2"}},
		{"published desc keeps unknown last", models.SortSpec{Field: models.SortByPublished, Direction: models.SortDesc}, []string{"h4", "h1", "h2", "h3"}},
		{"published asc keeps unknown last", models.SortSpec{Field: models.SortByPublished, Direction: models.SortAsc}, []string{"h2", "h1", "h4", "h3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Apply(results, models.FilterCriteria{}, tt.spec)
			var hashes []string
			for _, r := range out {
				hashes = append(hashes, r.Hash)
			}
			assert.Equal(t, tt.want, hashes)
		})
	}
}

func TestSortIsStable(t *testing.T) {
	engine := NewFilterSortEngine(300)

	// All records share the same seeder count; discovery order must survive.
	var results []models.NormalizedResult
	for i := 0; i < 10; i++ {
		results = append(results, models.NormalizedResult{
			Hash:    fmt.Sprintf("h%02d", i),
			Seeders: 42,
		})
	}

	out := engine.Apply(results, models.FilterCriteria{}, models.DefaultSort())
	require.Len(t, out, 10)
	for i, r := range out {
		assert.Equal(t, fmt.Sprintf("h%02d", i), r.Hash)
	}
}

func TestResultCap(t *testing.T) {
	engine := NewFilterSortEngine(3)

	var results []models.NormalizedResult
	for i := 0; i < 10; i++ {
		results = append(results, models.NormalizedResult{
			Hash:    fmt.Sprintf("h%02d", i),
			Seeders: i,
		})
	}

	out := engine.Apply(results, models.FilterCriteria{}, models.DefaultSort())
	require.Len(t, out, 3)
	assert.Equal(t, "h09", out[0].Hash)
	assert.Equal(t, "h07", out[2].Hash)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	engine := NewFilterSortEngine(300)
	results := sampleResults()

	engine.Apply(results, models.FilterCriteria{}, models.SortSpec{Field: models.SortBySize, Direction: models.SortAsc})

	assert.Equal(t, "h1", results[0].Hash)
	assert.Equal(t, "h4", results[3].Hash)
}
