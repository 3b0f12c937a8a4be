package services

import (
	"sort"
	"strings"

	"github.com/magnetarr/magnetarr/internal/models"
)

// FilterSortEngine applies display filtering and ordering to a result set.
// It never mutates its input; the host UI re-runs it on every control change
// against the same cached search results.
type FilterSortEngine struct {
	maxResults int
}

func NewFilterSortEngine(maxResults int) *FilterSortEngine {
	return &FilterSortEngine{maxResults: maxResults}
}

// Apply filters results by criteria, orders them by spec and truncates to
// the configured maximum. Records comparing equal under the sort key keep
// their relative input order.
func (e *FilterSortEngine) Apply(results []models.NormalizedResult, criteria models.FilterCriteria, spec models.SortSpec) []models.NormalizedResult {
	filtered := make([]models.NormalizedResult, 0, len(results))
	for _, r := range results {
		if e.matches(r, criteria) {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, comparator(filtered, spec))

	if e.maxResults > 0 && len(filtered) > e.maxResults {
		filtered = filtered[:e.maxResults]
	}
	return filtered
}

func (e *FilterSortEngine) matches(r models.NormalizedResult, c models.FilterCriteria) bool {
	if !dimensionMatches(c.Quality, r.Quality) {
		return false
	}
	if !dimensionMatches(c.VideoType, r.VideoType) {
		return false
	}
	if !dimensionMatches(c.Voice, r.Voice) {
		return false
	}
	if !dimensionMatches(c.VideoCodec, r.VideoCodec) {
		return false
	}
	if !dimensionMatches(c.AudioCodec, r.AudioCodec) {
		return false
	}
	if !dimensionMatches(c.Tracker, r.Provider) {
		return false
	}
	if c.AudioLang != "" && !strings.EqualFold(c.AudioLang, models.FilterAll) {
		if !containsFold(r.AudioLangs, c.AudioLang) {
			return false
		}
	}
	if c.CachedOnly && !r.Cached {
		return false
	}
	return true
}

// dimensionMatches treats an empty selection and the "all" sentinel as
// pass-through.
func dimensionMatches(selected, actual string) bool {
	if selected == "" || strings.EqualFold(selected, models.FilterAll) {
		return true
	}
	return strings.EqualFold(selected, actual)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func comparator(results []models.NormalizedResult, spec models.SortSpec) func(i, j int) bool {
	asc := spec.Direction == models.SortAsc

	less := func(i, j int) bool {
		a, b := results[i], results[j]
		switch spec.Field {
		case models.SortByPeers:
			return a.Peers < b.Peers
		case models.SortBySize:
			return a.Size < b.Size
		case models.SortByPublished:
			// Unknown dates sort last in both directions.
			switch {
			case a.PublishedAt == nil && b.PublishedAt == nil:
				return false
			case a.PublishedAt == nil:
				return !asc
			case b.PublishedAt == nil:
				return asc
			}
			return a.PublishedAt.Before(*b.PublishedAt)
		default:
			return a.Seeders < b.Seeders
		}
	}

	if asc {
		return less
	}
	return func(i, j int) bool { return less(j, i) }
}
