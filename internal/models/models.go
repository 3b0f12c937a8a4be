// Package models defines the data structures shared across the acquisition
// pipeline.
package models

import (
	"fmt"
	"strings"
	"time"
)

// MovieQuery is the immutable input to a search, supplied by the host UI.
type MovieQuery struct {
	Title         string `json:"title"`
	OriginalTitle string `json:"originalTitle,omitempty"`
	Year          string `json:"year,omitempty"`
	ID            string `json:"id,omitempty"` // external identifier, e.g. an IMDB ID
}

// IsZero reports whether the query carries nothing searchable.
func (q MovieQuery) IsZero() bool {
	return q.Title == "" && q.OriginalTitle == "" && q.ID == ""
}

// CacheKey returns the full search identity. A refinement of a generic title
// must never collide with another title's key, so every field participates
// unless a unique identifier is present.
func (q MovieQuery) CacheKey() string {
	if q.ID != "" {
		return fmt.Sprintf("search:id:%s", q.ID)
	}
	return fmt.Sprintf("search:q:%s|%s|%s",
		strings.ToLower(q.Title), strings.ToLower(q.OriginalTitle), q.Year)
}

// RawResult is an untrusted provider record. Field presence is heterogeneous:
// a provider supplies either a direct hash or a magnet URI, and may omit
// trackers or the publish timestamp entirely.
type RawResult struct {
	Title       string
	Hash        string
	MagnetURI   string
	Size        int64
	Seeders     int
	Peers       int
	PublishedAt time.Time // zero when unknown
	Trackers    []string
	Provider    string
}

// NormalizedResult is a display-ready record keyed by its canonical hash.
// Records that fail hash normalization never become a NormalizedResult.
type NormalizedResult struct {
	Hash        string     `json:"hash"`
	Title       string     `json:"title"`
	Size        int64      `json:"size"`
	Seeders     int        `json:"seeders"`
	Peers       int        `json:"peers"`
	Trackers    []string   `json:"trackers"`
	PublishedAt *time.Time `json:"publishedAt"`
	Cached      bool       `json:"cached"`
	Provider    string     `json:"provider"`

	// Classification fields derived from the release title
	Quality    string   `json:"quality,omitempty"`
	VideoType  string   `json:"videoType,omitempty"`
	Voice      string   `json:"voice,omitempty"`
	AudioLangs []string `json:"audioLangs,omitempty"`
	VideoCodec string   `json:"videoCodec,omitempty"`
	AudioCodec string   `json:"audioCodec,omitempty"`
}

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "all"

// FilterCriteria maps each filter dimension to a selected value. An empty
// string is equivalent to FilterAll.
type FilterCriteria struct {
	Quality    string `json:"quality,omitempty"`
	Tracker    string `json:"tracker,omitempty"`
	VideoType  string `json:"videoType,omitempty"`
	Voice      string `json:"voice,omitempty"`
	AudioLang  string `json:"audioLang,omitempty"`
	VideoCodec string `json:"videoCodec,omitempty"`
	AudioCodec string `json:"audioCodec,omitempty"`
	CachedOnly bool   `json:"cachedOnly,omitempty"`
}

// SortField names a sortable NormalizedResult attribute.
type SortField string

const (
	SortBySeeders   SortField = "seeders"
	SortByPeers     SortField = "peers"
	SortBySize      SortField = "size"
	SortByPublished SortField = "published"
)

// SortDirection controls result ordering.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec describes the requested ordering. Equal-key records keep their
// original discovery order.
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort orders by seeders, best first.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortBySeeders, Direction: SortDesc}
}
