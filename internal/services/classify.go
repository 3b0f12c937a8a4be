package services

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cehbz/torrentname"

	"github.com/magnetarr/magnetarr/internal/models"
)

// classifier derives display facets from a release title. Resolution, source
// and video codec come from the release name parser; voice and audio facets
// use compiled patterns of the scene tags the parser does not cover.
type classifier struct {
	voicePatterns map[string]*regexp.Regexp
	audioCodecs   map[string]*regexp.Regexp
	audioLangs    map[string]*regexp.Regexp
}

var (
	classifierOnce     sync.Once
	classifierInstance *classifier
)

// Voice tags in rough priority order. A MULTi release outranks a plain dub tag.
var voiceOrder = []string{"multi", "vff", "vfq", "truefrench", "french", "vostfr", "dubbed"}

var audioCodecOrder = []string{"eac3", "ac3", "truehd", "dts", "aac", "opus", "flac"}

var audioLangOrder = []string{"fr", "en", "es", "de", "it", "ru"}

func newClassifier() *classifier {
	classifierOnce.Do(func() {
		classifierInstance = &classifier{
			voicePatterns: map[string]*regexp.Regexp{
				"multi":      regexp.MustCompile(`(?i)\bmulti\b`),
				"vff":        regexp.MustCompile(`(?i)\bvff\b`),
				"vfq":        regexp.MustCompile(`(?i)\bvfq\b`),
				"truefrench": regexp.MustCompile(`(?i)\btruefrench\b`),
				"french":     regexp.MustCompile(`(?i)\bfrench\b`),
				"vostfr":     regexp.MustCompile(`(?i)\bvostfr\b`),
				"dubbed":     regexp.MustCompile(`(?i)\bdubbed\b`),
			},
			audioCodecs: map[string]*regexp.Regexp{
				"eac3":   regexp.MustCompile(`(?i)\be\.?ac-?3\b|\bddp\.?5\.1\b`),
				"ac3":    regexp.MustCompile(`(?i)\bac-?3\b|\bdd5\.1\b`),
				"dts":    regexp.MustCompile(`(?i)\bdts(-?hd)?\b`),
				"truehd": regexp.MustCompile(`(?i)\btruehd\b`),
				"aac":    regexp.MustCompile(`(?i)\baac(\.?2\.0)?\b`),
				"opus":   regexp.MustCompile(`(?i)\bopus\b`),
				"flac":   regexp.MustCompile(`(?i)\bflac\b`),
			},
			audioLangs: map[string]*regexp.Regexp{
				"fr": regexp.MustCompile(`(?i)\b(french|truefrench|vff|vfq|vostfr)\b`),
				"en": regexp.MustCompile(`(?i)\b(english|eng)\b`),
				"es": regexp.MustCompile(`(?i)\b(spanish|castellano|latino)\b`),
				"de": regexp.MustCompile(`(?i)\b(german|deutsch)\b`),
				"it": regexp.MustCompile(`(?i)\bitalian\b`),
				"ru": regexp.MustCompile(`(?i)\b(russian|rus)\b`),
			},
		}
	})
	return classifierInstance
}

// Classify fills the classification facets of a normalized result from its
// release title.
func (c *classifier) Classify(result *models.NormalizedResult) {
	title := result.Title

	if parsed := torrentname.Parse(title); parsed != nil {
		result.Quality = strings.ToLower(parsed.Resolution)
		result.VideoType = strings.ToLower(parsed.Source)
		result.VideoCodec = normalizeCodec(parsed.Codec)
	}

	for _, tag := range voiceOrder {
		pattern, ok := c.voicePatterns[tag]
		if !ok {
			continue
		}
		if pattern.MatchString(title) {
			result.Voice = tag
			break
		}
	}

	for _, codec := range audioCodecOrder {
		if c.audioCodecs[codec].MatchString(title) {
			result.AudioCodec = codec
			break
		}
	}

	for _, lang := range audioLangOrder {
		if c.audioLangs[lang].MatchString(title) {
			result.AudioLangs = append(result.AudioLangs, lang)
		}
	}
	// MULTi implies at least two audio tracks; assume the original language
	// is present alongside the tagged ones.
	if result.Voice == "multi" && !containsString(result.AudioLangs, "en") {
		result.AudioLangs = append(result.AudioLangs, "en")
	}
}

func normalizeCodec(codec string) string {
	c := strings.ToLower(codec)
	switch c {
	case "x264", "h.264", "h264", "avc":
		return "h264"
	case "x265", "h.265", "h265", "hevc":
		return "h265"
	case "xvid", "divx", "av1", "vp9":
		return c
	}
	return c
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
