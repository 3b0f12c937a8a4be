package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magnetarr/magnetarr/internal/models"
)

func classifyTitle(title string) models.NormalizedResult {
	result := models.NormalizedResult{Title: title}
	newClassifier().Classify(&result)
	return result
}

func TestClassifyVoicePriority(t *testing.T) {
	// MULTi outranks the plain FRENCH tag when both appear.
	r := classifyTitle("Movie.2024.MULTI.FRENCH.1080p.WEB-DL-GRP")
	assert.Equal(t, "multi", r.Voice)

	r = classifyTitle("Movie.2024.TRUEFRENCH.1080p-GRP")
	assert.Equal(t, "truefrench", r.Voice)

	r = classifyTitle("Movie.2024.VOSTFR.1080p-GRP")
	assert.Equal(t, "vostfr", r.Voice)

	r = classifyTitle("Movie.2024.1080p-GRP")
	assert.Empty(t, r.Voice)
}

func TestClassifyAudioCodec(t *testing.T) {
	assert.Equal(t, "eac3", classifyTitle("Movie.EAC3.1080p").AudioCodec)
	assert.Equal(t, "eac3", classifyTitle("Movie.DDP5.1.1080p").AudioCodec)
	assert.Equal(t, "dts", classifyTitle("Movie.DTS-HD.1080p").AudioCodec)
	assert.Equal(t, "aac", classifyTitle("Movie.AAC.720p").AudioCodec)
	assert.Empty(t, classifyTitle("Movie.1080p").AudioCodec)
}

func TestClassifyAudioLanguages(t *testing.T) {
	r := classifyTitle("Movie.2024.FRENCH.ENGLISH.1080p")
	assert.Equal(t, []string{"fr", "en"}, r.AudioLangs)

	// MULTi implies the original track is present too.
	r = classifyTitle("Movie.2024.MULTI.VFF.1080p")
	assert.Contains(t, r.AudioLangs, "fr")
	assert.Contains(t, r.AudioLangs, "en")
}

func TestClassifyVideoCodecNormalization(t *testing.T) {
	assert.Equal(t, "h265", normalizeCodec("x265"))
	assert.Equal(t, "h265", normalizeCodec("HEVC"))
	assert.Equal(t, "h264", normalizeCodec("x264"))
	assert.Equal(t, "h264", normalizeCodec("AVC"))
	assert.Equal(t, "av1", normalizeCodec("AV1"))
}
