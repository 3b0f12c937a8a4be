// Package infohash normalizes BitTorrent info hashes to their canonical form:
// exactly 40 lowercase hexadecimal characters (20 bytes).
//
// Providers report hashes as hex, as RFC 4648 base32, or buried inside a
// magnet URI's xt parameter. Anything else is rejected rather than guessed.
package infohash

import (
	"encoding/base32"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

const (
	// HexLength is the canonical hash length in hex characters.
	HexLength = 40

	// base32Length is the length of a 20-byte hash in base32 characters.
	base32Length = 32

	btihPrefix = "urn:btih:"
)

var (
	hexPattern    = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	base32Pattern = regexp.MustCompile(`^[A-Za-z2-7]{32}$`)
)

// Normalize converts a candidate hash value to canonical form. The candidate
// may be a 40-char hex hash, a 32-char base32 hash, or a magnet URI carrying
// either. It returns the canonical hash and true, or "" and false when the
// value cannot be interpreted as a BTIH. It never panics on malformed input.
func Normalize(candidate string) (string, bool) {
	value := strings.TrimSpace(candidate)
	if value == "" {
		return "", false
	}

	if strings.HasPrefix(value, "magnet:") {
		return FromMagnet(value)
	}

	value = strings.TrimPrefix(strings.ToLower(value), btihPrefix)

	if hexPattern.MatchString(value) {
		return strings.ToLower(value), true
	}

	if base32Pattern.MatchString(value) {
		return decodeBase32(value)
	}

	return "", false
}

// FromMagnet extracts and normalizes the info hash from a magnet URI.
func FromMagnet(uri string) (string, bool) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", false
	}

	for _, xt := range parsed.Query()["xt"] {
		if !strings.HasPrefix(strings.ToLower(xt), btihPrefix) {
			continue
		}
		raw := xt[len(btihPrefix):]
		// The query component may have been double-encoded upstream.
		if decoded, err := url.QueryUnescape(raw); err == nil {
			raw = decoded
		}
		if hash, ok := Normalize(raw); ok {
			return hash, true
		}
	}

	return "", false
}

// FromCandidates normalizes the first candidate that yields a valid hash,
// preserving the caller's field priority.
func FromCandidates(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if hash, ok := Normalize(candidate); ok {
			return hash, true
		}
	}
	return "", false
}

// IsCanonical reports whether v is already a canonical 40-char lowercase hash.
func IsCanonical(v string) bool {
	return len(v) == HexLength && hexPattern.MatchString(v) && v == strings.ToLower(v)
}

// decodeBase32 converts a 32-char base32 hash to 40 lowercase hex characters.
// A BTIH is fixed at 20 bytes, so the output is truncated or zero-padded to
// exactly 40 characters should the decode ever disagree.
func decodeBase32(value string) (string, bool) {
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		return "", false
	}

	hexHash := hex.EncodeToString(decoded)
	if len(hexHash) > HexLength {
		hexHash = hexHash[:HexLength]
	}
	for len(hexHash) < HexLength {
		hexHash += "0"
	}

	return hexHash, true
}
