package infohash

import (
	"strings"
	"testing"
)

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "08ada5a7a6183aae1e09d831df6748d566095a10", "08ada5a7a6183aae1e09d831df6748d566095a10"},
		{"uppercase lowered", "08ADA5A7A6183AAE1E09D831DF6748D566095A10", "08ada5a7a6183aae1e09d831df6748d566095a10"},
		{"mixed case", "08AdA5a7A6183aAe1e09D831dF6748d566095A10", "08ada5a7a6183aae1e09d831df6748d566095a10"},
		{"urn prefix stripped", "urn:btih:08ada5a7a6183aae1e09d831df6748d566095a10", "08ada5a7a6183aae1e09d831df6748d566095a10"},
		{"surrounding whitespace", "  08ada5a7a6183aae1e09d831df6748d566095a10\n", "08ada5a7a6183aae1e09d831df6748d566095a10"},
	}

	for _, test := range tests {
		got, ok := Normalize(test.input)
		if !ok {
			t.Errorf("%s: Normalize(%q) not ok", test.name, test.input)
			continue
		}
		if got != test.want {
			t.Errorf("%s: Normalize(%q) = %q, want %q", test.name, test.input, got, test.want)
		}
		if !IsCanonical(got) {
			t.Errorf("%s: result %q is not canonical", test.name, got)
		}
	}
}

func TestNormalizeBase32(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// 20 zero bytes and 20 0xff bytes, exact by construction
		{"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", strings.Repeat("0", 40)},
		{"77777777777777777777777777777777", strings.Repeat("f", 40)},
		// The full RFC 4648 alphabet in order
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", "00443214c74254b635cf84653a56d7c675be77df"},
	}

	for _, test := range tests {
		got, ok := Normalize(test.input)
		if !ok {
			t.Fatalf("Normalize(%q) not ok", test.input)
		}
		if got != test.want {
			t.Errorf("Normalize(%q) = %q, want %q", test.input, got, test.want)
		}
		if len(got) != HexLength {
			t.Errorf("Normalize(%q) returned %d chars, want %d", test.input, len(got), HexLength)
		}

		// Decoding must be deterministic
		again, _ := Normalize(test.input)
		if again != got {
			t.Errorf("Normalize(%q) not deterministic: %q != %q", test.input, got, again)
		}
	}
}

func TestNormalizeMagnet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"hex payload",
			"magnet:?xt=urn:btih:08ADA5A7A6183AAE1E09D831DF6748D566095A10&dn=Example",
			"08ada5a7a6183aae1e09d831df6748d566095a10",
		},
		{
			"base32 payload",
			"magnet:?xt=urn:btih:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA&tr=udp%3A%2F%2Ftracker.example%3A6969",
			strings.Repeat("0", 40),
		},
		{
			"xt not first parameter",
			"magnet:?dn=Example.2020.1080p&xt=urn:btih:08ada5a7a6183aae1e09d831df6748d566095a10",
			"08ada5a7a6183aae1e09d831df6748d566095a10",
		},
	}

	for _, test := range tests {
		got, ok := Normalize(test.input)
		if !ok {
			t.Errorf("%s: Normalize(%q) not ok", test.name, test.input)
			continue
		}
		if got != test.want {
			t.Errorf("%s: Normalize(%q) = %q, want %q", test.name, test.input, got, test.want)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a hash",
		"08ada5a7a6183aae1e09d831df6748d566095a1",    // 39 chars
		"08ada5a7a6183aae1e09d831df6748d566095a100",  // 41 chars
		"18AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",           // 0,1,8,9 are not base32
		"magnet:?dn=NoHashHere",
		"magnet:?xt=urn:sha1:08ada5a7a6183aae1e09d831df6748d566095a10",
		"http://example.com/torrent/12345",
	}

	for _, input := range inputs {
		if got, ok := Normalize(input); ok {
			t.Errorf("Normalize(%q) = %q, want rejection", input, got)
		}
	}
}

func TestFromCandidates(t *testing.T) {
	hash, ok := FromCandidates(
		"garbage",
		"magnet:?xt=urn:btih:77777777777777777777777777777777",
		"08ada5a7a6183aae1e09d831df6748d566095a10",
	)
	if !ok {
		t.Fatal("expected a hash from candidates")
	}
	// First valid candidate wins
	if hash != strings.Repeat("f", 40) {
		t.Errorf("FromCandidates = %q, want %q", hash, strings.Repeat("f", 40))
	}

	if _, ok := FromCandidates("", "nope"); ok {
		t.Error("expected no hash from invalid candidates")
	}
}
