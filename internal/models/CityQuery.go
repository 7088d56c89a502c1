package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

const (
	WeatherRefPrefix = "weatherRef/"
	GeoPrefix        = "geo/"

	snapshotExtension = ".json"
	// unnamedCity replaces a name with nothing to keep, e.g. only punctuation.
	unnamedCity = "unknown"
)

// NormalizeCity case-folds and collapses whitespace. The result is the
// logical key of the city in every cache and log.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

func WeatherRefKey(city string) string {
	return WeatherRefPrefix + city
}

func GeoKey(city string) string {
	return GeoPrefix + city
}

// SanitizeCity maps every rune outside [a-z0-9_-] to '_' after lowercasing,
// then collapses and trims the underscores. When a letter or digit had to be
// dropped (Cyrillic, diacritics) an 8-hex-digit digest of the lowercased name
// is appended, so names that differ only in those runes stay distinct.
func SanitizeCity(city string) string {
	lowered := strings.ToLower(city)

	var b strings.Builder
	b.Grow(len(lowered))

	lossy := false
	prevUnderscore := false
	for _, r := range lowered {
		allowed := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !allowed {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				lossy = true
			}
			if !prevUnderscore {
				b.WriteByte('_')
			}
			prevUnderscore = true
			continue
		}
		b.WriteRune(r)
		prevUnderscore = false
	}

	sanitized := strings.Trim(b.String(), "_")
	if lossy {
		digest := cityDigest(lowered)
		if sanitized == "" {
			return digest
		}
		return sanitized + "_" + digest
	}
	if sanitized == "" {
		return unnamedCity
	}
	return sanitized
}

func cityDigest(city string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(city))
	return fmt.Sprintf("%08x", h.Sum32())
}

// DeriveReference builds the blob key of a snapshot. The timestamp is the
// provider's event time so a re-fetch of the same data lands on the same key.
func DeriveReference(city string, timestamp int64) string {
	return fmt.Sprintf("%s_%d%s", SanitizeCity(city), timestamp, snapshotExtension)
}
