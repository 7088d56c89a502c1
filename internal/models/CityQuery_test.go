package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCity(t *testing.T) {
	cases := map[string]string{
		"  Kyiv ":              "kyiv",
		"New   York":           "new york",
		"\tSAN\nFrancisco  ":   "san francisco",
		"Київ":                 "київ",
		"":                     "",
		"Rio de Janeiro":       "rio de janeiro",
		"  Ivano-Frankivsk   ": "ivano-frankivsk",
	}
	for in, want := range cases {
		got := NormalizeCity(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, NormalizeCity(got), "normalize must be idempotent for %q", in)
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "weatherRef/kyiv", WeatherRefKey("kyiv"))
	assert.Equal(t, "geo/new york", GeoKey("new york"))
}

func TestDeriveReference(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9_]+_[0-9]+\.json$`)

	cases := []struct {
		city string
		ts   int64
		want string
	}{
		{"kyiv", 1700000000, "kyiv_1700000000.json"},
		{"new york", 1700000123, "new_york_1700000123.json"},
		{"  St. Louis ", 42, "st_louis_42.json"},
		{"__o'neill__", 7, "o_neill_7.json"},
	}
	for _, tc := range cases {
		got := DeriveReference(tc.city, tc.ts)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, got, DeriveReference(tc.city, tc.ts))
		assert.Regexp(t, pattern, got)
		assert.NotContains(t, got, "__")
	}
}

func TestDeriveReference_KeepsHyphen(t *testing.T) {
	assert.Equal(t, "ivano-frankivsk_1.json", DeriveReference("Ivano-Frankivsk", 1))
}

func TestSanitizeCity_PunctuationOnlyFallsBackToPlaceholder(t *testing.T) {
	assert.Equal(t, "unknown", SanitizeCity("___"))
	assert.Equal(t, "unknown", SanitizeCity("' . '"))
	assert.Equal(t, "unknown_5.json", DeriveReference("", 5))
}

func TestDeriveReference_NonASCIINamesStayDistinct(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9_-]+_[0-9]+\.json$`)
	digestOnly := regexp.MustCompile(`^[0-9a-f]{8}$`)

	kyiv := DeriveReference("київ", 1700000000)
	lviv := DeriveReference("львів", 1700000000)
	assert.NotEqual(t, kyiv, lviv)
	assert.Regexp(t, pattern, kyiv)
	assert.Regexp(t, pattern, lviv)
	assert.Regexp(t, digestOnly, SanitizeCity("київ"))
	assert.Equal(t, kyiv, DeriveReference("Київ", 1700000000))

	assert.NotEqual(t, SanitizeCity("łódź"), SanitizeCity("ódź"))
	assert.Regexp(t, `^d_[0-9a-f]{8}$`, SanitizeCity("łódź"))
	assert.Regexp(t, `^s_o_paulo_[0-9a-f]{8}$`, SanitizeCity("São Paulo"))
	assert.NotEqual(t, SanitizeCity("são paulo"), SanitizeCity("sèo paulo"))
}

func TestGeoCoordinate_Valid(t *testing.T) {
	assert.True(t, GeoCoordinate{Lat: 50.45, Lon: 30.52}.Valid())
	assert.False(t, GeoCoordinate{Lat: 91, Lon: 0}.Valid())
	assert.False(t, GeoCoordinate{Lat: 0, Lon: 181}.Valid())
}
