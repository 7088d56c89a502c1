package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func TestEncode(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"kyiv_1700000000.json", "kyiv_1700000000.json"},
		{42, "42"},
		{int64(-7), "-7"},
		{true, "true"},
		{12.5, "12.5"},
		{point{Lat: 50.45, Lon: 30.52}, `{"lat":50.45,"lon":30.52}`},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, tc := range cases {
		got, err := Encode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Encode(nil)
	assert.Error(t, err)
}

func TestDecodeInto_RoundTripsStructs(t *testing.T) {
	raw, err := Encode(point{Lat: 1.5, Lon: -2.25})
	require.NoError(t, err)

	var p point
	require.NoError(t, DecodeInto(raw, &p))
	assert.Equal(t, point{Lat: 1.5, Lon: -2.25}, p)

	assert.Error(t, DecodeInto("not json", &p))
}
