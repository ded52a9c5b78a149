// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

/*
TestParseLocation verifies term and page extraction and the canonical check.
*/
func TestParseLocation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      Location
		canonical bool
	}{
		{"empty", "", Location{Page: 1}, true},
		{"term only", "q=Morty", Location{Term: "Morty", Page: 1}, true},
		{"term and page", "q=Morty&page=2", Location{Term: "Morty", Page: 2}, true},
		{"page only", "page=7", Location{Page: 7}, true},
		{"explicit first page", "q=Rick&page=1", Location{Term: "Rick", Page: 1}, false},
		{"untrimmed term", "q=%20Rick%20", Location{Term: "Rick", Page: 1}, false},
		{"blank term", "q=", Location{Page: 1}, false},
		{"whitespace term", "q=%20%20", Location{Page: 1}, false},
		{"malformed page", "page=abc", Location{Page: 1}, false},
		{"zero page", "page=0", Location{Page: 1}, false},
		{"negative page", "page=-3", Location{Page: 1}, false},
		{"padded page", "page=02", Location{Page: 2}, false},
		{"repeated term", "q=Rick&q=Morty", Location{Term: "Rick", Page: 1}, false},
		{"repeated page", "page=2&page=3", Location{Page: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, canonical := ParseLocation(values)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canonical, canonical)
		})
	}
}

/*
TestLocation_URL verifies the canonical URL forms.
*/
func TestLocation_URL(t *testing.T) {
	assert.Equal(t, "/results", ResultsURL("", 1))
	assert.Equal(t, "/results?q=Rick", ResultsURL("Rick", 1))
	assert.Equal(t, "/results?q=Morty&page=2", ResultsURL("Morty", 2))
	assert.Equal(t, "/results?page=4", ResultsURL("", 4))
	assert.Equal(t, "/results?q=Rick+Sanchez", ResultsURL("Rick Sanchez", 1))
	assert.Equal(t, "/results/7?q=Rick&page=3", DetailsURL(7, "Rick", 3))
	assert.Equal(t, "/results/1", DetailsURL(1, "", 1))
}

/*
TestLocation_RoundTrip verifies that any location survives being written to
and read back from a URL, and that the written form is canonical.
*/
func TestLocation_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		location := Location{
			Term: strings.TrimSpace(rapid.String().Draw(t, "term")),
			Page: rapid.IntRange(1, 1000).Draw(t, "page"),
		}

		parsed, err := url.Parse(location.URL())
		if err != nil {
			t.Fatalf("unparseable URL %q: %v", location.URL(), err)
		}

		got, canonical := ParseLocation(parsed.Query())
		if !canonical {
			t.Fatalf("URL %q is not canonical", location.URL())
		}
		if got != location {
			t.Fatalf("round trip: got %+v, want %+v", got, location)
		}
	})
}
