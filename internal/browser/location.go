// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"net/url"
	"strings"

	"github.com/taibuivan/charadex/pkg/convert"
	"github.com/taibuivan/charadex/pkg/pagination"
)

// ParamTerm is the query key carrying the committed search term.
const ParamTerm = "q"

// PathResults is the base path of the results view.
const PathResults = "/results"

// Location is the part of the application state carried by the URL.
type Location struct {
	Term string
	Page int

	// CharacterID is the open details view, or 0.
	CharacterID int
}

/*
ParseLocation reads the term and page out of a query string.

The second return value reports whether values is already written the
canonical way: "q" absent or trimmed and non-empty, "page" absent for page 1
and plain decimal otherwise. Callers redirect non-canonical URLs to
[Location.Query].
*/
func ParseLocation(values url.Values) (Location, bool) {
	location := Location{
		Term: strings.TrimSpace(values.Get(ParamTerm)),
		Page: pagination.FromQuery(values),
	}

	canonical := len(values[pagination.ParamPage]) <= 1 &&
		pagination.IsCanonical(values.Get(pagination.ParamPage), location.Page)

	if raw, present := values[ParamTerm]; present {
		if len(raw) != 1 || raw[0] == "" || raw[0] != location.Term {
			canonical = false
		}
	}

	return location, canonical
}

// Query returns the canonical query string of the location, without "?".
func (location Location) Query() string {
	var parts []string
	if location.Term != "" {
		parts = append(parts, ParamTerm+"="+url.QueryEscape(location.Term))
	}
	if location.Page > pagination.DefaultPage {
		parts = append(parts, pagination.ParamPage+"="+convert.FromInt(location.Page))
	}
	return strings.Join(parts, "&")
}

// Path returns the path of the view the location points at.
func (location Location) Path() string {
	if location.CharacterID > 0 {
		return PathResults + "/" + convert.FromInt(location.CharacterID)
	}
	return PathResults
}

// URL returns the canonical path and query of the location.
func (location Location) URL() string {
	return withQuery(location.Path(), location.Query())
}

// ResultsURL returns the results view for term and page.
func ResultsURL(term string, page int) string {
	return Location{Term: term, Page: page}.URL()
}

// DetailsURL returns the details view of id on top of term and page.
func DetailsURL(id int, term string, page int) string {
	return Location{Term: term, Page: page, CharacterID: id}.URL()
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
