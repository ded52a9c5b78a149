// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared helpers for page-based navigation.
//
// # Overview
//
// It standardizes how the page number is read from a query string and how
// the numbered page links around the current page are laid out.
package pagination

import (
	"net/url"

	"github.com/taibuivan/charadex/pkg/convert"
)

const (
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1

	// DefaultDelta is how many neighbours of the current page get a link.
	DefaultDelta = 2

	// ParamPage is the query key carrying the page number.
	ParamPage = "page"
)

// Item is one slot of a pagination bar: either a page link or a gap ("…").
type Item struct {
	Page    int
	Gap     bool
	Current bool
}

// FromQuery reads the page number from values.
//
// # Clamping
//
// Missing, malformed, or non-positive values fall back to [DefaultPage].
func FromQuery(values url.Values) int {
	page := convert.ToIntD(values.Get(ParamPage), DefaultPage)
	if page < DefaultPage {
		return DefaultPage
	}
	return page
}

// IsCanonical reports whether raw is how page is written in a URL.
//
// Page 1 is written by omitting the parameter, every other page as its plain
// decimal form.
func IsCanonical(raw string, page int) bool {
	if page <= DefaultPage {
		return raw == ""
	}
	return raw == convert.FromInt(page)
}

/*
Window lays out the page links around current.

The first and last pages are always shown, together with delta pages on
each side of current; skipped runs collapse into a single gap item.

	Window(6, 42, 2) → 1 … 4 5 [6] 7 8 … 42

A single skipped page is shown as its number rather than a gap.
*/
func Window(current, total, delta int) []Item {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	low := max(1, current-delta)
	high := min(total, current+delta)

	var items []Item
	appendPage := func(page int) {
		items = append(items, Item{Page: page, Current: page == current})
	}

	if low > 1 {
		appendPage(1)
		switch {
		case low == 3:
			appendPage(2)
		case low > 3:
			items = append(items, Item{Gap: true})
		}
	}

	for page := low; page <= high; page++ {
		appendPage(page)
	}

	if high < total {
		switch {
		case high == total-2:
			appendPage(total - 1)
		case high < total-2:
			items = append(items, Item{Gap: true})
		}
		appendPage(total)
	}

	return items
}
