// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog is the client for the remote character API.

It translates a (term, page) or (id) request into exactly one outbound GET
with a bounded wait, and every failure into an [apperr.AppError] whose code
callers branch on through [KindOf]. Raw transport errors never leave this
package uninterpreted.

Payloads are returned as parsed, without validation beyond their JSON shape.
*/
package catalog

import (
	"strings"
	"time"
)

// # Entities

// Status is the life status of a character. The remote API treats it as an
// open string; the known values are listed below.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Is compares two statuses case-insensitively.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// Place is a named location reference (origin or current location).
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// IsUnknown reports whether the API did not know the place.
func (p Place) IsUnknown() bool {
	return p.Name == "" || strings.EqualFold(p.Name, "unknown")
}

// Character is one catalog record.
type Character struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   string    `json:"gender"`
	Origin   Place     `json:"origin"`
	Location Place     `json:"location"`
	Image    string    `json:"image"`
	Episode  []string  `json:"episode"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
}

// # Listing

// PageInfo is the pagination envelope of a listing response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

// HasNext reports whether a following page exists.
func (info PageInfo) HasNext() bool {
	return info.Next != ""
}

// HasPrev reports whether a preceding page exists.
func (info PageInfo) HasPrev() bool {
	return info.Prev != ""
}

// Page is one page of a character listing.
type Page struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// IsEmpty reports whether the page holds no characters.
func (p *Page) IsEmpty() bool {
	return p == nil || len(p.Results) == 0
}
