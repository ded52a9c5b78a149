// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalogtest provides an in-memory [catalog.Source] for tests.
package catalogtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/platform/apperr"
)

// ListCall records one ListCharacters invocation.
type ListCall struct {
	Term string
	Page int
}

// Fake is a programmable [catalog.Source].
//
// With no function set, ListCharacters returns an empty page and
// GetCharacter a not-found failure.
type Fake struct {
	ListFunc func(ctx context.Context, term string, page int) (*catalog.Page, error)
	GetFunc  func(ctx context.Context, id int) (*catalog.Character, error)

	mu        sync.Mutex
	listCalls []ListCall
	getCalls  []int
}

var _ catalog.Source = (*Fake)(nil)

// ListCharacters implements [catalog.Source].
func (fake *Fake) ListCharacters(ctx context.Context, term string, page int) (*catalog.Page, error) {
	fake.mu.Lock()
	fake.listCalls = append(fake.listCalls, ListCall{Term: term, Page: page})
	listFunc := fake.ListFunc
	fake.mu.Unlock()

	if listFunc == nil {
		return &catalog.Page{}, nil
	}
	return listFunc(ctx, term, page)
}

// GetCharacter implements [catalog.Source].
func (fake *Fake) GetCharacter(ctx context.Context, id int) (*catalog.Character, error) {
	fake.mu.Lock()
	fake.getCalls = append(fake.getCalls, id)
	getFunc := fake.GetFunc
	fake.mu.Unlock()

	if getFunc == nil {
		return nil, apperr.UpstreamNotFound("Character")
	}
	return getFunc(ctx, id)
}

// ListCalls returns the recorded listing calls.
func (fake *Fake) ListCalls() []ListCall {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]ListCall(nil), fake.listCalls...)
}

// GetCalls returns the recorded detail calls.
func (fake *Fake) GetCalls() []int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]int(nil), fake.getCalls...)
}

// Character builds a plausible character.
func Character(id int, name string) catalog.Character {
	return catalog.Character{
		ID:       id,
		Name:     name,
		Status:   catalog.StatusAlive,
		Species:  "Human",
		Gender:   "Male",
		Origin:   catalog.Place{Name: "Earth (C-137)"},
		Location: catalog.Place{Name: "Citadel of Ricks"},
		Image:    fmt.Sprintf("https://example.test/%d.jpeg", id),
		Episode:  []string{"https://example.test/episode/1"},
		Created:  time.Date(2017, time.November, 4, 18, 48, 46, 0, time.UTC),
	}
}

// PageOf builds a page holding characters named names, with the given page count.
func PageOf(pages int, names ...string) *catalog.Page {
	page := &catalog.Page{Info: catalog.PageInfo{Count: len(names), Pages: pages}}
	for i, name := range names {
		page.Results = append(page.Results, Character(i+1, name))
	}
	return page
}
