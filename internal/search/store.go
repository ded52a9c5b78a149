// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package search holds the search state of one application tree.

The [Store] is the single source of truth for the committed search term, the
current page, the loading flag, the last user-visible error, and the theme.
It is constructed explicitly per session and handed to its consumers through
the [Controller] interface; nothing in this package is global.

Invariants:

  - Changing the term always resets the page to 1 and clears the error.
  - A non-empty error forces loading off; setting loading never touches the error.
  - The persisted term is written before the in-memory update, and a failed
    write never blocks it.
*/
package search

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/taibuivan/charadex/internal/platform/constants"
	"github.com/taibuivan/charadex/internal/platform/kvstore"
	"github.com/taibuivan/charadex/pkg/pagination"
)

// # Theme

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when no preference is stored.
const DefaultTheme = ThemeLight

// ParseTheme validates a raw theme name.
func ParseTheme(raw string) (Theme, bool) {
	switch Theme(raw) {
	case ThemeLight, ThemeDark:
		return Theme(raw), true
	default:
		return "", false
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// # State

// State is a copy of the store's fields at one instant.
type State struct {
	SearchTerm  string `json:"searchTerm"`
	CurrentPage int    `json:"currentPage"`
	IsLoading   bool   `json:"isLoading"`
	Error       string `json:"error,omitempty"`
	Theme       Theme  `json:"theme"`
}

// HasError reports whether a user-visible failure is recorded.
func (s State) HasError() bool {
	return s.Error != ""
}

// Controller is the set of operations views may perform on the search state.
type Controller interface {
	SetSearchTerm(term string)
	SetPage(page int)
	SetLoading(loading bool)
	SetError(message string)
	ResetSearch()
	SetTheme(theme Theme)
	Snapshot() State
}

// Storage is the persistence the store writes through to.
//
// [kvstore.Adapter] satisfies it; every method reports success instead of
// returning an error.
type Storage interface {
	Load(key string, target any) bool
	Set(key string, value any) bool
	Remove(key string) bool
}

// # Store

// Store implements [Controller].
//
// # Concurrency
//
// Mutations are serialised by a mutex and applied one at a time in call
// order. Sequences of calls are not atomic as a whole.
type Store struct {
	mu       sync.Mutex
	state    State
	storage  Storage
	logger   *slog.Logger
	onChange func(State)
}

var _ Controller = (*Store)(nil)

// NewStore creates a Store seeded from storage.
//
// A stored term and theme are restored; anything missing or unreadable falls
// back to the defaults.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	store := &Store{
		state: State{
			CurrentPage: pagination.DefaultPage,
			Theme:       DefaultTheme,
		},
		storage: storage,
		logger:  logger,
	}

	store.state.SearchTerm = strings.TrimSpace(kvstore.Get(storage, constants.KeySearchTerm, ""))

	if theme, ok := ParseTheme(kvstore.Get(storage, constants.KeyTheme, "")); ok {
		store.state.Theme = theme
	}

	return store
}

// OnChange registers fn to be called with the new state after every mutation.
//
// fn runs under the store lock and must not call back into the store.
func (store *Store) OnChange(fn func(State)) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.onChange = fn
}

// SetSearchTerm commits a new search term.
//
// The page goes back to 1 and the error is cleared even when the trimmed
// term equals the current one.
func (store *Store) SetSearchTerm(term string) {
	trimmed := strings.TrimSpace(term)

	store.mutate(func(state *State) {
		if !store.storage.Set(constants.KeySearchTerm, trimmed) {
			store.logger.Warn("search_term_not_persisted", slog.String("term", trimmed))
		}

		state.SearchTerm = trimmed
		state.CurrentPage = pagination.DefaultPage
		state.Error = ""
	})
}

// SetPage moves to page, clamping values below 1.
func (store *Store) SetPage(page int) {
	page = max(page, pagination.DefaultPage)

	store.mutate(func(state *State) {
		state.CurrentPage = page
	})
}

// SetLoading sets the loading flag. The error is left as it is.
func (store *Store) SetLoading(loading bool) {
	store.mutate(func(state *State) {
		state.IsLoading = loading
	})
}

// SetError records a user-visible failure and stops loading.
// An empty message clears the error and leaves loading untouched.
func (store *Store) SetError(message string) {
	store.mutate(func(state *State) {
		state.Error = message
		if message != "" {
			state.IsLoading = false
		}
	})
}

// ResetSearch forgets the committed term. The theme is kept.
func (store *Store) ResetSearch() {
	store.mutate(func(state *State) {
		if !store.storage.Remove(constants.KeySearchTerm) {
			store.logger.Warn("search_term_not_removed")
		}

		state.SearchTerm = ""
		state.CurrentPage = pagination.DefaultPage
		state.Error = ""
		state.IsLoading = false
	})
}

// SetTheme persists and applies a theme.
func (store *Store) SetTheme(theme Theme) {
	store.mutate(func(state *State) {
		if !store.storage.Set(constants.KeyTheme, string(theme)) {
			store.logger.Warn("theme_not_persisted", slog.String("theme", string(theme)))
		}

		state.Theme = theme
	})
}

// Snapshot returns a copy of the current state.
func (store *Store) Snapshot() State {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.state
}

func (store *Store) mutate(apply func(state *State)) {
	store.mu.Lock()
	defer store.mu.Unlock()

	apply(&store.state)

	if store.onChange != nil {
		store.onChange(store.state)
	}
}
