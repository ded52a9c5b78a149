// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package boundary

import (
	"embed"
	"html/template"
	"io"
	"sort"
	"sync"
)

//go:embed templates/fallback.html
var templateFS embed.FS

var fallbackTemplate = template.Must(template.ParseFS(templateFS, "templates/fallback.html"))

type fallbackDetails struct {
	Message string
	Stack   string
	Trace   string
}

type fallbackView struct {
	Name         string
	ActionPrefix string
	ReturnPath   string
	RetryCount   int
	MaxRetries   int
	CanRetry     bool
	Details      *fallbackDetails
}

// writeFallback renders the caller's fallback, or the built-in one.
func (b *Boundary) writeFallback(w io.Writer, frame Frame, failure Failure) error {
	if b.opts.Fallback != nil {
		return b.opts.Fallback(w)
	}

	view := fallbackView{
		Name:         b.name,
		ActionPrefix: b.opts.ActionPrefix,
		ReturnPath:   frame.ReturnPath,
		RetryCount:   b.RetryCount(),
		MaxRetries:   b.opts.MaxRetries,
		CanRetry:     b.CanRetry(),
	}
	if view.ReturnPath == "" {
		view.ReturnPath = "/"
	}

	if b.opts.ShowDetails {
		view.Details = &fallbackDetails{
			Message: failure.Err.Error(),
			Stack:   failure.Trace.Stack,
			Trace:   failure.Trace.String(),
		}
	}

	return fallbackTemplate.ExecuteTemplate(w, "fallback.html", view)
}

// # Set

// Set holds the named boundaries of one application tree.
type Set struct {
	mu         sync.Mutex
	boundaries map[string]*Boundary
}

// NewSet creates a set with one Healthy boundary per name, all sharing opts.
func NewSet(opts Options, names ...string) *Set {
	set := &Set{boundaries: make(map[string]*Boundary, len(names))}
	for _, name := range names {
		set.boundaries[name] = New(name, opts)
	}
	return set
}

// Get returns the boundary called name.
func (set *Set) Get(name string) (*Boundary, bool) {
	set.mu.Lock()
	defer set.mu.Unlock()

	boundary, found := set.boundaries[name]
	return boundary, found
}

// Names lists the boundaries in the set, sorted.
func (set *Set) Names() []string {
	set.mu.Lock()
	defer set.mu.Unlock()

	names := make([]string, 0, len(set.boundaries))
	for name := range set.boundaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReloadAll resets every boundary, as a full page reload would.
func (set *Set) ReloadAll() {
	set.mu.Lock()
	defer set.mu.Unlock()

	for _, boundary := range set.boundaries {
		boundary.Reload()
	}
}
