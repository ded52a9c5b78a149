// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"embed"
	"html/template"
	"io"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	textcatalog "golang.org/x/text/message/catalog"

	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/search"
	"github.com/taibuivan/charadex/internal/session"
	"github.com/taibuivan/charadex/pkg/pagination"
	"github.com/taibuivan/charadex/pkg/slice"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Template names.
const (
	viewLayout   = "layout"
	viewResults  = "results"
	viewDetails  = "details"
	viewSplit    = "split"
	viewAbout    = "about"
	viewNotFound = "notfound"
	viewError    = "error"
)

// createdLayout is how the details view prints the creation date.
const createdLayout = "January 2, 2006"

// # Messages

const (
	msgFound    = "Found %d characters"
	msgEpisodes = "Appeared in %d episodes"
	msgPageOf   = "Page %d of %d"
)

// newPrinter returns the English printer used by every view.
func newPrinter() *message.Printer {
	builder := textcatalog.NewBuilder()

	_ = builder.Set(language.English, msgFound, plural.Selectf(1, "%d",
		"=1", "Found %d character",
		"other", "Found %d characters",
	))
	_ = builder.Set(language.English, msgEpisodes, plural.Selectf(1, "%d",
		"=1", "Appeared in %d episode",
		"other", "Appeared in %d episodes",
	))
	_ = builder.Set(language.English, msgPageOf, textcatalog.String("Page %d of %d"))

	return message.NewPrinter(language.English, message.Catalog(builder))
}

// # Layout

type layoutView struct {
	Title       string
	State       search.State
	NextTheme   search.Theme
	ReturnPath  string
	Development bool
	Main        template.HTML
}

// # Results

type resultsView struct {
	Loading bool
	Error   string
	Empty   bool
	Summary string
	Cards   []cardView
	Pager   *pagerView
}

type cardView struct {
	Name        string
	Description string
	Image       string
	Href        string
	Selected    bool
}

type pagerView struct {
	Label string
	Prev  string
	Next  string
	Items []pageLink
}

type pageLink struct {
	Page    int
	Href    string
	Gap     bool
	Current bool
}

/*
newResultsView decides what the results section shows.

A listing is shown only when it was fetched for the state's term and page;
anything else shows the loader, never a stale listing. An error always
replaces the listing.
*/
func (handler *Handler) newResultsView(state search.State, listing session.Listing, found bool, selected int) resultsView {
	switch {
	case state.HasError():
		return resultsView{Error: state.Error}
	case state.IsLoading || !found || !listing.Matches(state.SearchTerm, state.CurrentPage) || listing.Data == nil:
		return resultsView{Loading: true}
	case listing.Data.IsEmpty():
		return resultsView{Empty: true}
	}

	view := resultsView{
		Summary: handler.printer.Sprintf(msgFound, max(listing.Data.Info.Count, len(listing.Data.Results))),
		Cards: slice.Map(listing.Data.Results, func(character catalog.Character) cardView {
			return cardView{
				Name:        character.Name,
				Description: describe(character),
				Image:       character.Image,
				Href:        DetailsURL(character.ID, state.SearchTerm, state.CurrentPage),
				Selected:    character.ID == selected,
			}
		}),
	}

	if total := listing.Data.Info.Pages; total > 1 {
		view.Pager = handler.newPager(state.SearchTerm, state.CurrentPage, total, state.IsLoading)
	}

	return view
}

// newPager lays out the pagination bar. Previous and next are disabled (empty)
// at the ends and while loading.
func (handler *Handler) newPager(term string, current, total int, loading bool) *pagerView {
	pager := &pagerView{
		Label: handler.printer.Sprintf(msgPageOf, current, total),
		Items: slice.Map(pagination.Window(current, total, pagination.DefaultDelta), func(item pagination.Item) pageLink {
			link := pageLink{Page: item.Page, Gap: item.Gap, Current: item.Current}
			if !item.Gap {
				link.Href = ResultsURL(term, item.Page)
			}
			return link
		}),
	}

	if current > 1 && !loading {
		pager.Prev = ResultsURL(term, current-1)
	}
	if current < total && !loading {
		pager.Next = ResultsURL(term, current+1)
	}

	return pager
}

// describe writes the one-line card description of a character.
func describe(character catalog.Character) string {
	emoji := "❓"
	switch {
	case character.Status.Is(catalog.StatusAlive):
		emoji = "🟢"
	case character.Status.Is(catalog.StatusDead):
		emoji = "🔴"
	}

	return emoji + " " + string(character.Status) + " " + character.Species +
		" from " + placeName(character.Origin) + ". Currently at: " + placeName(character.Location)
}

func placeName(place catalog.Place) string {
	if place.IsUnknown() {
		return "an unknown location"
	}
	return place.Name
}

// # Details

type detailsView struct {
	CloseURL string
	Pending  bool
	Error    string
	NotFound bool

	Character   *catalog.Character
	StatusClass string
	Created     string
	Episodes    string
}

func (handler *Handler) newDetailsView(result detail, closeURL string) detailsView {
	view := detailsView{
		CloseURL: closeURL,
		Pending:  result.Pending,
		Error:    result.Error,
		NotFound: result.NotFound,
	}

	if character := result.Character; character != nil {
		view.Character = character
		view.StatusClass = statusClass(character.Status)
		view.Episodes = handler.printer.Sprintf(msgEpisodes, len(character.Episode))
		if !character.Created.IsZero() {
			view.Created = character.Created.Format(createdLayout)
		}
	}

	return view
}

func statusClass(status catalog.Status) string {
	switch {
	case status.Is(catalog.StatusAlive):
		return "status-alive"
	case status.Is(catalog.StatusDead):
		return "status-dead"
	default:
		return "status-unknown"
	}
}

type splitView struct {
	Results template.HTML
	Details template.HTML
}

// # Errors

type errorView struct {
	Status  int
	Code    string
	Message string
}

// renderView executes a named template into w.
func renderView(w io.Writer, name string, data any) error {
	return views.ExecuteTemplate(w, name, data)
}
