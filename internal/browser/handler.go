// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package browser provides the server-rendered interface of the character explorer.

It keeps three things consistent for every visitor: the URL, the session's
search state, and what the page shows.

# Routing Strategy

  - Views (GET): the results list, the split view with a character's details,
    the about page and a not-found page for everything else.
  - Actions (POST): search submit, search reset, theme switch and the
    render-failure boundary actions. Every action answers with a redirect.
  - State (GET /api/v1/session): a JSON snapshot of the search state.

# URL Contract

The URL is the source of truth once a session tree is mounted: "q" and "page"
are reconciled into the store on every view request. The only exception is
the first view of a tree, which restores a remembered term when the URL does
not carry one.
*/
package browser

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/message"

	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/platform/apperr"
	"github.com/taibuivan/charadex/internal/platform/ctxutil"
	"github.com/taibuivan/charadex/internal/platform/middleware"
	requestutil "github.com/taibuivan/charadex/internal/platform/request"
	"github.com/taibuivan/charadex/internal/platform/respond"
	"github.com/taibuivan/charadex/internal/platform/validate"
	"github.com/taibuivan/charadex/internal/report"
	"github.com/taibuivan/charadex/internal/search"
	"github.com/taibuivan/charadex/internal/session"
)

// MaxTermLength caps the length of a submitted search term.
const MaxTermLength = 100

// faultMessage is the panic value of the debug render fault.
const faultMessage = "Test error triggered!"

var errNoSession = errors.New("browser: request has no session tree")

// Options configures a [Handler].
type Options struct {
	// SupportEmail receives the reports composed by the boundary's Report action.
	SupportEmail string

	// Development enables the debug fault action.
	Development bool
}

// # Handler Implementation

// Handler serves the views and actions of the explorer.
// It expects [session.Manager.Middleware] in front of it.
type Handler struct {
	source  catalog.Source
	reports *report.Dispatcher
	opts    Options
	printer *message.Printer
	now     func() time.Time
}

// NewHandler constructs a [Handler] reading characters from source.
func NewHandler(source catalog.Source, reports *report.Dispatcher, opts Options) *Handler {
	return &Handler{
		source:  source,
		reports: reports,
		opts:    opts,
		printer: newPrinter(),
		now:     time.Now,
	}
}

// Routes returns a [chi.Router] configured with the explorer's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Views
	router.Get("/", handler.showResults)
	router.Get(PathResults, handler.showResults)
	router.Get(PathResults+"/{id:[0-9]+}", handler.showDetails)
	router.Get("/about", handler.showAbout)

	// ## Actions
	router.Post("/search", handler.submitSearch)
	router.Post("/search/reset", handler.resetSearch)
	router.Post("/theme", handler.switchTheme)
	router.Post("/boundary/{name}/{action}", handler.boundaryAction)

	if handler.opts.Development {
		router.Post("/debug/fault", handler.armFault)
	}

	// ## State
	router.Get("/api/v1/session", handler.sessionState)

	router.NotFound(handler.showNotFound)

	return router
}

// # Views

/*
GET /, GET /results.

Description: Shows the results list for the URL's term and page. A fresh
fetch cycle runs on every visit.

Request:
  - q: string (Search term)
  - page: int (1-based)

Response:
  - 200: Results page
  - 302: Redirect to the canonical URL, or to the remembered term on first visit
*/
func (handler *Handler) showResults(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	location, canonical := ParseLocation(request.URL.Query())
	if target, redirect := handler.reconcile(tree, request, location, canonical); redirect {
		http.Redirect(writer, request, target, http.StatusFound)
		return
	}

	handler.loadListing(request.Context(), tree)

	results := handler.renderResults(request.Context(), tree, 0, request.URL.RequestURI())
	handler.writePage(writer, request, tree, http.StatusOK, results)
}

/*
GET /results/{id}.

Description: Shows the details of one character next to the results list.
The list reuses the session's listing when it still matches the term and
page; the details fetch belongs to this navigation alone.

Response:
  - 200: Split view
  - 404: Split view with "Character not found" in the details panel
*/
func (handler *Handler) showDetails(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	id, err := requestutil.PositiveIntParam(request, "id", "Character")
	if err != nil {
		handler.showNotFound(writer, request)
		return
	}

	location, canonical := ParseLocation(request.URL.Query())
	location.CharacterID = id
	if target, redirect := handler.reconcile(tree, request, location, canonical); redirect {
		http.Redirect(writer, request, target, http.StatusFound)
		return
	}

	handler.ensureListing(request.Context(), tree)
	result := handler.loadDetail(request.Context(), tree, id)

	returnPath := request.URL.RequestURI()
	state := tree.Store.Snapshot()

	var split bytes.Buffer
	err = renderView(&split, viewSplit, splitView{
		Results: handler.renderResults(request.Context(), tree, id, returnPath),
		Details: handler.renderDetails(request.Context(), tree, result, ResultsURL(state.SearchTerm, state.CurrentPage), returnPath),
	})
	if err != nil {
		handler.fail(writer, request, apperr.Internal(err))
		return
	}

	status := http.StatusOK
	if result.NotFound {
		status = http.StatusNotFound
	}

	handler.writePage(writer, request, tree, status, template.HTML(split.String()))
}

// GET /about.
func (handler *Handler) showAbout(writer http.ResponseWriter, request *http.Request) {
	handler.writeStatic(writer, request, http.StatusOK, viewAbout, nil)
}

// showNotFound answers every unknown route. An empty listing never leads here.
func (handler *Handler) showNotFound(writer http.ResponseWriter, request *http.Request) {
	handler.writeStatic(writer, request, http.StatusNotFound, viewNotFound, nil)
}

/*
reconcile brings the store in line with the URL.

It returns a redirect target instead when the tree is mounted for the first
time without a term in the URL while a remembered term exists, or when the
URL is not written canonically.
*/
func (handler *Handler) reconcile(tree *session.Tree, request *http.Request, location Location, canonical bool) (string, bool) {
	_, hasTerm := request.URL.Query()[ParamTerm]

	if tree.Mount() && !hasTerm {
		if remembered := tree.Store.Snapshot().SearchTerm; remembered != "" {
			location.Term = remembered
			return location.URL(), true
		}
	}

	if !canonical {
		return withQuery(request.URL.Path, location.Query()), true
	}

	if tree.Store.Snapshot().SearchTerm != location.Term {
		tree.Store.SetSearchTerm(location.Term)
	}
	if tree.Store.Snapshot().CurrentPage != location.Page {
		tree.Store.SetPage(location.Page)
	}

	return "", false
}

// # Actions

/*
POST /search.

Description: Commits the submitted term and shows its first page. An open
details view is dismissed.

Request:
  - q: string (max 100 chars)

Response:
  - 303: Redirect to /results?q=...
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) submitSearch(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	term, err := requestutil.FormValue(request, ParamTerm)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.MaxLen(ParamTerm, term, MaxTermLength)
	if err := validator.Err(); err != nil {
		handler.fail(writer, request, err)
		return
	}

	tree.Store.SetSearchTerm(term)

	http.Redirect(writer, request, ResultsURL(tree.Store.Snapshot().SearchTerm, 1), http.StatusSeeOther)
}

// POST /search/reset.
func (handler *Handler) resetSearch(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	tree.Store.ResetSearch()

	http.Redirect(writer, request, PathResults, http.StatusSeeOther)
}

/*
POST /theme.

Request:
  - theme: string (light, dark)
  - return: string (Local path to go back to)

Response:
  - 303: Redirect to the return path
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) switchTheme(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	raw, err := requestutil.FormValue(request, "theme")
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.OneOf("theme", raw, string(search.ThemeLight), string(search.ThemeDark))
	if err := validator.Err(); err != nil {
		handler.fail(writer, request, err)
		return
	}

	theme, _ := search.ParseTheme(raw)
	tree.Store.SetTheme(theme)

	http.Redirect(writer, request, requestutil.ReturnPath(request, PathResults), http.StatusSeeOther)
}

/*
POST /boundary/{name}/{action}.

Description: Runs one of the fallback actions of a failed boundary.

  - retry: re-attempts the subtree, refused past the retry limit
  - reload: resets every boundary of the session, as a page reload would
  - report: hands the diagnostic to the reporter and opens the mail composer

Response:
  - 303: Redirect to the return path, or to a mailto: link for report
  - 404: Unknown boundary or action
*/
func (handler *Handler) boundaryAction(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	target, found := tree.Boundaries.Get(requestutil.Param(request, "name"))
	if !found {
		handler.showNotFound(writer, request)
		return
	}

	logger := ctxutil.GetLogger(request.Context()).With(slog.String("boundary", target.Name()))
	returnPath := requestutil.ReturnPath(request, PathResults)

	switch requestutil.Param(request, "action") {
	case "retry":
		if !target.Retry() {
			logger.Warn("boundary_retry_refused", slog.Int("retry_count", target.RetryCount()))
		}

	case "reload":
		tree.Boundaries.ReloadAll()

	case "report":
		diagnostic, failed := target.Diagnostic(request.UserAgent(), absoluteURL(request, returnPath), handler.now())
		if !failed {
			break
		}

		handler.reports.Dispatch(diagnostic)
		logger.Info("boundary_report_requested")

		http.Redirect(writer, request, report.MailtoURL(handler.opts.SupportEmail, diagnostic), http.StatusSeeOther)
		return

	default:
		handler.showNotFound(writer, request)
		return
	}

	http.Redirect(writer, request, returnPath, http.StatusSeeOther)
}

// POST /debug/fault. Makes the next results render fail once.
func (handler *Handler) armFault(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		handler.fail(writer, request, apperr.Internal(errNoSession))
		return
	}

	tree.ArmFault()

	http.Redirect(writer, request, requestutil.ReturnPath(request, PathResults), http.StatusSeeOther)
}

// # State

/*
GET /api/v1/session.

Response:
  - 200: search.State
*/
func (handler *Handler) sessionState(writer http.ResponseWriter, request *http.Request) {
	tree, ok := session.FromContext(request.Context())
	if !ok {
		respond.Error(writer, request, apperr.Internal(errNoSession))
		return
	}

	respond.OK(writer, tree.Store.Snapshot())
}

// # Rendering

// renderResults renders the results section inside its boundary.
func (handler *Handler) renderResults(ctx context.Context, tree *session.Tree, selected int, returnPath string) template.HTML {
	listing, found := tree.Listing()
	view := handler.newResultsView(tree.Store.Snapshot(), listing, found, selected)

	frame := boundary.Frame{View: "results-grid", ReturnPath: returnPath}

	return renderBoundary(ctx, tree.Boundary(session.BoundaryResults), frame, func(w io.Writer) error {
		if tree.TakeFault() {
			panic(faultMessage)
		}
		return renderView(w, viewResults, view)
	})
}

// renderDetails renders the details panel inside its boundary.
func (handler *Handler) renderDetails(ctx context.Context, tree *session.Tree, result detail, closeURL, returnPath string) template.HTML {
	view := handler.newDetailsView(result, closeURL)
	frame := boundary.Frame{View: "character-details", ReturnPath: returnPath}

	return renderBoundary(ctx, tree.Boundary(session.BoundaryDetails), frame, func(w io.Writer) error {
		return renderView(w, viewDetails, view)
	})
}

// renderBoundary renders through target. A failure the boundary could not
// contain, such as a broken fallback, is logged and leaves the section empty.
func renderBoundary(ctx context.Context, target *boundary.Boundary, frame boundary.Frame, render boundary.RenderFunc) template.HTML {
	var buffer bytes.Buffer
	if err := target.Render(&buffer, frame, render); err != nil {
		ctxutil.GetLogger(ctx).Error("boundary_render_failed",
			slog.String("boundary", target.Name()),
			slog.String("view", frame.View),
			slog.Any("error", err),
		)
	}

	return template.HTML(buffer.String())
}

// writePage wraps main in the layout and writes it.
func (handler *Handler) writePage(writer http.ResponseWriter, request *http.Request, tree *session.Tree, status int, main template.HTML) {
	state := tree.Store.Snapshot()

	view := layoutView{
		Title:       "Rick and Morty Characters",
		State:       state,
		NextTheme:   state.Theme.Toggle(),
		ReturnPath:  request.URL.RequestURI(),
		Development: handler.opts.Development,
		Main:        main,
	}

	handler.writeLayout(writer, request, status, view)
}

// writeStatic writes a page whose main part does not depend on the catalog.
func (handler *Handler) writeStatic(writer http.ResponseWriter, request *http.Request, status int, name string, data any) {
	var main bytes.Buffer
	if err := renderView(&main, name, data); err != nil {
		handler.fail(writer, request, apperr.Internal(err))
		return
	}

	view := layoutView{
		Title:       "Rick and Morty Characters",
		State:       search.State{Theme: search.DefaultTheme, CurrentPage: 1},
		ReturnPath:  request.URL.RequestURI(),
		Development: handler.opts.Development,
		Main:        template.HTML(main.String()),
	}

	if tree, ok := session.FromContext(request.Context()); ok {
		view.State = tree.Store.Snapshot()
	}
	view.NextTheme = view.State.Theme.Toggle()

	handler.writeLayout(writer, request, status, view)
}

func (handler *Handler) writeLayout(writer http.ResponseWriter, request *http.Request, status int, view layoutView) {
	var buffer bytes.Buffer
	if err := renderView(&buffer, viewLayout, view); err != nil {
		handler.fail(writer, request, apperr.Internal(err))
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// fail answers with an error page for browsers and a JSON envelope otherwise.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if !middleware.WantsHTML(request) {
		respond.Error(writer, request, err)
		return
	}

	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}
	if appError.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(request.Context()).Error("browser_request_failed",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	var main bytes.Buffer
	_ = renderView(&main, viewError, errorView{Status: appError.HTTPStatus, Code: appError.Code, Message: appError.Message})

	view := layoutView{
		Title:      "Something went wrong",
		State:      search.State{Theme: search.DefaultTheme, CurrentPage: 1},
		NextTheme:  search.DefaultTheme.Toggle(),
		ReturnPath: PathResults,
		Main:       template.HTML(main.String()),
	}

	var page bytes.Buffer
	if err := renderView(&page, viewLayout, view); err != nil {
		http.Error(writer, appError.Message, appError.HTTPStatus)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(appError.HTTPStatus)
	_, _ = page.WriteTo(writer)
}

// absoluteURL resolves a local path against the request's host.
func absoluteURL(request *http.Request, path string) string {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + request.Host + path
}
