// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
form decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/charadex/internal/platform/apperr"
	"github.com/taibuivan/charadex/internal/platform/validate"
)

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
PositiveIntParam retrieves a named URL parameter and parses it as an integer >= 1.

Returns:
  - int: The parsed value
  - error: apperr.NotFound when the segment is not a positive integer
*/
func PositiveIntParam(request *http.Request, name string, resource string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(request, name))
	if err != nil || value < 1 {
		return 0, apperr.NotFound(resource)
	}
	return value, nil
}

/*
FormValue parses the request form and returns a single field.

Returns:
  - string: The raw field value
  - error: validate.ErrInvalidForm if the body cannot be parsed
*/
func FormValue(request *http.Request, field string) (string, error) {
	if err := request.ParseForm(); err != nil {
		return "", validate.ErrInvalidForm
	}
	return request.PostForm.Get(field), nil
}

/*
ReturnPath reads the "return" form field and keeps it only if it is a local path.

Anything that could leave the site ("//host", "https://...", "javascript:",
control characters) collapses to fallback.
*/
func ReturnPath(request *http.Request, fallback string) string {
	if err := request.ParseForm(); err != nil {
		return fallback
	}

	path := request.PostForm.Get("return")
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return fallback
	}

	// Browsers drop tabs and newlines, so "/\t/host" would still leave the site.
	if strings.IndexFunc(path, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return fallback
	}

	target, err := url.Parse(path)
	if err != nil || target.Scheme != "" || target.Host != "" {
		return fallback
	}

	return path
}
