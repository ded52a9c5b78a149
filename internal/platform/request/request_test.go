// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/charadex/internal/platform/apperr"
	requestutil "github.com/taibuivan/charadex/internal/platform/request"
)

func withParam(request *http.Request, name, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(name, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))
}

/*
TestPositiveIntParam checks numeric path segment parsing.
*/
func TestPositiveIntParam(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int
		isErr bool
	}{
		{"valid", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"text", "rick", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)

			got, err := requestutil.PositiveIntParam(request, "id", "Character")
			if tt.isErr {
				require.Error(t, err)
				assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestReturnPath rejects off-site redirect targets.
*/
func TestReturnPath(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"local", "/results?q=Rick", "/results?q=Rick"},
		{"empty", "", "/"},
		{"protocol_relative", "//evil.example", "/"},
		{"absolute", "https://evil.example", "/"},
		{"backslash", "/\\evil.example", "/"},
		{"tab", "/\t/evil.example", "/"},
		{"newline", "/\n/evil.example", "/"},
		{"carriage_return", "/\r//evil.example", "/"},
		{"delete", "/\x7f/evil.example", "/"},
		{"encoded_query", "/results?q=Rick%20Sanchez&page=2", "/results?q=Rick%20Sanchez&page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"return": {tt.value}}
			request := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			assert.Equal(t, tt.want, requestutil.ReturnPath(request, "/"))
		})
	}
}
