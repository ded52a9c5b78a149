// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "github.com/taibuivan/charadex/internal/platform/apperr"

// Kind classifies a catalog failure.
type Kind int

const (
	// KindNone means the error did not come from this package (or is nil).
	KindNone Kind = iota
	KindTimeout
	KindRequestFailed
	KindNotFound
	KindNetwork
	KindDecode
	KindCanceled
)

var kindNames = map[Kind]string{
	KindNone:          "none",
	KindTimeout:       "timeout",
	KindRequestFailed: "request_failed",
	KindNotFound:      "not_found",
	KindNetwork:       "network",
	KindDecode:        "decode",
	KindCanceled:      "canceled",
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	return kindNames[k]
}

// KindOf maps err to its failure kind.
func KindOf(err error) Kind {
	appError := apperr.As(err)
	if appError == nil {
		return KindNone
	}

	switch appError.Code {
	case apperr.CodeRequestTimeout:
		return KindTimeout
	case apperr.CodeRequestFailed:
		return KindRequestFailed
	case apperr.CodeNotFound:
		return KindNotFound
	case apperr.CodeNetwork:
		return KindNetwork
	case apperr.CodeDecode:
		return KindDecode
	case apperr.CodeCanceled:
		return KindCanceled
	default:
		return KindNone
	}
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRequestFailed reports whether err is a non-2xx upstream status, 404 included.
func IsRequestFailed(err error) bool {
	kind := KindOf(err)
	return kind == KindRequestFailed || kind == KindNotFound
}

// IsCanceled reports whether the caller abandoned the request.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}
