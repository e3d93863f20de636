// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: query windows, pagination and numeric path values.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
)

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// WindowParams is a parsed [from, to] query window.
type WindowParams struct {
	From core.Date
	To   core.Date
}

// PageParams is parsed pagination state.
type PageParams struct {
	Page    int
	PerPage int
}

// ParseWindowParams extracts the from/to query window. Missing bounds default
// to the current calendar month. Malformed dates are an error, not a default:
// a silently-corrected window returns data the caller did not ask for.
func ParseWindowParams(query url.Values, now time.Time) (WindowParams, error) {
	year, month := now.Year(), int(now.Month())
	params := WindowParams{
		From: core.NewDate(year, month, 1),
		To:   core.NewDate(year, month, core.LastDayOfMonth(year, month)),
	}

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return WindowParams{}, fmt.Errorf("invalid 'from' date %q", v)
		}
		params.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return WindowParams{}, fmt.Errorf("invalid 'to' date %q", v)
		}
		params.To = d
	}

	return params, nil
}

// ParsePageParams extracts page/per_page with sane bounds.
func ParsePageParams(query url.Values) PageParams {
	params := PageParams{Page: 1, PerPage: defaultPerPage}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			params.Page = p
		}
	}
	if v := strings.TrimSpace(query.Get("per_page")); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 {
			params.PerPage = pp
		}
	}
	if params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}

	return params
}

// Slice applies the pagination to a slice, returning the page and the total
// count. Pages past the end are empty, not an error.
func Slice[T any](items []T, p PageParams) ([]T, int) {
	total := len(items)
	start := (p.Page - 1) * p.PerPage
	if start >= total {
		return nil, total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return items[start:end], total
}

// PathID extracts the {id} path value as an int64.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
