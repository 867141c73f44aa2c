// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Every form and query value passes through sanitizeInput before it reaches
// the page controllers.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kharcha/internal/views"
)

// formValue returns a sanitized form value. The form must already be parsed.
func formValue(r *http.Request, key string) string {
	return sanitizeInput(r.Form.Get(key))
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// ParseExpenseForm reads the add/edit expense fields.
func ParseExpenseForm(form url.Values) views.ExpenseForm {
	return views.ExpenseForm{
		Amount:     sanitizeInput(form.Get("amount")),
		CategoryID: sanitizeInput(form.Get("category")),
		Date:       sanitizeInput(form.Get("date")),
		Notes:      sanitizeInput(form.Get("notes")),
	}
}

// ParseFilter reads the expense filter from a query string. ok is false when
// the query does not carry the filter form, so paging links keep the
// current filter.
func ParseFilter(query url.Values) (f views.FilterInput, ok bool) {
	if query.Get("filter") == "" {
		return views.FilterInput{}, false
	}
	return views.FilterInput{
		Notes:      sanitizeInput(query.Get("notes")),
		CategoryID: sanitizeInput(query.Get("category")),
		Start:      sanitizeInput(query.Get("start")),
		End:        sanitizeInput(query.Get("end")),
	}, true
}

// ParsePage reads a 1-based page number. ok is false when absent or not a number.
func ParsePage(query url.Values) (page int, ok bool) {
	v := strings.TrimSpace(query.Get("page"))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
