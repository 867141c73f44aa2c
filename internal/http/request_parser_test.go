package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kharcha/internal/views"
)

func TestParseExpenseForm(t *testing.T) {
	form := url.Values{
		"amount":   {"  1,250.50 "},
		"category": {"cat3"},
		"date":     {"2025-03-10"},
		"notes":    {"Cab\x00 home\x07"},
	}
	got := ParseExpenseForm(form)
	want := views.ExpenseForm{Amount: "1,250.50", CategoryID: "cat3", Date: "2025-03-10", Notes: "Cab home"}
	if got != want {
		t.Errorf("ParseExpenseForm() = %+v, want %+v", got, want)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name   string
		query  url.Values
		want   views.FilterInput
		wantOK bool
	}{
		{
			name:   "no filter marker",
			query:  url.Values{"notes": {"coffee"}, "page": {"2"}},
			wantOK: false,
		},
		{
			name:   "full filter",
			query:  url.Values{"filter": {"1"}, "notes": {" coffee "}, "category": {"cat5"}, "start": {"2025-03-01"}, "end": {"2025-03-31"}},
			want:   views.FilterInput{Notes: "coffee", CategoryID: "cat5", Start: "2025-03-01", End: "2025-03-31"},
			wantOK: true,
		},
		{
			name:   "empty filter clears",
			query:  url.Values{"filter": {"1"}},
			want:   views.FilterInput{},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFilter(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"", 0, false},
		{"3", 3, true},
		{" 2 ", 2, true},
		{"-1", -1, true},
		{"two", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePage(url.Values{"page": {tt.raw}})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePage(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line1\nline2", "line1\nline2"},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFormOrFail(t *testing.T) {
	// Valid form request
	body := "field=value"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result := ParseFormOrFail(req)
	if result != nil {
		t.Error("Expected nil for valid form, got error response")
	}

	// Verify form was parsed
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}
	if formValue(req, "field") != "value" {
		t.Error("formValue did not read the parsed form")
	}

	// Malformed body
	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := ParseFormOrFail(req); resp == nil {
		t.Error("Expected an error response for a malformed form")
	} else {
		w := httptest.NewRecorder()
		resp.Write(w)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status code = %d, want %d", w.Code, http.StatusBadRequest)
		}
	}
}
