package http

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/views"
)

// page is the data every full-page template receives.
type page struct {
	Title  string
	Active string
	Theme  views.Theme
	Email  string
	Path   string
	// Flash carries the action outcome for clients that do not run htmx.
	Flash views.Outcome
	View  any
}

var templateFuncs = template.FuncMap{
	"levelClass": func(l core.BudgetLevel) string {
		switch l {
		case core.LevelDanger:
			return "bar-danger"
		case core.LevelWarning:
			return "bar-warning"
		default:
			return "bar-ok"
		}
	},
	"isPeriod": func(p core.Period, want string) bool {
		return string(p) == want
	},
	"add":            func(a, b int) int { return a + b },
	"emptyTrend":     func() string { return views.TrendEmpty },
	"emptyBreakdown": func() string { return views.BreakdownEmpty },
}

func newPage(r *http.Request, email, title, active string, view any) page {
	return page{
		Title:  title,
		Active: active,
		Theme:  theme(r),
		Email:  email,
		Path:   r.URL.Path,
		View:   view,
	}
}

// render executes "<name>_content" for htmx requests and "<name>_page"
// otherwise. The returned builder carries the outcome notification and can
// take more triggers before Write.
func (s *Server) render(r *http.Request, name string, p page, out views.Outcome) *HTMXResponseBuilder {
	if s.templates == nil {
		return InternalServerError("Templates not available")
	}

	tmpl := name + "_page"
	if isHTMX(r) {
		tmpl = name + "_content"
	} else {
		p.Flash = out
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmpl, p); err != nil {
		slog.ErrorContext(r.Context(), "Template render failed", "template", tmpl, "error", err)
		return InternalServerError("Error rendering page")
	}

	b := NewHTMXResponse().BodyHTML(buf.String()).TriggerOutcome(out)
	// htmx does not swap error responses, so failures stay 200 for it.
	if !isHTMX(r) {
		b.Status(outcomeStatus(out))
	}
	return b
}

func outcomeStatus(out views.Outcome) int {
	switch {
	case !out.Failed():
		return http.StatusOK
	case isValidation(out.Err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrInvalidDate,
		core.ErrUnknownCategory,
		core.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
