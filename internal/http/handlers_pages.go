package http

import (
	"errors"
	"net/http"

	"kharcha/internal/auth"
	"kharcha/internal/views"
)

const noticeExpenseNotFound = "That expense no longer exists."

var errExpenseNotFound = errors.New("expense not found")

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	s.render(r, "dashboard", newPage(r, claims.Email, "Dashboard", "dashboard", sess.DashboardView()), views.Outcome{}).Write(w)
}

func (s *Server) expenses(r *http.Request, sess *views.Session, claims *auth.Claims, out views.Outcome) *HTMXResponseBuilder {
	return s.render(r, "expenses", newPage(r, claims.Email, "Expenses", "expenses", sess.ExpensesView()), out)
}

// handleExpenses applies filter, reset and page query parameters before rendering.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	q := r.URL.Query()
	if q.Get("reset") != "" {
		sess.ResetFilter()
	} else if f, ok := ParseFilter(q); ok {
		sess.SetFilter(f)
	}
	if n, ok := ParsePage(q); ok {
		sess.SetPage(n)
	}
	s.expenses(r, sess, claims, views.Outcome{}).Write(w)
}

func (s *Server) handleNewExpense(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	sess.OpenAdd()
	s.expenses(r, sess, claims, views.Outcome{}).Write(w)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	if !sess.OpenEdit(r.PathValue("id")) {
		b := s.expenses(r, sess, claims, views.Outcome{Notice: noticeExpenseNotFound, Err: errExpenseNotFound})
		if !isHTMX(r) {
			b.Status(http.StatusNotFound)
		}
		b.Write(w)
		return
	}
	s.expenses(r, sess, claims, views.Outcome{}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	out := sess.AddExpense(r.Context(), ParseExpenseForm(r.Form))
	s.writeExpenseOutcome(w, r, sess, claims, out)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	out := sess.EditExpense(r.Context(), r.PathValue("id"), ParseExpenseForm(r.Form))
	s.writeExpenseOutcome(w, r, sess, claims, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	out := sess.DeleteExpense(r.Context(), r.PathValue("id"))
	s.writeExpenseOutcome(w, r, sess, claims, out)
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	sess.CloseModal()
	s.expenses(r, sess, claims, views.Outcome{}).TriggerModalClosed().Write(w)
}

func (s *Server) writeExpenseOutcome(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims, out views.Outcome) {
	b := s.expenses(r, sess, claims, out)
	if !out.Failed() {
		b.TriggerExpensesChanged()
	}
	b.Write(w)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	s.render(r, "budget", newPage(r, claims.Email, "Budget", "budget", sess.BudgetView()), views.Outcome{}).Write(w)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	out := sess.SaveBudget(r.Context(), formValue(r, "amount"), formValue(r, "period"))
	s.render(r, "budget", newPage(r, claims.Email, "Budget", "budget", sess.BudgetView()), out).Write(w)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	s.render(r, "profile", newPage(r, claims.Email, "Profile", "profile", sess.ProfileView(claims.Email)), views.Outcome{}).Write(w)
}

func (s *Server) handleToggleAlerts(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims) {
	out := sess.ToggleAlerts(r.Context())
	s.render(r, "profile", newPage(r, claims.Email, "Profile", "profile", sess.ProfileView(claims.Email)), out).Write(w)
}
