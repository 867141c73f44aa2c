package views

import (
	"context"
	"fmt"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/format"
)

type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalAdding
	ModalEditing
)

// FilterInput holds the raw filter fields as typed by the user.
type FilterInput struct {
	Notes      string
	CategoryID string
	Start      string
	End        string
}

// ExpenseForm holds the raw fields of the add/edit form.
type ExpenseForm struct {
	Amount     string
	CategoryID string
	Date       string
	Notes      string
}

type listState struct {
	filter    FilterInput
	page      int
	modal     ModalMode
	editingID string
	form      ExpenseForm
}

func newListState() listState {
	return listState{filter: FilterInput{CategoryID: core.AllCategories}, page: 1}
}

func (l *listState) clampPage(n int) {
	l.page = core.ClampPage(l.page, n)
}

func (l *listState) closeModal() {
	l.modal = ModalClosed
	l.editingID = ""
	l.form = ExpenseForm{}
}

func normalizeFilter(f FilterInput) FilterInput {
	f.Notes = strings.TrimSpace(f.Notes)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	if f.CategoryID == "" {
		f.CategoryID = core.AllCategories
	}
	f.Start = strings.TrimSpace(f.Start)
	f.End = strings.TrimSpace(f.End)
	return f
}

// toCore parses the date fields. An unparsable date leaves that bound open.
func (f FilterInput) toCore() core.ExpenseFilter {
	out := core.ExpenseFilter{Notes: f.Notes, CategoryID: f.CategoryID}
	if d, err := core.ParseDate(f.Start); err == nil {
		out.Start = d
	}
	if d, err := core.ParseDate(f.End); err == nil {
		out.End = d
	}
	return out
}

func (s *Session) filteredLocked() []core.Expense {
	return s.list.filter.toCore().Apply(s.expenses)
}

// SetFilter replaces the filter. Any change sends the list back to page 1.
func (s *Session) SetFilter(f FilterInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f = normalizeFilter(f)
	if f != s.list.filter {
		s.list.filter = f
		s.list.page = 1
	}
}

func (s *Session) ResetFilter() {
	s.SetFilter(FilterInput{})
}

// SetPage moves to page n, clamped to the pages the current filter yields.
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.page = n
	s.list.clampPage(len(s.filteredLocked()))
}

// OpenAdd opens an empty form: first category, today's date.
func (s *Session) OpenAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.modal = ModalAdding
	s.list.editingID = ""
	s.list.form = ExpenseForm{
		CategoryID: core.DefaultCategoryID,
		Date:       core.DateOf(s.now()).String(),
	}
}

// OpenEdit opens the form filled with the expense id. It returns false when
// the projection has no such expense.
func (s *Session) OpenEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			s.list.modal = ModalEditing
			s.list.editingID = id
			s.list.form = ExpenseForm{
				Amount:     e.Amount.Decimal().String(),
				CategoryID: e.CategoryID,
				Date:       e.Date.String(),
				Notes:      e.Notes,
			}
			return true
		}
	}
	return false
}

func (s *Session) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.closeModal()
}

func parseForm(f ExpenseForm) (core.Expense, error) {
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		CategoryID: strings.TrimSpace(f.CategoryID),
		Amount:     amount,
		Date:       date,
		Notes:      strings.TrimSpace(f.Notes),
	}
	return e, e.Validate()
}

// AddExpense creates an expense from the form. The modal closes only when
// the write succeeds; otherwise it stays open with the submitted values.
func (s *Session) AddExpense(ctx context.Context, f ExpenseForm) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list.modal = ModalAdding
	s.list.editingID = ""
	s.list.form = f
	e, err := parseForm(f)
	if err != nil {
		return invalid(err)
	}

	return commit(ctx, s, "create_expense",
		func(ctx context.Context) (core.Expense, error) {
			return s.svc.Expenses.Create(ctx, s.userID, e)
		},
		func(saved core.Expense) {
			s.expenses = append(s.expenses, saved)
			core.SortExpenses(s.expenses)
			s.list.closeModal()
		},
		NoticeExpenseAdded, NoticeSaveFailed)
}

// EditExpense replaces every field of expense id, keeping the id.
func (s *Session) EditExpense(ctx context.Context, id string, f ExpenseForm) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list.modal = ModalEditing
	s.list.editingID = id
	s.list.form = f
	e, err := parseForm(f)
	if err != nil {
		return invalid(err)
	}
	e.ID = id

	return commit(ctx, s, "update_expense",
		func(ctx context.Context) (core.Expense, error) {
			return s.svc.Expenses.Update(ctx, s.userID, e)
		},
		func(saved core.Expense) {
			for i := range s.expenses {
				if s.expenses[i].ID == saved.ID {
					s.expenses[i] = saved
				}
			}
			core.SortExpenses(s.expenses)
			s.list.closeModal()
		},
		NoticeExpenseUpdated, NoticeSaveFailed)
}

// DeleteExpense removes id from the store and then from the projection.
func (s *Session) DeleteExpense(ctx context.Context, id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return commit(ctx, s, "delete_expense",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.svc.Expenses.Delete(ctx, s.userID, id)
		},
		func(struct{}) {
			kept := s.expenses[:0:0]
			for _, e := range s.expenses {
				if e.ID != id {
					kept = append(kept, e)
				}
			}
			s.expenses = kept
			if s.list.editingID == id {
				s.list.closeModal()
			}
			s.list.clampPage(len(s.filteredLocked()))
		},
		NoticeExpenseDeleted, NoticeDeleteFailed)
}

// ExpenseRow is one display row of the expense table.
type ExpenseRow struct {
	ID       string
	Date     string
	Category core.Category
	Amount   string
	Notes    string
}

// ExpensesModel is everything the expenses page renders.
type ExpensesModel struct {
	Filter     FilterInput
	Filtered   bool
	Categories []core.Category
	Rows       []ExpenseRow
	Page       int
	Pages      int
	HasPrev    bool
	HasNext    bool
	// Summary reads "Showing 1 to 8 of 20 expenses"; empty when nothing matches.
	Summary   string
	PageLabel string
	Empty     bool

	Modal     ModalMode
	EditingID string
	Form      ExpenseForm
	Notice    string
}

func (m ExpensesModel) ModalOpen() bool { return m.Modal != ModalClosed }

func (m ExpensesModel) ModalTitle() string {
	if m.Modal == ModalEditing {
		return "Edit Expense"
	}
	return "Add Expense"
}

func (s *Session) ExpensesView() ExpensesModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked()
	page := core.Paginate(filtered, s.list.page)
	rows := make([]ExpenseRow, 0, len(page.Items))
	for _, e := range page.Items {
		rows = append(rows, ExpenseRow{
			ID:       e.ID,
			Date:     e.Date.Display(),
			Category: core.CategoryFor(e.CategoryID),
			Amount:   format.INR(e.Amount),
			Notes:    e.Notes,
		})
	}

	m := ExpensesModel{
		Filter:     s.list.filter,
		Filtered:   !s.list.filter.toCore().IsZero(),
		Categories: core.Categories(),
		Rows:       rows,
		Page:       page.Number,
		Pages:      page.Pages,
		HasPrev:    page.HasPrev(),
		HasNext:    page.HasNext(),
		Empty:      page.TotalItems == 0,
		Modal:      s.list.modal,
		EditingID:  s.list.editingID,
		Form:       s.list.form,
		Notice:     s.notice,
	}
	if !m.Empty {
		m.Summary = fmt.Sprintf("Showing %d to %d of %d expenses", page.First, page.Last, page.TotalItems)
		m.PageLabel = fmt.Sprintf("Page %d of %d", page.Number, page.Pages)
	}
	return m
}
