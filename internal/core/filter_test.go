package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() []Expense {
	return []Expense{
		{ID: "1", CategoryID: "cat5", Notes: "Morning Coffee", Date: NewDate(2025, 3, 10), Amount: Rupees(1)},
		{ID: "2", CategoryID: "cat5", Notes: "coffee beans", Date: NewDate(2025, 3, 1), Amount: Rupees(1)},
		{ID: "3", CategoryID: "cat1", Notes: "coffee", Date: NewDate(2025, 3, 5), Amount: Rupees(1)},
		{ID: "4", CategoryID: "cat5", Notes: "lunch", Date: NewDate(2025, 3, 5), Amount: Rupees(1)},
		{ID: "5", CategoryID: "cat5", Notes: "coffee", Date: NewDate(2025, 2, 28), Amount: Rupees(1)},
	}
}

func ids(list []Expense) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestExpenseFilter_AllPredicates(t *testing.T) {
	f := ExpenseFilter{
		Notes:      "COFFEE",
		CategoryID: "cat5",
		Start:      NewDate(2025, 3, 1),
		End:        NewDate(2025, 3, 10),
	}
	assert.Equal(t, []string{"1", "2"}, ids(f.Apply(filterFixture())))
}

func TestExpenseFilter_UnsetPredicates(t *testing.T) {
	all := filterFixture()
	assert.True(t, ExpenseFilter{}.IsZero())
	assert.True(t, ExpenseFilter{CategoryID: AllCategories}.IsZero())
	assert.Len(t, ExpenseFilter{}.Apply(all), len(all))
	assert.Len(t, ExpenseFilter{CategoryID: AllCategories}.Apply(all), len(all))
}

func TestExpenseFilter_DateBoundsInclusive(t *testing.T) {
	f := ExpenseFilter{Start: NewDate(2025, 3, 5), End: NewDate(2025, 3, 5)}
	assert.Equal(t, []string{"3", "4"}, ids(f.Apply(filterFixture())))

	f = ExpenseFilter{End: NewDate(2025, 2, 28)}
	assert.Equal(t, []string{"5"}, ids(f.Apply(filterFixture())))
}
