package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

func TestMonthRows(t *testing.T) {
	m := Month{
		Email: "me@example.com",
		Year:  2025,
		Month: time.March,
		Expenses: []core.Expense{
			{ID: "late", CategoryID: "cat3", Amount: core.Money{Paise: 12550}, Date: core.NewDate(2025, time.March, 20), Notes: "cab"},
			{ID: "other-month", CategoryID: "cat1", Amount: core.Rupees(5), Date: core.NewDate(2025, time.April, 1)},
			{ID: "early", CategoryID: "missing", Amount: core.Rupees(40), Date: core.NewDate(2025, time.March, 2)},
			{ID: "other-year", CategoryID: "cat1", Amount: core.Rupees(5), Date: core.NewDate(2024, time.March, 2)},
		},
	}

	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"2025-03-02", "me@example.com", "Uncategorized", 40.0, "", "early"}, rows[0])
	assert.Equal(t, []any{"2025-03-20", "me@example.com", "Transport", 125.5, "cab", "late"}, rows[1])
	assert.Len(t, rows[0], len(Header))
	assert.Equal(t, "March 2025", m.Label())
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC), 2025, time.February},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 2024, time.December},
	}
	for _, tt := range tests {
		y, m := PreviousMonth(tt.now)
		assert.Equal(t, tt.wantYear, y)
		assert.Equal(t, tt.wantMonth, m)
	}
}
