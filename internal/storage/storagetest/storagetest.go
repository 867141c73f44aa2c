// Package storagetest runs the same behavioural checks against every
// storage.Store implementation.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// Run exercises s. The store must be empty.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, core.User{Email: " Alice@Example.com ", PasswordHash: "h1"})
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, core.User{Email: "bob@example.com", PasswordHash: "h2"})
	require.NoError(t, err)

	t.Run("users", func(t *testing.T) {
		assert.NotEmpty(t, alice.ID)
		assert.Equal(t, "alice@example.com", alice.Email)

		got, err := s.GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.False(t, got.Verified)

		require.NoError(t, s.MarkVerified(ctx, alice.ID))
		got, err = s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, got.Verified)

		_, err = s.CreateUser(ctx, core.User{Email: "alice@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, storage.ErrEmailTaken)

		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		ids, err := s.ListUserIDs(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, ids)
	})

	t.Run("profile created with user", func(t *testing.T) {
		p, err := s.GetProfile(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.EnableBudgetAlerts)

		updated, err := s.UpdateProfile(ctx, alice.ID, core.ProfileSettings{EnableBudgetAlerts: false})
		require.NoError(t, err)
		assert.False(t, updated.EnableBudgetAlerts)

		p, err = s.GetProfile(ctx, alice.ID)
		require.NoError(t, err)
		assert.False(t, p.EnableBudgetAlerts)

		_, err = s.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", core.ProfileSettings{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("budget upsert", func(t *testing.T) {
		b, err := s.GetBudget(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, b)

		saved, err := s.UpsertBudget(ctx, alice.ID, core.Budget{Amount: core.Money{Paise: 5000050}, Period: core.Monthly})
		require.NoError(t, err)
		assert.Equal(t, int64(5000050), saved.Amount.Paise)

		saved, err = s.UpsertBudget(ctx, alice.ID, core.Budget{Amount: core.Rupees(200), Period: core.Weekly})
		require.NoError(t, err)
		assert.Equal(t, core.Budget{Amount: core.Rupees(200), Period: core.Weekly}, saved)

		b, err = s.GetBudget(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, saved, *b)

		other, err := s.GetBudget(ctx, bob.ID)
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("expenses", func(t *testing.T) {
		older, err := s.CreateExpense(ctx, alice.ID, core.Expense{
			CategoryID: "cat1", Amount: core.Money{Paise: 12345}, Date: core.NewDate(2025, 1, 10), Notes: "lunch",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, older.ID)

		newer, err := s.CreateExpense(ctx, alice.ID, core.Expense{
			CategoryID: "cat2", Amount: core.Rupees(50), Date: core.NewDate(2025, 2, 1),
		})
		require.NoError(t, err)

		_, err = s.CreateExpense(ctx, bob.ID, core.Expense{
			CategoryID: "cat3", Amount: core.Rupees(1), Date: core.NewDate(2025, 3, 1),
		})
		require.NoError(t, err)

		list, err := s.ListExpenses(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older, list[1])

		older.Notes = "team lunch"
		older.Amount = core.Rupees(99)
		_, err = s.UpdateExpense(ctx, alice.ID, older)
		require.NoError(t, err)

		_, err = s.UpdateExpense(ctx, bob.ID, older)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// Deleting someone else's expense is a silent no-op.
		require.NoError(t, s.DeleteExpense(ctx, bob.ID, older.ID))
		list, err = s.ListExpenses(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "team lunch", list[1].Notes)
		assert.Equal(t, core.Rupees(99), list[1].Amount)

		require.NoError(t, s.DeleteExpense(ctx, alice.ID, older.ID))
		require.NoError(t, s.DeleteExpense(ctx, alice.ID, older.ID))
		list, err = s.ListExpenses(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
