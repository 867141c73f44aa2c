// Package sqlite is the default storage backend, a single SQLite file
// driven by modernc.org/sqlite with embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

var _ storage.Store = (*Repository)(nil)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at dbPath and migrates it.
func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// DSN enables foreign keys and a busy timeout on every pooled connection.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, amount_paise, date, notes
		FROM expenses
		WHERE user_id = ?
		ORDER BY date DESC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e    core.Expense
			date string
		)
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.Amount.Paise, &date, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	now := r.now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, category_id, amount_paise, date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.CategoryID, e.Amount.Paise, e.Date.String(), e.Notes, now, now)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"user_id", userID,
		"amount_paise", e.Amount.Paise,
		"date", e.Date.String())

	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, amount_paise = ?, date = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.CategoryID, e.Amount.Paise, e.Date.String(), e.Notes, r.now(), e.ID, userID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Expense{}, fmt.Errorf("update expense rows affected: %w", err)
	} else if n == 0 {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, userID string) (*core.Budget, error) {
	var (
		b      core.Budget
		period string
	)
	err := r.db.QueryRowContext(ctx, `SELECT amount_paise, period FROM budgets WHERE user_id = ?`, userID).
		Scan(&b.Amount.Paise, &period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	b.Period = core.Period(period)
	return &b, nil
}

func (r *Repository) UpsertBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	now := r.now()
	var (
		out    core.Budget
		period string
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (id, user_id, amount_paise, period, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			amount_paise = excluded.amount_paise,
			period = excluded.period,
			updated_at = excluded.updated_at
		RETURNING amount_paise, period`,
		uuid.NewString(), userID, b.Amount.Paise, string(b.Period), now, now).
		Scan(&out.Amount.Paise, &period)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	out.Period = core.Period(period)
	return out, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (*core.ProfileSettings, error) {
	var s core.ProfileSettings
	err := r.db.QueryRowContext(ctx, `SELECT enable_budget_alerts FROM profiles WHERE id = ?`, userID).
		Scan(&s.EnableBudgetAlerts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &s, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID string, s core.ProfileSettings) (core.ProfileSettings, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET enable_budget_alerts = ?, updated_at = ? WHERE id = ?`,
		s.EnableBudgetAlerts, r.now(), userID)
	if err != nil {
		return core.ProfileSettings{}, fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.ProfileSettings{}, fmt.Errorf("update profile rows affected: %w", err)
	} else if n == 0 {
		return core.ProfileSettings{}, storage.ErrNotFound
	}
	return s, nil
}

// CreateUser inserts the user and its profile in one transaction.
func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = core.NormalizeEmail(u.Email)
	u.CreatedAt = r.now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, verified, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Verified, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, storage.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, email, enable_budget_alerts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, core.DefaultProfileSettings().EnableBudgetAlerts, u.CreatedAt, u.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.User{}, fmt.Errorf("commit user: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `WHERE email = ?`, core.NormalizeEmail(email))
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return r.getUser(ctx, `WHERE id = ?`, id)
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, verified, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, storage.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET verified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
