// Package postgres stores data in PostgreSQL through a pgx connection pool.
// Amounts are NUMERIC(12,2) and travel as text to keep them exact.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ storage.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and runs pending migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// RunMigrations applies the embedded schema using the pgx5 migrate driver.
func RunMigrations(databaseURL string) error {
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// migrateURL swaps the scheme for the one the pgx/v5 migrate driver registers.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, category_id, amount::text, to_char(date, 'YYYY-MM-DD'), notes
		FROM expenses
		WHERE user_id = $1
		ORDER BY date DESC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e            core.Expense
			amount, date string
		)
		if err := rows.Scan(&e.ID, &e.CategoryID, &amount, &date, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (id, user_id, category_id, amount, date, notes)
		VALUES ($1, $2, $3, $4::numeric, $5::date, $6)`,
		e.ID, userID, e.CategoryID, amountText(e.Amount), e.Date.String(), e.Notes)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if _, err := uuid.Parse(e.ID); err != nil {
		return core.Expense{}, storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE expenses
		SET category_id = $1, amount = $2::numeric, date = $3::date, notes = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6`,
		e.CategoryID, amountText(e.Amount), e.Date.String(), e.Notes, e.ID, userID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID string) (*core.Budget, error) {
	var amount, period string
	err := s.pool.QueryRow(ctx, `SELECT amount::text, period FROM budgets WHERE user_id = $1`, userID).
		Scan(&amount, &period)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	m, err := parseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("budget amount: %w", err)
	}
	return &core.Budget{Amount: m, Period: core.Period(period)}, nil
}

func (s *Store) UpsertBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	var amount, period string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO budgets (id, user_id, amount, period)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			period = EXCLUDED.period,
			updated_at = now()
		RETURNING amount::text, period`,
		uuid.NewString(), userID, amountText(b.Amount), string(b.Period)).
		Scan(&amount, &period)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	m, err := parseAmount(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget amount: %w", err)
	}
	return core.Budget{Amount: m, Period: core.Period(period)}, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*core.ProfileSettings, error) {
	var p core.ProfileSettings
	err := s.pool.QueryRow(ctx, `SELECT enable_budget_alerts FROM profiles WHERE id = $1`, userID).
		Scan(&p.EnableBudgetAlerts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, p core.ProfileSettings) (core.ProfileSettings, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET enable_budget_alerts = $1, updated_at = now() WHERE id = $2`,
		p.EnableBudgetAlerts, userID)
	if err != nil {
		return core.ProfileSettings{}, fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ProfileSettings{}, storage.ErrNotFound
	}
	return p, nil
}

// CreateUser inserts the user and its profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = core.NormalizeEmail(u.Email)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.Verified).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return core.User{}, storage.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (id, email, enable_budget_alerts) VALUES ($1, $2, $3)`,
		u.ID, u.Email, core.DefaultProfileSettings().EnableBudgetAlerts); err != nil {
		return core.User{}, fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.User{}, fmt.Errorf("commit user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.getUser(ctx, `WHERE email = $1`, core.NormalizeEmail(email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (core.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.User{}, storage.ErrNotFound
	}
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, email, password_hash, verified, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, storage.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) MarkVerified(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func amountText(m core.Money) string {
	return m.Decimal().StringFixed(2)
}

func parseAmount(s string) (core.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.MoneyFromDecimal(d), nil
}
