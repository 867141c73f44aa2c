package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kharcha/internal/sheets"
	"kharcha/internal/storage"
)

// Export copies every user's previous month of expenses to a spreadsheet.
type Export struct {
	store    Store
	exporter sheets.Exporter
	options
}

func NewExport(store Store, exporter sheets.Exporter, opts ...Option) *Export {
	return &Export{store: store, exporter: exporter, options: newOptions(opts)}
}

// PreviousMonth exports the calendar month before now. Users are exported
// one at a time to stay inside the Sheets API write quota.
func (x *Export) PreviousMonth(ctx context.Context) error {
	year, month := sheets.PreviousMonth(x.now())
	return x.Month(ctx, year, month)
}

func (x *Export) Month(ctx context.Context, year int, month time.Month) error {
	ids, err := x.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng, err := x.user(ctx, id, year, month)
		x.recorder.Export(err)
		if err != nil {
			x.logger.ErrorContext(ctx, "Export failed", "user_id", id, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		if rng != "" {
			x.logger.InfoContext(ctx, "Exported expenses", "user_id", id, "range", rng)
		}
	}
	return errors.Join(errs...)
}

func (x *Export) user(ctx context.Context, userID string, year int, month time.Month) (string, error) {
	m := sheets.Month{Year: year, Month: month}
	user, err := x.store.GetUserByID(ctx, userID)
	switch {
	case err == nil:
		m.Email = user.Email
	case !errors.Is(err, storage.ErrNotFound):
		return "", fmt.Errorf("load user: %w", err)
	}

	m.Expenses, err = x.store.ListExpenses(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}
	return x.exporter.ExportMonth(ctx, m)
}
