package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kharcha/internal/sheets"
	"kharcha/internal/sheets/xlsx"
)

func exportCmd() *cobra.Command {
	var email, month, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one month of a user's expenses to an Excel workbook",
		Long: `Write a month of expenses into a worksheet named after the month.
Running it again for the same month replaces that worksheet; other months
in the workbook are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, mon, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("kharcha-%d-%02d.xlsx", year, int(mon))
			}

			result, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(result)

			user, err := lookupUser(cmd, result.Store, email)
			if err != nil {
				return err
			}
			expenses, err := result.Store.ListExpenses(cmd.Context(), user.ID)
			if err != nil {
				return fmt.Errorf("load expenses: %w", err)
			}

			m := sheets.Month{Email: user.Email, Year: year, Month: mon, Expenses: expenses}
			rng, err := xlsx.New(out).ExportMonth(cmd.Context(), m)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if rng == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No expenses in %s\n", m.Label())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", rng, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account to export")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: previous month)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output workbook (default: kharcha-YYYY-MM.xlsx)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// parseMonth reads YYYY-MM; empty means the month before now.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		y, m := sheets.PreviousMonth(now)
		return y, m, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q, expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
