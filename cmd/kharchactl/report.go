package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kharcha/internal/core"
	"kharcha/internal/format"
	"kharcha/internal/views"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	levelStyles = map[core.BudgetLevel]lipgloss.Style{
		core.LevelOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		core.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		core.LevelDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

const barWidth = 30

func reportCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			budget := core.DefaultBudget()
			b, err := result.Store.GetBudget(cmd.Context(), user.ID)
			if err != nil {
				return fmt.Errorf("load budget: %w", err)
			}
			if b != nil {
				budget = *b
			}

			writeReport(cmd.OutOrStdout(), user.Email, expenses, budget, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account to report on")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func writeReport(out io.Writer, email string, expenses []core.Expense, budget core.Budget, now time.Time) {
	ov := core.Summarize(expenses, budget, now)
	progress := core.BudgetProgress(budget, ov.Spent)

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Kharcha · %s · %s", email, now.Format("January 2006"))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total spent\t%s\n", format.INR(ov.Spent))
	fmt.Fprintf(w, "Budget remaining\t%s\n", format.INR(ov.Remaining))
	top := mutedStyle.Render(views.NoTopCategory)
	if ov.HasTop {
		top = ov.Top.Name
	}
	fmt.Fprintf(w, "Top category\t%s\n", top)
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Budget"))
	filled := int(progress.Percent / 100 * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(out, "%s %.0f%%  %s spent of %s\n",
		levelStyles[progress.Level].Render(bar), progress.Percent,
		format.INR(progress.Spent), format.INR(progress.Budget))
	if progress.Exceeded {
		fmt.Fprintln(out, levelStyles[core.LevelDanger].Render(
			fmt.Sprintf("You've exceeded your budget by %s.", format.INR(progress.ExceededBy))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("By category"))
	breakdown := core.CategoryBreakdown(expenses)
	if len(breakdown) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(views.BreakdownEmpty))
	} else {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, c := range breakdown {
			fmt.Fprintf(w, "%s\t%s\t\n", c.Category.Name, format.INR(c.Amount))
		}
		_ = w.Flush()
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Monthly trend"))
	trend := core.MonthlyTrend(expenses)
	if len(trend) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(views.TrendEmpty))
		return
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range trend {
		fmt.Fprintf(w, "%s\t%s\n", p.Label, format.INRShort(p.Total))
	}
	_ = w.Flush()
}
