package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kharcha/internal/services"
)

func seedCmd() *cobra.Command {
	var (
		email string
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add sample expenses for the current month",
		Long: `Create random sample expenses dated in the current month, with amounts
between ₹5 and ₹105, so a fresh account has something to chart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
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

			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed>>1))
			expenses := services.SampleExpenses(count, time.Now(), rng)

			bar := progressbar.NewOptions(count,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Seeding expenses...[reset]"),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(cmd.ErrOrStderr()) }),
			)

			svc := services.NewExpenseService(result.Store)
			n, err := svc.Seed(cmd.Context(), user.ID, expenses, func() { _ = bar.Add(1) })
			if err != nil {
				return fmt.Errorf("seeded %d of %d: %w", n, count, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample expenses for %s\n", n, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account to seed")
	cmd.Flags().IntVar(&count, "count", 20, "number of expenses")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
