package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kharcha/internal/auth"
	"kharcha/internal/core"
	"kharcha/internal/services"
	"kharcha/internal/storage"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a verified account",
		Long: `Create an account that can sign in immediately, skipping the email
verification step. The password may also come from KHARCHA_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = viper.GetString("kharcha_password")
			}

			result, cfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(result)

			tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.VerifyTTL)
			accounts := services.NewAccountService(result.Store, tokens, cfg.BaseURL)
			user, err := accounts.CreateVerified(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// lookupUser resolves an email to a user with a friendlier not-found error.
func lookupUser(cmd *cobra.Command, users storage.UserStore, email string) (core.User, error) {
	user, err := users.GetUserByEmail(cmd.Context(), strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
