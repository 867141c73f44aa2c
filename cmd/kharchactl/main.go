package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kharcha/internal/backend"
	"kharcha/internal/cli"
	"kharcha/internal/config"
	applog "kharcha/internal/log"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "kharchactl",
		Short: "Administer a kharcha installation",
		Long: `kharchactl runs migrations, creates accounts, seeds sample data and
reports or exports a user's expenses straight from the configured store.

It reads the same environment variables as the server (DATA_BACKEND,
SQLITE_DB_PATH, DATABASE_URL, ...), an optional kharcha.yaml and flags.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kharcha.yaml or $HOME/.config/kharcha/kharcha.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "data backend ("+strings.Join(backend.GetBackendTypeStrings(), ", ")+")")
	rootCmd.PersistentFlags().String("sqlite-path", "", "SQLite database path")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection URL")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("data_backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("sqlite_db_path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/kharcha")
		}
		viper.SetConfigName("kharcha")
		viper.SetConfigType("yaml")
	}
	// Keys are the lower-cased environment variable names.
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cli.SetupLogger(applog.ComponentCLI, viper.GetString("log_level"), viper.GetString("log_format"))
	return nil
}

// loadConfig overlays viper's view (flags, config file, env) on the
// environment-derived server configuration.
func loadConfig() *config.Config {
	cfg := config.Load()
	overlay := map[string]*string{
		"data_backend":   &cfg.DataBackend,
		"sqlite_db_path": &cfg.SQLiteDBPath,
		"database_url":   &cfg.DatabaseURL,
		"jwt_secret":     &cfg.JWTSecret,
		"base_url":       &cfg.BaseURL,
	}
	for key, dst := range overlay {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	return cfg
}

// openStore returns the configured store; the caller must run the cleanup.
func openStore(ctx context.Context) (*backend.BackendResult, *config.Config, error) {
	cfg := loadConfig()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	result, err := backend.NewFactory(slog.Default()).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", backendCfg.Type, err)
	}
	return result, cfg, nil
}

func closeStore(result *backend.BackendResult) {
	if err := result.Cleanup(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
}
