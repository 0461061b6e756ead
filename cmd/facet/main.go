package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "facet",
		Short: "Faceted metadata for fashion catalogs",
		Long: `facet resolves product images and catalog rows into two-level faceted
metadata (item type and style/usage hierarchies plus flat attributes),
validates it against a controlled vocabulary, scores confidence and keeps
records in a review queue until they are approved.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/facet/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("vocabulary", "", "vocabulary document (YAML or JSON)")
	rootCmd.PersistentFlags().String("database", "", "record database path")
	rootCmd.PersistentFlags().String("text-provider", "", "copy generator (template, anthropic, openai, claudecode)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("vocabulary.path", rootCmd.PersistentFlags().Lookup("vocabulary"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("text.provider", rootCmd.PersistentFlags().Lookup("text-provider"))

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(recordsCmd())
	rootCmd.AddCommand(vocabularyCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
			slog.Debug("command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		viper.AddConfigPath(config.Dir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FACET")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded", "file", viper.ConfigFileUsed())
	return nil
}

func setDefaults() {
	viper.SetDefault("database.path", config.DefaultDatabasePath())
	viper.SetDefault("database.auto_snapshot", true)
	viper.SetDefault("vision.provider", "none")
	viper.SetDefault("vision.max_retries", 3)
	viper.SetDefault("vision.retry_delay", "1s")
	viper.SetDefault("text.provider", "template")
	viper.SetDefault("text.max_retries", 3)
	viper.SetDefault("text.retry_delay", "1s")
	viper.SetDefault("text.fallback", true)
	viper.SetDefault("review.threshold", 0.7)
	viper.SetDefault("review.priority_high", 0.5)
	viper.SetDefault("review.priority_medium", 0.7)
	viper.SetDefault("validation.fuzzy_cutoff", 0.6)
	viper.SetDefault("validation.suggestion_cutoff", 0.5)
	viper.SetDefault("validation.suggestion_limit", 5)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facet %s\n", version)
		},
	}
}
