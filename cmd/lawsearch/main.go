package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"egovlaw-backend/app"
	"egovlaw-backend/config"
	"egovlaw-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string
	timeout    time.Duration

	log         = zap.NewNop()
	application *app.App
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lawsearch",
	Short: "Search Japanese statutes on e-Gov and ask an AI about them",
	Long: `lawsearch queries the e-Gov statute registry.

Laws can be listed and filtered by category, name, number, keyword and
promulgation date. With GEMINI_API_KEY set, a statute can be summarized or
questioned interactively; answers cite the articles they rely on.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application != nil {
			return application.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall operation timeout")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(askCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") || os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = logLevel
	}
	cfg.Log.Format = "console"

	log, err = logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	application, err = app.New(commandContext(cmd), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
