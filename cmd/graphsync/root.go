package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GldzzPro/graph-sync/internal/config"
)

// Global flags
var (
	configPath string
	verbose    bool
)

// cfg is populated by loadConfig before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "graphsync",
	Short: "graphsync - module dependency graph synchronizer",
	Long: `graphsync pulls module dependency graphs from remote instances over
JSON-RPC, merges them into one cross-instance graph, and upserts the
result into a Neo4j property graph.

Run "graphsync sync" for a one-shot synchronization, or
"graphsync serve" to expose the HTTP trigger API.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads and validates configuration before any command runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	loaded, err := config.NewLoader(config.NewValidator()).Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	setupLogging(cfg.Logging)
	return nil
}

// setupLogging configures the process-wide slog default from config, with
// --verbose forcing debug.
func setupLogging(lc config.LoggingConfig) {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: $GRAPHSYNC_CONFIG or config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
