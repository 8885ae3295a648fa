package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GldzzPro/graph-sync/internal/server"
	"github.com/GldzzPro/graph-sync/internal/syncer"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger API",
	Long: `Starts the HTTP front door. POST /trigger starts an asynchronous
sync job, GET /jobs/{id} reports its progress, GET /healthcheck answers
liveness probes. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	logger := slog.Default()
	srv := server.New(cfg, syncer.New(cfg, logger), logger)
	return srv.ListenAndServe(cmd.Context())
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "",
		"Listen address (overrides server.address from config)")
}
