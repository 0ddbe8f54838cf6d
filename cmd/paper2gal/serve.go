package main

import (
	"github.com/spf13/cobra"

	"github.com/paper2gal/paper2gal/internal/config"
	"github.com/paper2gal/paper2gal/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the paper2gal server",
	Long: `Start the paper2gal HTTP server.

The server provides:
  - POST /sessions                    - Upload a document, open a session
  - GET  /sessions/{id}/script?chunk=N - Script for one chunk
  - POST /sessions/{id}/advance       - Move to the next chunk
  - POST /sessions/{id}/reset         - Rewind to the first chunk
  - GET  /sessions/{id}/export        - Full document as validated JSON
  - GET  /health                      - Health check

Examples:
  paper2gal serve                    # Start on default port 8080
  paper2gal serve --port 3000        # Start on custom port
  paper2gal serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()
		cfg := mgr.Get()

		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}

		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		srv, err := server.New(server.Config{
			Host:         host,
			Port:         port,
			Generator:    gen,
			ChunkSize:    cfg.Chunking.ChunkSize,
			ChunkOverlap: cfg.Chunking.ChunkOverlap,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
