package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paper2gal/paper2gal/internal/config"
	"github.com/paper2gal/paper2gal/internal/providers"
	"github.com/paper2gal/paper2gal/internal/script"
	"github.com/paper2gal/paper2gal/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "paper2gal",
	Short: "Turn academic papers into interactive visual novel scripts",
	Long: `paper2gal reads a paper (PDF or markdown), splits it into chunks and
has an LLM narrate each chunk as a short visual novel scene: dialogue,
quizzes and branching choices, voiced by the catgirl guide Nana.

The pipeline includes:
  - PDF and markdown chunking with configurable size and overlap
  - Script generation with bounded retries and degraded fallbacks
  - Speculative prefetch of the next chunk during playback
  - Schema-validated JSON export of the full script`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.paper2gal/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// newGenerator builds the chat client and generator from configuration.
func newGenerator(cfg *config.Config, logger *slog.Logger) (*script.Generator, error) {
	client, err := providers.NewDeepSeekClient(providers.DeepSeekConfig{
		APIKey:    config.ResolveEnvVars(cfg.LLM.APIKey),
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		RateLimit: cfg.LLM.RateLimit,
		Timeout:   time.Duration(cfg.LLM.RequestTimeout) * time.Second,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return script.NewGenerator(script.GeneratorConfig{
		Client:         client,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxRetries:     cfg.LLM.MaxRetries,
		RequestTimeout: time.Duration(cfg.LLM.RequestTimeout) * time.Second,
		Logger:         logger,
	})
}
