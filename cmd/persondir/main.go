package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/persondir/persondir/internal/codec"
	"github.com/persondir/persondir/internal/config"
	"github.com/persondir/persondir/internal/store"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "persondir",
		Short: "persondir — a person directory with a stable serialization contract",
		Long:  "persondir stores people (name, age, optional favourite food) in neo4j and serves them over a CLI, an HTTP/JSON API, and MCP. Serialized output always carries the keys name, age, favourite_food in that order, with an explicit null for an unknown favourite food.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		addCmd(),
		getCmd(),
		listCmd(),
		removeCmd(),
		importCmd(),
		exportCmd(),
		statsCmd(),
		healthCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newCodec() codec.Codec {
	return codec.JSONCodec{}
}

func newStore(ctx context.Context, logger *slog.Logger) (store.Store, error) {
	return store.NewNeo4jStore(
		ctx,
		cfg.Neo4j.URI,
		cfg.Neo4j.Username,
		cfg.Neo4j.Password,
		cfg.Neo4j.Database,
		logger,
	)
}

// foodLabel renders a favourite food for human-facing output, keeping the
// unknown and empty cases tellable apart.
func foodLabel(food *string) string {
	if food == nil {
		return "(unknown)"
	}
	if *food == "" {
		return `""`
	}
	return *food
}
