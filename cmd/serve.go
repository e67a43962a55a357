package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Akashdeep-Patra/content-manager/internal/catalog"
	"github.com/Akashdeep-Patra/content-manager/internal/config"
	"github.com/Akashdeep-Patra/content-manager/internal/logging"
	"github.com/Akashdeep-Patra/content-manager/internal/server"
	"github.com/Akashdeep-Patra/content-manager/internal/store"
)

// buildServeCmd creates the `cmgr serve` subcommand.
func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a content service backed by SQLite",
		Long: `Run a content service backed by SQLite.

Content types are YAML files in the types directory, one per category. With
--watch the directory is reloaded whenever a definition changes, and connected
consoles are told to refresh.

Examples:
  cmgr serve
  cmgr serve --addr :8080 --db ./content.db --types ./types`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config)")
	cmd.Flags().String("db", "", "SQLite database path (default from config)")
	cmd.Flags().String("types", "", "Content type directory (default from config)")
	cmd.Flags().Bool("watch", true, "Reload content types when they change")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg, err := config.Load(
		config.Flag{Key: "server.addr", Flag: flags.Lookup("addr")},
		config.Flag{Key: "server.db_path", Flag: flags.Lookup("db")},
		config.Flag{Key: "server.types_dir", Flag: flags.Lookup("types")},
		config.Flag{Key: "server.watch", Flag: flags.Lookup("watch")},
	)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.Server.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db := store.NewSQLiteStore()
	if err := db.Open(cfg.Server.DBPath); err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.InitSchema(); err != nil {
		return err
	}

	types, err := catalog.Load(cfg.Server.TypesDir)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		logger.Warn("no content types defined", "dir", cfg.Server.TypesDir)
	}

	srv := server.New(server.Config{
		Store:    db,
		Catalog:  catalog.New(types),
		Addr:     cfg.Server.Addr,
		Logger:   logger,
		TypesDir: cfg.Server.TypesDir,
		Watch:    cfg.Server.Watch,
		PageSize: cfg.PageSize,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
