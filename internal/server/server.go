// Package server hosts the content API the console talks to.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Akashdeep-Patra/content-manager/internal/catalog"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/realtime"
	"github.com/Akashdeep-Patra/content-manager/internal/store"
	"github.com/Akashdeep-Patra/content-manager/internal/watcher"
)

// Store persists items. *store.SQLiteStore implements it.
type Store interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
	ListItems(ctx context.Context, q store.ListQuery) ([]content.Item, int, error)
	GetItem(ctx context.Context, id string) (content.Item, error)
	CreateItem(ctx context.Context, categoryID string, data content.FormData) (content.Item, error)
	UpdateItem(ctx context.Context, id string, data content.FormData) (content.Item, error)
	DeleteItems(ctx context.Context, ids []string) (int, error)
}

// Config holds configuration for the server.
type Config struct {
	Store   Store
	Catalog *catalog.Catalog
	// Hub carries change notifications. A new hub is created when nil.
	Hub    *realtime.Hub
	Addr   string
	Logger *slog.Logger

	// TypesDir is reloaded into Catalog on changes when Watch is set.
	TypesDir string
	Watch    bool
	// PageSize is the item window used when a request names none.
	PageSize int
}

// Server serves the content API, the realtime socket and static assets.
type Server struct {
	store    Store
	catalog  *catalog.Catalog
	hub      *realtime.Hub
	addr     string
	typesDir string
	watch    bool
	pageSize int
	logger   *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Hub == nil {
		cfg.Hub = realtime.NewHub(cfg.Logger)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.New(nil)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = content.DefaultPageSize
	}
	return &Server{
		store:    cfg.Store,
		catalog:  cfg.Catalog,
		hub:      cfg.Hub,
		addr:     cfg.Addr,
		typesDir: cfg.TypesDir,
		watch:    cfg.Watch,
		pageSize: cfg.PageSize,
		logger:   cfg.Logger,
	}
}

// Hub returns the server's change notifier.
func (s *Server) Hub() *realtime.Hub { return s.hub }

// Handler returns the router with every route installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	s.routes(r)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting content server", "addr", s.addr, "types", len(s.catalog.IDs()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.typesDir != "" {
		eg.Go(func() error {
			return s.watchTypes(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down content server")
		s.hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchTypes reloads the catalog whenever a definition file changes and
// tells every console about it.
func (s *Server) watchTypes(ctx context.Context) error {
	errs := make(chan error, 8)
	events, stop, err := watcher.Watch(s.typesDir, 100*time.Millisecond, errs)
	if err != nil {
		s.logger.Warn("not watching content types", "dir", s.typesDir, "error", err)
		return nil
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			s.reloadTypes()
		case err := <-errs:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) reloadTypes() {
	if err := s.catalog.Reload(s.typesDir); err != nil {
		s.logger.Error("reloading content types", "dir", s.typesDir, "error", err)
		return
	}
	s.logger.Info("content types reloaded", "types", len(s.catalog.IDs()))
	s.hub.Changed()
}
