package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/internal/api"
	"github.com/Yuceldayan/ACADEM-X/internal/auth"
	"github.com/Yuceldayan/ACADEM-X/internal/chat"
	"github.com/Yuceldayan/ACADEM-X/internal/config"
	"github.com/Yuceldayan/ACADEM-X/internal/files"
	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/internal/transport"
)

// Application wires all components and owns the HTTP server. It is the
// only place that knows the full dependency graph.
type Application struct {
	config     *config.Config
	store      *store.Manager
	sessions   *auth.SessionManager
	registry   *chat.Registry
	broker     *chat.Broker
	router     *chat.Router
	httpServer *http.Server
	log        zerolog.Logger
}

// NewApplication builds the component graph in dependency order:
// store, files, auth, chat core, websocket transport, API, HTTP.
func NewApplication(cfg *config.Config, log zerolog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.NewManager(store.Config{
		Path:    cfg.Database.Path,
		Timeout: cfg.Database.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	fs, err := files.NewStorage(cfg.Uploads.DocumentsDir, cfg.Uploads.AvatarsDir, cfg.Uploads.MaxSizeBytes)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	sessions := auth.NewSessionManager(cfg.Session.TTL)
	hasher := auth.NewPasswordHasher()

	registry := chat.NewRegistry(log)
	broker := chat.NewBroker(registry, log)
	chatRouter := chat.NewRouter(registry, broker, chat.RouterConfig{
		RequireMembership: cfg.Chat.RequireMembership,
	}, log)

	wsHandler := transport.NewHandler(registry, chatRouter, sessions, transport.Config{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		BufferSize:   cfg.WebSocket.BufferSize,
	}, log)

	apiServer := api.NewServer(st, sessions, hasher, fs, registry, log)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.Handle("/ws", wsHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		store:      st,
		sessions:   sessions,
		registry:   registry,
		broker:     broker,
		router:     chatRouter,
		httpServer: httpServer,
		log:        log.With().Str("component", "app").Logger(),
	}, nil
}

// Start brings the HTTP server up and returns once it is accepting
// connections or has failed to bind.
func (app *Application) Start(ctx context.Context) error {
	app.log.Info().Str("addr", app.httpServer.Addr).Msg("starting server")

	errCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		_ = app.store.Close()
		return err
	case <-time.After(100 * time.Millisecond):
	}

	app.log.Info().Msg("server started")
	return nil
}

// Stop shuts components down in reverse order: stop accepting HTTP
// traffic, then close the store.
func (app *Application) Stop(ctx context.Context) error {
	app.log.Info().Msg("shutting down")

	var firstErr error
	if err := app.httpServer.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("HTTP shutdown error: %w", err)
	}
	if err := app.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("store close error: %w", err)
	}

	app.log.Info().Msg("shutdown complete")
	return firstErr
}
