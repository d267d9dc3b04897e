package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/ledger"
)

// API serves a read-only view of the ledger.
type API struct {
	router *mux.Router
	ledger *ledger.Ledger
	prefix string
	logger *zap.Logger
}

// New builds the API. prefix is the chat command prefix shown on the page.
func New(l *ledger.Ledger, prefix string, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &API{
		router: mux.NewRouter(),
		ledger: l,
		prefix: prefix,
		logger: logger,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/api/points", a.handleListPoints).Methods("GET")
	a.router.HandleFunc("/api/points/{identity}", a.handleGetPoints).Methods("GET")

	// Web interface
	a.router.HandleFunc("/", a.handleWebInterface).Methods("GET")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// Read-only and unauthenticated, so any origin may fetch it.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Run serves on bind until ctx is done.
func (a *API) Run(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API server listening", zap.String("addr", "http://"+bind))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
