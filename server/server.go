package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	contextengine "github.com/nucleusmind/contextengine"
	"github.com/nucleusmind/contextengine/config"
)

// Server exposes the engine's two entry points over HTTP for the
// response generator. It deliberately carries no memory CRUD surface.
type Server struct {
	engine *contextengine.Engine
	logger *slog.Logger
	conf   *config.ServerConfig
}

type buildContextRequest struct {
	Query          string `json:"query"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId,omitempty"`
}

func New(engine *contextengine.Engine, logger *slog.Logger, conf *config.ServerConfig) *Server {
	return &Server{
		engine: engine,
		logger: logger,
		conf:   conf,
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods("GET")

	router.HandleFunc("/v1/context", func(w http.ResponseWriter, r *http.Request) {
		var req buildContextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.OrganizationID == "" {
			http.Error(w, "organizationId is required", http.StatusBadRequest)
			return
		}

		result := s.engine.BuildOptimizedContext(r.Context(), req.Query, req.OrganizationID, req.UserID)
		writeJSON(w, result)
	}).Methods("POST")

	router.HandleFunc("/v1/config/{organizationId}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		organizationID := vars["organizationId"]
		userID := r.URL.Query().Get("userId")

		conf := s.engine.GetConfigForOrganization(r.Context(), organizationID, userID)
		writeJSON(w, conf)
	}).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
	)
	logging := func(next http.Handler) http.Handler {
		return handlers.LoggingHandler(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug).Writer(), next)
	}

	return cors(recovery(logging(router)))
}

// ListenAndServe runs the HTTP server until the context is canceled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("context engine listening", slog.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
