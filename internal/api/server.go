// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/recbridge/recbridge/internal/catalog"
	"github.com/recbridge/recbridge/internal/common"
	"github.com/recbridge/recbridge/internal/llm"
	"github.com/recbridge/recbridge/internal/recording"
)

// Server wires the normalizer, the optional catalog and the optional AI
// provider behind an HTTP API. The catalog and provider may be nil; the
// parse and generate endpoints degrade gracefully without them.
type Server struct {
	router     chi.Router
	normalizer *recording.Normalizer
	store      *catalog.Store
	provider   llm.Provider
}

func NewServer(store *catalog.Store, provider llm.Provider) *Server {
	logger := common.Logger()
	providerName := "none"
	if provider != nil {
		providerName = provider.Name()
	}
	logger.Info("api: building server", "catalog", store != nil, "provider", providerName)

	srv := &Server{
		router:     chi.NewRouter(),
		normalizer: recording.NewNormalizer(),
		store:      store,
		provider:   provider,
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/parse", s.handleParse)
	s.router.Post("/v1/generate", s.handleGenerate)
	s.router.Get("/v1/recordings", s.handleListRecordings)
	s.router.Get("/v1/recordings/{id}", s.handleGetRecording)
	s.router.Get("/v1/logs", s.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
