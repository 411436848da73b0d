// Package server exposes the CAT62 codec over HTTP: JSON plots in, binary
// datablocks out, and back again, plus a feed of recently decoded tracks and
// the operation archive.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/plots"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/publish"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/storage"
)

// Server wires the plot encoder/decoder into an HTTP API.
type Server struct {
	encoder   *plots.Encoder
	decoder   *plots.Decoder
	archive   *storage.DB        // nil when archiving is disabled
	publisher *publish.Publisher // nil when NATS is not configured
	tracks    *cache.Cache       // recently decoded tracks by track number
	logger    *logrus.Logger
	addr      string
}

// Options configures the server beyond its codec dependencies. Archive and
// Publisher may be nil.
type Options struct {
	Addr      string
	Archive   *storage.DB
	Publisher *publish.Publisher
	TrackTTL  time.Duration
}

// New creates a server. TrackTTL bounds how long a decoded track stays in
// the recent-tracks cache.
func New(encoder *plots.Encoder, decoder *plots.Decoder, logger *logrus.Logger, opts Options) *Server {
	ttl := opts.TrackTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Server{
		encoder:   encoder,
		decoder:   decoder,
		archive:   opts.Archive,
		publisher: opts.Publisher,
		tracks:    cache.New(ttl, ttl/4),
		logger:    logger,
		addr:      opts.Addr,
	}
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Post("/encode", s.handleEncode)
	r.Post("/decode", s.handleDecode)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tracks", s.handleTracks)
		r.Get("/operations", s.handleOperations)
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.addr).Info("CAT62 ASTERIX API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// corsMiddleware allows browser frontends to call the API directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
