// internal/httpserver/server.go
//
// HTTP server wiring for the Jeopardy board.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, request logs).
//   - Page + static assets for the browser render surface.
//   - GET /ws: WebSocket render surface bound to the caller's session.
//   - GET /api/board: JSON snapshot of the caller's board.
//   - GET /health, and GET /debug/cache when a category cache is configured.

package httpserver

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/assets"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/store"
)

// CacheCounter is implemented by the category cache.
type CacheCounter interface {
	Count(ctx context.Context) (int, error)
}

// Options configures optional server features.
type Options struct {
	SessionSecret string
	SecureCookies bool
	Cache         CacheCounter
}

// Server bundles router, session store and board builder.
type Server struct {
	r        *chi.Mux
	store    store.Store
	builder  game.Builder
	sessions *sessionSigner
	cache    CacheCounter
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, b game.Builder, opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		builder:  b,
		sessions: &sessionSigner{secret: []byte(opts.SessionSecret), secure: opts.SecureCookies},
		cache:    opts.Cache,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(requestLogger)

	// --- page ---
	s.r.Get("/", s.handleIndex)
	static, err := fs.Sub(assets.FS, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("embedded static assets")
	}
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// --- render surface ---
	s.r.Get("/ws", s.handleWS)

	// --- JSON ---
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/api/board", s.handleBoard)
		if s.cache != nil {
			r.Get("/debug/cache", s.handleCacheStats)
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.FS.ReadFile("index.html")
	if err != nil {
		http.Error(w, "page missing", http.StatusInternalServerError)
		return
	}
	// Issue the session cookie before the page opens its socket.
	if _, err := s.sessions.sessionID(w, r); err != nil {
		log.Error().Err(err).Msg("issue session")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(page)
}

// handleBoard returns the caller's phase and current grid.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Error().Err(err).Msg("resolve session")
		http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(ctrl.Snapshot())
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.cache.Count(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("count cache")
		http.Error(w, `{"error":"cache_unavailable"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"categories": n, "sessions": s.store.Len()})
}
