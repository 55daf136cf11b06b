// Package server exposes profiles over HTTP. Each session stands for one
// sketch surface: its path is created, updated and deleted by the client
// and the resulting profile can be read back as JSON, a chart or KML.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paulmach/profile"
	"github.com/paulmach/profile/presenter"
)

const shutdownTimeout = 5 * time.Second

// DefaultSessionTTL is how long a session can go unused before it is dropped.
const DefaultSessionTTL = time.Hour

// Config holds what every session profile is built with.
type Config struct {
	Addr          string
	Sampler       profile.ElevationSampler
	MinPointCount int
	Planar        bool          // straight mercator lines instead of great circles
	SessionTTL    time.Duration // DefaultSessionTTL if not positive
	Logger        *slog.Logger
}

// Server holds the sessions.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

type session struct {
	id      uuid.UUID
	profile *profile.Profile
	chart   *presenter.Chart

	lastUsed atomic.Int64 // unix nanoseconds
}

func (sess *session) touch(now time.Time) {
	sess.lastUsed.Store(now.UnixNano())
}

func (sess *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, sess.lastUsed.Load()))
}

// New creates a server with no sessions.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.loadSession)

			r.Delete("/", s.deleteSession)
			r.Put("/path", s.setPath)
			r.Delete("/path", s.clearPath)
			r.Get("/profile", s.getProfile)
			r.Get("/chart", s.getChart)
			r.Get("/chart.png", s.getChartPNG)
			r.Get("/indicator", s.getIndicator)
			r.Get("/export.kml", s.getKML)
		})
	})

	return r
}

// Serve listens on the configured address until the context is canceled,
// then shuts down gracefully. Idle sessions are dropped meanwhile.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		s.expireLoop(egctx)
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// newSession wires a profile to a fresh chart, which starts out showing the placeholder series.
func (s *Server) newSession() *session {
	chart := presenter.NewChart()

	p := profile.New(s.cfg.Sampler, chart)
	if s.cfg.MinPointCount > 0 {
		p.MinPointCount = s.cfg.MinPointCount
	}
	if s.cfg.Planar {
		p.UsePlanar()
	}

	sess := &session{
		id:      uuid.New(),
		profile: p,
		chart:   chart,
	}
	sess.touch(time.Now())
	p.Logger = s.logger.With(slog.String("session", sess.id.String()))

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess
}

func (s *Server) session(id uuid.UUID) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) removeSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// expireLoop drops idle sessions until the context is done.
func (s *Server) expireLoop(ctx context.Context) {
	ticker := time.NewTicker(max(s.cfg.SessionTTL/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.expireSessions(now)
		}
	}
}

// expireSessions removes the sessions unused for longer than the TTL
// and returns how many were removed.
func (s *Server) expireSessions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.cfg.SessionTTL {
			delete(s.sessions, id)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Info("expired idle sessions",
			slog.Int("expired", expired),
			slog.Int("remaining", len(s.sessions)))
	}

	return expired
}

// SessionCount is the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
