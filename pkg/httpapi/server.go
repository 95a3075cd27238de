// Package httpapi serves the HTTP surface spec.md §6 and SPEC_FULL §13
// describe: the master and variant HLS playlists, a schedule inspector
// (REST and websocket push), and a health check — all read-only views
// over the single process-lifetime Playlist (spec §5).
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aminofox/loopcast/pkg/logger"
	"github.com/aminofox/loopcast/pkg/playout"
	"github.com/aminofox/loopcast/pkg/security"
	"github.com/aminofox/loopcast/pkg/servecache"
)

// Config configures the HTTP surface (spec §6.3).
type Config struct {
	BindAddress  string
	Base         string
	MediaBase    string
	Speed        int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TLS, when non-nil, terminates TLS with an ACME-issued certificate
	// instead of serving plaintext (spec §6.3's optional tls.domain).
	TLS *TLSConfig
}

// TLSConfig names the domain an ACME certificate is issued for and
// where issued certificates are cached across restarts.
type TLSConfig struct {
	Domain   string
	CacheDir string
}

// DefaultConfig mirrors the teacher's zero-value-safe defaults.
func DefaultConfig() Config {
	return Config{
		BindAddress:  ":8080",
		Speed:        1,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is loopcast's HTTP surface: a thin routing and caching layer in
// front of a read-only *playout.Playlist.
type Server struct {
	config   Config
	playlist *playout.Playlist
	cache    servecache.Cache
	cacheTTL time.Duration
	logger   logger.Logger
	hub      *scheduleHub

	httpServer *http.Server
}

// NewServer constructs a Server bound to one playlist. cache may be nil,
// in which case variant rendering is never cached.
func NewServer(cfg Config, playlist *playout.Playlist, cache servecache.Cache, cacheTTL time.Duration, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefaultLogger(logger.InfoLevel, "text")
	}
	return &Server{
		config:   cfg,
		playlist: playlist,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
		hub:      newScheduleHub(playlist, log),
	}
}

// Start registers routes and blocks serving HTTP until Shutdown is
// called or ListenAndServe fails for a reason other than a clean close.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         s.config.BindAddress,
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.run()

	if s.config.TLS != nil {
		tlsMgr := security.NewTLSManager(s.config.TLS.Domain, s.config.TLS.CacheDir)
		s.httpServer.TLSConfig = tlsMgr.TLSConfig()

		go func() {
			s.logger.Info("httpapi: serving ACME HTTP-01 challenges on :80")
			if err := http.ListenAndServe(":80", tlsMgr.HTTPHandler(nil)); err != nil {
				s.logger.Error("httpapi: ACME challenge listener failed", logger.Err(err))
			}
		}()

		s.logger.Info("httpapi: listening with TLS",
			logger.String("addr", s.config.BindAddress), logger.String("domain", s.config.TLS.Domain))
		if err := s.httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("httpapi: listen: %w", err)
		}
		return nil
	}

	s.logger.Info("httpapi: listening", logger.String("addr", s.config.BindAddress))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests before closing the
// listener, unlike the teacher's cmd/zenlive-server/main.go, whose
// shutdown context was built but never actually passed to anything.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", chain(s.handleHealthz, s.requestIDMiddleware))
	mux.HandleFunc("/hls/index.m3u8", chain(s.handleMaster, s.requestIDMiddleware, s.recoverMiddleware))
	mux.HandleFunc("/hls/", chain(s.handleVariant, s.requestIDMiddleware, s.recoverMiddleware))
	mux.HandleFunc("/schedule", chain(s.handleSchedule, s.requestIDMiddleware, s.recoverMiddleware))
	mux.HandleFunc("/schedule/ws", chain(s.handleScheduleWS, s.requestIDMiddleware, s.recoverMiddleware))
	mux.HandleFunc("/inspect", chain(s.handleInspect, s.requestIDMiddleware, s.recoverMiddleware))
}

// chain composes middleware around a terminal handler, applying them in
// the order listed — the first middleware given is the outermost layer —
// the same convention the teacher's pkg/api/server.go chain helper uses.
func chain(h http.HandlerFunc, middleware ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
