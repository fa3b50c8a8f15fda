// Package server is the dashboard backend: a read-only JSON API over the
// log, signal and journal readers, with short-lived caching per route.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/quantops/config"
	"github.com/rustyeddy/quantops/pkg/cache"
	"github.com/rustyeddy/quantops/pkg/id"
)

// Server serves the dashboard API.
type Server struct {
	cfg *config.Config
	log *zap.Logger
	loc *time.Location
	now func() time.Time
	mux *http.ServeMux

	logsCache    *cache.Cache[string, logsResponse]
	signalsCache *cache.Cache[string, signalsResponse]
	tradesCache  *cache.Cache[string, tradesResponse]
	assetsCache  *cache.Cache[string, assetsResponse]
}

// New builds the API for cfg. Every request is logged to log with its
// request id.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	loc, err := cfg.Logs.Location()
	if err != nil {
		return nil, fmt.Errorf("logs timezone: %w", err)
	}

	ttl := func(name string, d config.Duration) (time.Duration, error) {
		v, err := d.Parse()
		if err != nil {
			return 0, fmt.Errorf("cache ttl %s: %w", name, err)
		}
		return v, nil
	}
	logsTTL, err := ttl("logs", cfg.Server.Cache.Logs)
	if err != nil {
		return nil, err
	}
	signalsTTL, err := ttl("signals", cfg.Server.Cache.Signals)
	if err != nil {
		return nil, err
	}
	tradesTTL, err := ttl("trades", cfg.Server.Cache.Trades)
	if err != nil {
		return nil, err
	}
	assetsTTL, err := ttl("assets", cfg.Server.Cache.Assets)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		log:          log,
		loc:          loc,
		now:          time.Now,
		mux:          http.NewServeMux(),
		logsCache:    cache.New[string, logsResponse](logsTTL),
		signalsCache: cache.New[string, signalsResponse](signalsTTL),
		tradesCache:  cache.New[string, tradesResponse](tradesTTL),
		assetsCache:  cache.New[string, assetsResponse](assetsTTL),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/logs", s.handleLogs)
	s.mux.HandleFunc("GET /api/logs/export", s.handleLogsExport)
	s.mux.HandleFunc("GET /api/signals", s.handleSignals)
	s.mux.HandleFunc("GET /api/trades", s.handleTrades)
	s.mux.HandleFunc("GET /api/assets", s.handleAssets)
	s.mux.HandleFunc("POST /api/cache/purge", s.handlePurge)

	return s, nil
}

type ctxKey struct{}

// requestLogger returns the request-scoped logger set by ServeHTTP.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l, ok := r.Context().Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return s.log
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	reqID := id.New()
	w.Header().Set("X-Request-Id", reqID)

	log := s.log.With(zap.String("request_id", reqID))
	r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, log))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	log.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
}

// Purge drops every cached result.
func (s *Server) Purge() {
	s.logsCache.Purge()
	s.signalsCache.Purge()
	s.tradesCache.Purge()
	s.assetsCache.Purge()
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
