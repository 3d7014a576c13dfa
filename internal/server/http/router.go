package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"xiangqi/internal/suggest"
)

// NewRouter 组装全部路由和中间件。webDir 为空时不挂静态前端。
func NewRouter(log zerolog.Logger, eng *suggest.Engine, webDir string) http.Handler {
	h := NewHandler(eng, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/api/", h)
	if webDir != "" {
		RegisterStaticRoutes(mux, webDir)
	}

	if eng.Available() {
		info := eng.Info()
		log.Info().Int("records", info.Records).Int("boards", info.Boards).Msg("suggestion engine ready")
	} else {
		log.Warn().Msg("frequency index unavailable - /api/ai/* will answer 503")
	}
	return CORS(RequestID(AccessLog(log, mux)))
}

// Server 是 http.Server 的薄封装，支持优雅关闭。
type Server struct {
	h   http.Handler
	log zerolog.Logger

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

func NewServer(h http.Handler, log zerolog.Logger) *Server {
	return &Server{h: h, log: log}
}

// Listen 阻塞直到服务器被 Close。
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.mu.Lock()
	if s.closed {
		// Close 先于 Listen 到达
		s.mu.Unlock()
		return nil
	}
	s.srv = srv
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.srv = nil
		s.mu.Unlock()
	}()

	s.log.Info().Str("addr", addr).Msg("HTTP listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close 关闭服务器；在 Listen 之前调用时，之后的 Listen 直接返回。
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
