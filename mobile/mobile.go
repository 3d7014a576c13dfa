// Package mobile 给 gomobile bind 用：在 App 内嵌的 WebView 旁边起一个本地 HTTP 服务。
package mobile

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"xiangqi/internal/book"
	httpserver "xiangqi/internal/server/http"
	"xiangqi/internal/suggest"
)

var (
	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
)

// StartServer starts the local HTTP server in the background.
// webDir: physical path to the extracted web assets
// dataPaths: comma-separated dataset files, may be empty
// port: port to listen on, e.g. "2888"; "0" picks a free port
func StartServer(webDir string, dataPaths string, port string) error {
	mu.Lock()
	defer mu.Unlock()
	if srv != nil {
		return errors.New("server already running")
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Str("component", "mobile").Logger()

	var ix *book.Index
	if paths := splitPaths(dataPaths); len(paths) > 0 {
		loaded, _, err := book.Load(context.Background(), log, 2, paths...)
		if err != nil {
			log.Error().Err(err).Msg("dataset load failed")
		} else {
			ix = loaded
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:"+port)
	if err != nil {
		return err
	}
	s := &http.Server{
		Handler:           httpserver.NewRouter(log, suggest.New(ix), webDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv, listener = s, ln

	// 不能阻塞 Android UI 线程
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}()
	return nil
}

// Addr 返回实际监听地址；未启动时为空。
func Addr() string {
	mu.Lock()
	defer mu.Unlock()
	if listener == nil {
		return ""
	}
	return listener.Addr().String()
}

func StopServer() error {
	mu.Lock()
	s := srv
	srv, listener = nil, nil
	mu.Unlock()
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
