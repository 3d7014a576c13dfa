package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"xiangqi/internal/book"
	"xiangqi/internal/config"
	httpserver "xiangqi/internal/server/http"
	"xiangqi/internal/suggest"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	// 没有桌面环境时启动失败，忽略
	_ = cmd.Start()
}

func main() {
	cfg, err := config.Load("xiangqi-server", os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 数据集加载失败时照常启动，/api/ai/* 返回 503
	var ix *book.Index
	if len(cfg.Data) == 0 {
		log.Warn().Msg("no dataset configured (-data / XIANGQI_DATA)")
	} else if loaded, _, err := book.Load(ctx, log, cfg.LoadWorkers, cfg.Data...); err != nil {
		log.Error().Err(err).Msg("dataset load failed")
	} else {
		ix = loaded
	}

	eng := suggest.New(ix, suggest.WithTopK(cfg.TopK))
	srv := httpserver.NewServer(httpserver.NewRouter(log, eng, cfg.Web), log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	if cfg.OpenBrowser {
		// 延迟打开，等监听起来
		go func() {
			time.Sleep(100 * time.Millisecond)
			_, port, err := net.SplitHostPort(cfg.Addr)
			if err != nil {
				return
			}
			openBrowser("http://127.0.0.1:" + port + "/")
		}()
	}

	if ctx.Err() != nil {
		log.Info().Msg("interrupted before listening")
		return
	}
	if err := srv.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	log.Info().Msg("server stopped")
}
