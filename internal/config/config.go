// Package config 汇总服务配置：默认值 < config.json < 环境变量 < 命令行参数。
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Addr        string   `json:"addr"`
	Data        []string `json:"data"` // 数据集文件，按顺序加载
	Web         string   `json:"web"`  // 静态前端目录，可空
	LogLevel    string   `json:"log_level"`
	Pretty      bool     `json:"log_pretty"`
	TopK        int      `json:"top_k"`
	LoadWorkers int      `json:"load_workers"`
	OpenBrowser bool     `json:"open_browser"` // 启动后打开默认浏览器
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		LogLevel:    "info",
		TopK:        3,
		LoadWorkers: 4,
	}
}

// FindConfigPath 在 dir 及其上一级查找 config.json。
func FindConfigPath(dir string) (string, error) {
	paths := []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "..", "config.json"),
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("config.json not found from %s", dir)
}

// LoadFile 把 JSON 文件叠加到 c 上，文件里没写的字段保持原值。
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv 用 XIANGQI_* 环境变量覆盖配置。
func (c *Config) ApplyEnv(getenv func(string) string) error {
	c.Addr = envString(getenv, "XIANGQI_ADDR", c.Addr)
	c.Web = envString(getenv, "XIANGQI_WEB", c.Web)
	c.LogLevel = envString(getenv, "XIANGQI_LOG_LEVEL", c.LogLevel)
	c.Pretty = envBool(getenv, "XIANGQI_LOG_PRETTY", c.Pretty)
	c.OpenBrowser = envBool(getenv, "XIANGQI_OPEN_BROWSER", c.OpenBrowser)
	if v := getenv("XIANGQI_DATA"); v != "" {
		c.Data = splitList(v)
	}
	if v := getenv("XIANGQI_TOP_K"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("XIANGQI_TOP_K: %w", err)
		}
		c.TopK = n
	}
	return nil
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v := getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.LoadWorkers <= 0 {
		return fmt.Errorf("load_workers must be positive, got %d", c.LoadWorkers)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Load 解析命令行参数并合并各来源的配置。
// 未指定 -config 时在当前目录及上一级查找 config.json，找不到不算错误。
func Load(name string, args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "config.json path (default: search cwd and parent)")
	addr := fs.String("addr", "", "listen address")
	data := fs.String("data", "", "comma-separated dataset files (.json, .json.zst, .parquet)")
	web := fs.String("web", "", "static frontend directory")
	level := fs.String("log-level", "", "log level (debug, info, warn, error)")
	pretty := fs.Bool("log-pretty", false, "human-readable console logs")
	topK := fs.Int("top-k", 0, "default number of suggestions")
	workers := fs.Int("load-workers", 0, "dataset files read in parallel")
	open := fs.Bool("open", false, "open the default browser after start")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	path := *configPath
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path, _ = FindConfigPath(cwd)
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}

	// 只有显式给出的参数才覆盖
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "data":
			cfg.Data = splitList(*data)
		case "web":
			cfg.Web = *web
		case "log-level":
			cfg.LogLevel = *level
		case "log-pretty":
			cfg.Pretty = *pretty
		case "top-k":
			cfg.TopK = *topK
		case "load-workers":
			cfg.LoadWorkers = *workers
		case "open":
			cfg.OpenBrowser = *open
		}
	})
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger 按配置构造 zerolog；Pretty 时输出带颜色的控制台格式。
func (c Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
