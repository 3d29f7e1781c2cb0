package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Secrets
	SecretsDir string

	// Watch
	WatchInterval time.Duration

	// Status server
	StatusAddr      string
	StatusRateLimit int // req/min/クライアント
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.APIBaseURL = strings.TrimRight(os.Getenv("LUXSUV_API_URL"), "/")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "LUXSUV_API_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.HTTPTimeout = getEnvDuration("LUXSUV_HTTP_TIMEOUT", 30*time.Second)
	cfg.SecretsDir = getEnvString("LUXSUV_SECRETS_DIR", defaultSecretsDir())
	cfg.WatchInterval = getEnvDuration("LUXSUV_WATCH_INTERVAL", 5*time.Minute)
	cfg.StatusAddr = getEnvString("LUXSUV_STATUS_ADDR", "127.0.0.1:9590")
	cfg.StatusRateLimit = getEnvInt("LUXSUV_STATUS_RATE_LIMIT", 120)

	return cfg, nil
}

// defaultSecretsDir はトークン保存先のデフォルトディレクトリを返す。
// ユーザー設定ディレクトリが解決できない環境ではカレントディレクトリ配下を使用する。
func defaultSecretsDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".luxsuv-driver"
	}
	return filepath.Join(base, "luxsuv-driver")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
