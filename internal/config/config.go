package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL    string
	DatabaseSchema string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxLife  time.Duration

	// 起動時にDBへのPingを試行する回数
	DBConnectAttempts int

	// YooMoney
	YooMoneyWalletID  string
	YooMoneySecretKey string
	YooMoneyFormURL   string

	// Site
	SiteURL string

	// Server
	ServerPort     string
	RequestTimeout time.Duration
	MaxConnections int // 同時接続数の上限。0以下で無制限

	// Rate Limit
	RateLimitGeneral  int
	RateLimitPurchase int

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// ウォレットIDと秘密鍵は未設定でも起動できる。
	// 未設定の間、決済フォームは400、Webhookは署名不一致として扱われる。
	cfg.YooMoneyWalletID = os.Getenv("YOOMONEY_WALLET_ID")
	cfg.YooMoneySecretKey = os.Getenv("YOOMONEY_SECRET_KEY")

	// Optional fields with defaults
	cfg.DatabaseSchema = getEnvString("DATABASE_SCHEMA", "")
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLife = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	cfg.DBConnectAttempts = getEnvInt("DB_CONNECT_ATTEMPTS", 5)
	cfg.YooMoneyFormURL = getEnvString("YOOMONEY_FORM_URL", "https://yoomoney.ru/quickpay/confirm")
	cfg.SiteURL = strings.TrimRight(getEnvString("SITE_URL", "https://pulsebook.ru"), "/")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.MaxConnections = getEnvInt("SERVER_MAX_CONNECTIONS", 512)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPurchase = getEnvInt("RATE_LIMIT_PURCHASE", 10)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
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
