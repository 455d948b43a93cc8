package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAuthorityBaseURL = "http://localhost:4200/api"
	defaultAuthorityTimeout = 10 * time.Second
	defaultCartdPort        = "8081"
	defaultSessionIdle      = 30 * time.Minute
)

// cartd（クライアント側）の設定
type Client struct {
	AuthorityBaseURL string        // AuthorityのベースURL（/api まで）
	AuthorityToken   string        // 任意。Bearerで送る
	AuthorityTimeout time.Duration // HTTPタイムアウト
	Port             string        // cartdのポート
	SessionIdle      time.Duration // 放置セッションの破棄まで（0で無効）

	GoEnv    string // dev/prod
	LogLevel string
}

// Authority（参照実装サーバー）の設定
type Authority struct {
	Port string

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string

	GoEnv    string
	LogLevel string
}

// LoadClient は環境変数（.envがあればそれも）から読む
func LoadClient() (Client, error) {
	if err := loadDotEnv(); err != nil {
		return Client{}, err
	}

	timeout, err := durationOr("AUTHORITY_TIMEOUT", defaultAuthorityTimeout)
	if err != nil {
		return Client{}, err
	}

	idle, err := durationOr("CART_SESSION_IDLE_TIMEOUT", defaultSessionIdle)
	if err != nil {
		return Client{}, err
	}

	cfg := Client{
		AuthorityBaseURL: getenv("AUTHORITY_BASE_URL", defaultAuthorityBaseURL),
		AuthorityToken:   strings.TrimSpace(os.Getenv("AUTHORITY_TOKEN")),
		AuthorityTimeout: timeout,
		Port:             getenv("CARTD_PORT", defaultCartdPort),
		SessionIdle:      idle,
		GoEnv:            getenv("GO_ENV", "dev"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}

	if !strings.HasPrefix(cfg.AuthorityBaseURL, "http://") && !strings.HasPrefix(cfg.AuthorityBaseURL, "https://") {
		return Client{}, fmt.Errorf("AUTHORITY_BASE_URL must be http(s) url: %q", cfg.AuthorityBaseURL)
	}
	if cfg.AuthorityTimeout <= 0 {
		return Client{}, fmt.Errorf("AUTHORITY_TIMEOUT must be positive")
	}

	return cfg, nil
}

// LoadAuthority は環境変数（.envがあればそれも）から読む
func LoadAuthority() (Authority, error) {
	if err := loadDotEnv(); err != nil {
		return Authority{}, err
	}

	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Authority{}, err
	}

	cfg := Authority{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Authority{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Authority{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// DATABASE_URL が無ければ POSTGRES_* から組み立てる
func (a Authority) DSN() string {
	if a.DatabaseURL != "" {
		return a.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		a.PostgresHost, a.PostgresPort, a.PostgresUser, a.PostgresPassword, a.PostgresDB, a.PostgresSSLMode,
	)
}

func (a Authority) Addr() string {
	if strings.HasPrefix(a.Port, ":") {
		return a.Port
	}
	return ":" + a.Port
}

func (c Client) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// .env が無いのはエラーにしない
func loadDotEnv() error {
	path := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
