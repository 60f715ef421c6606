// Package config reads the storefront's runtime settings from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type Config struct {
	HTTPAddr string
	DevLog   bool

	CatalogURL       string
	CatalogTimeout   time.Duration
	CatalogListLimit int
	CatalogListSkip  int
	SearchDebounce   time.Duration

	StorageBackend string
	StorageDir     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string

	DatabaseURL string

	AuthProvider            string
	JWTSecret               string
	ResetURL                string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseAPIKey          string
	AuthRateLimitPerMin     int

	SendGridAPIKey string
	MailFrom       string
	ContactTo      string

	MetricsToken string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func boolenv(key string, def bool) bool {
	b, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		DevLog:   boolenv("LOG_DEV", false),

		CatalogURL:       getenv("CATALOG_URL", "https://dummyjson.com"),
		CatalogTimeout:   durenvms("CATALOG_TIMEOUT_MS", 5000),
		CatalogListLimit: atoienv("CATALOG_LIST_LIMIT", 120),
		CatalogListSkip:  atoienv("CATALOG_LIST_SKIP", 10),
		SearchDebounce:   durenvms("SEARCH_DEBOUNCE_MS", 500),

		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", StorageFile)),
		StorageDir:     getenv("STORAGE_DIR", "./data"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		RedisDB:        atoienv("REDIS_DB", 0),
		RedisPrefix:    getenv("REDIS_PREFIX", "storefront:"),

		DatabaseURL: getenv("DATABASE_URL", ""),

		AuthProvider:            strings.ToLower(getenv("AUTH_PROVIDER", AuthLocal)),
		JWTSecret:               getenv("JWT_SECRET", "dev-secret"),
		ResetURL:                getenv("RESET_URL", "http://localhost:8080/reset-password"),
		FirebaseProjectID:       getenv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseAPIKey:          getenv("FIREBASE_API_KEY", ""),
		AuthRateLimitPerMin:     atoienv("AUTH_RATE_LIMIT_PER_MIN", 10),

		SendGridAPIKey: getenv("SENDGRID_API_KEY", ""),
		MailFrom:       getenv("MAIL_FROM", ""),
		ContactTo:      getenv("CONTACT_TO", ""),

		MetricsToken: getenv("METRICS_TOKEN", ""),
	}
}

// Validate rejects combinations main cannot wire.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.AuthProvider {
	case AuthLocal:
	case AuthFirebase:
		if c.FirebaseAPIKey == "" {
			return fmt.Errorf("config: FIREBASE_API_KEY is required with AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("config: unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.CatalogListLimit < 0 || c.CatalogListSkip < 0 {
		return fmt.Errorf("config: catalog paging must not be negative")
	}
	return nil
}
