package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL    string
	DatabaseDriver string
	Seed           bool

	JWTSecret []byte
	AccessTTL time.Duration

	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	WatchGrace   time.Duration
	LogoPath     string
	CookieSecure bool
}

// Load reads the optional .env file at path (empty means ".env") and then
// the process environment.
func Load(path string) Config {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("notice: %s not loaded: %v. Using system environment variables", path, err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "amilimetros"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:    EnvDefault("DATABASE_URL", "amilimetros.db"),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		Seed:           EnvBoolDefault("SEED_DEMO_DATA", true),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		AccessTTL: EnvDurationDefault("ACCESS_TOKEN_TTL", 7*24*time.Hour),

		SessionBackend: EnvDefault("SESSION_BACKEND", "db"),
		RedisAddr:      EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "product"),

		WatchGrace:   EnvDurationDefault("WATCH_GRACE", 5*time.Second),
		LogoPath:     os.Getenv("LOGO_PATH"),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", true),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
