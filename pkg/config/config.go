package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	// StoreDriver selects the persistence backend: postgres, sqlite or mongo.
	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AdminEmails      []string

	KafkaBrokers []string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int

	DBPingInterval time.Duration
	CookieSecure   bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		StoreDriver:   strings.ToLower(EnvDefault("STORE_DRIVER", "postgres")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: EnvDefault("MONGO_DATABASE", "storefront"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       EnvDurationDefault("REFRESH_TTL", 7*24*time.Hour),
		AdminEmails:      CSV(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ElasticURL:      os.Getenv("ES_URL"),
		ElasticUser:     os.Getenv("ES_USER"),
		ElasticPassword: os.Getenv("ES_PASSWORD"),
		ElasticIndex:    EnvDefault("ES_INDEX", "products"),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RateLimitPerMinute: EnvIntDefault("RATE_LIMIT_PER_MINUTE", 120),

		DBPingInterval: EnvDurationDefault("DB_PING_INTERVAL", 15*time.Second),
		CookieSecure:   EnvDefault("COOKIE_SECURE", "true") == "true",
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

// EnvDurationDefault accepts Go duration strings ("15m", "168h").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
