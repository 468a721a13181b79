package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string

	JWTSecret string
	TokenTTL  time.Duration
	SignupTTL time.Duration

	SendGridKey  string
	MailFrom     string
	MediaBucket  string
	MediaBaseURL string
}

func Load() Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getenv("MONGO_DB", "freshkart"),
		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		ServiceName:  getenv("SERVICE_NAME", "freshkart-api"),

		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getdur("TOKEN_TTL", time.Hour),
		SignupTTL: getdur("SIGNUP_TTL", 5*time.Minute),

		SendGridKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@freshkart.dev"),
		MediaBucket:  getenv("MEDIA_BUCKET", "freshkart-media"),
		MediaBaseURL: getenv("MEDIA_BASE_URL", "https://storage.googleapis.com"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
