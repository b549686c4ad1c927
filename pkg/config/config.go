package config

import (
	"time"

	"github.com/jonborges/menu4you/pkg/global"
)

type Config struct {
	Port string
	Env  string

	APIURL     string
	APIRetries int
	APIBackoff time.Duration
	APITimeout time.Duration

	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	StorageNamespace string

	FallbackBackend string
	MongoURI        string
	MongoDatabase   string

	RabbitMQURL   string
	RabbitMQQueue string

	ToastDuration time.Duration
	ToastMax      int

	CORSOrigins []string
}

const (
	FallbackRedis = "redis"
	FallbackMongo = "mongo"
)

func LoadConfig() *Config {
	return &Config{
		Port:             global.GetEnvOrDefault("PORT", "8000"),
		Env:              global.GetEnvOrDefault("ENV", "development"),
		APIURL:           global.GetEnvOrDefault("API_URL", "http://localhost:8080"),
		APIRetries:       global.GetEnvAsInt("API_RETRIES", 2),
		APIBackoff:       time.Duration(global.GetEnvAsInt("API_BACKOFF_MS", 300)) * time.Millisecond,
		APITimeout:       global.GetEnvAsDuration("API_TIMEOUT", 10*time.Second),
		RedisAddress:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:    global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:          global.GetEnvAsInt("REDIS_DB", 0),
		StorageNamespace: global.GetEnvOrDefault("STORAGE_NAMESPACE", "menu4you"),
		FallbackBackend:  global.GetEnvOrDefault("FALLBACK_BACKEND", FallbackRedis),
		MongoURI:         global.GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase:    global.GetEnvOrDefault("MONGODB_DATABASE", "menu4you"),
		RabbitMQURL:      global.GetEnvOrDefault("RABBITMQ_URL", ""),
		RabbitMQQueue:    global.GetEnvOrDefault("RABBITMQ_QUEUE", "menu4you_events"),
		ToastDuration:    global.GetEnvAsDuration("TOAST_DURATION", 2*time.Second),
		ToastMax:         global.GetEnvAsInt("TOAST_MAX", 5),
		CORSOrigins: global.GetEnvAsList("CORS_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}
}

// IsProduction selects gin release mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
