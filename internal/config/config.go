package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultPort = 4001

type Config struct {
	Port         int
	KafkaBrokers []string
	KafkaTopic   string
	Debug        bool
}

func Load() *Config {
	// Missing .env is fine, env vars alone are enough.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:       defaultPort,
		KafkaTopic: getEnv("KAFKA_TOPIC", "order_events"),
	}

	if raw, ok := os.LookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(raw); err == nil && port > 0 {
			cfg.Port = port
		}
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if debug, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil {
		cfg.Debug = debug
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
