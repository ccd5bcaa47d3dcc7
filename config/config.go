package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port       string
	DBUrl      string
	JWTSecret  string
	RedisAddr  string
	RedisPass  string
	CORSOrigin string
	RateLimit  int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found. Using environment variables.")
	}

	cfg := Config{
		Port:       os.Getenv("PORT"),
		DBUrl:      os.Getenv("DB_URL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		CORSOrigin: os.Getenv("CORS_ORIGIN"),
		RateLimit:  100,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid RATE_LIMIT value: %v", err)
		}
		cfg.RateLimit = limit
	}
	return cfg
}
