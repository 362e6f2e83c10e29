// Package config loads process configuration from .env files and the environment.
package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	AppEnv        string
	DatabaseURL   string
	SessionSecret string
	SiteURL       string

	LogLevel  string
	LogFormat string

	RedisAddr       string
	SearchCacheTTL  time.Duration
	SearchCacheSize int

	TMDBAPIKey    string
	TMDBBaseURL   string
	DeezerBaseURL string
	RAWGAPIKey    string
	RAWGBaseURL   string

	CounterQueueSize int
}

const defaultSessionSecret = "secret_key_change_me"

// Development reports whether the process runs outside production.
func (c *Config) Development() bool {
	return c.AppEnv != "prod" && c.AppEnv != "production"
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.Development() {
		return nil
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=topmeup port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SEARCH_CACHE_TTL", "10m")
	v.SetDefault("SEARCH_CACHE_SIZE", 500)
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("DEEZER_BASE_URL", "https://api.deezer.com")
	v.SetDefault("RAWG_BASE_URL", "https://api.rawg.io/api")
	v.SetDefault("COUNTER_QUEUE_SIZE", 1000)
}

// Load reads .env (if any) and the environment into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:             v.GetString("PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		SessionSecret:    v.GetString("SESSION_SECRET"),
		SiteURL:          strings.TrimSuffix(v.GetString("SITE_URL"), "/"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		SearchCacheTTL:   v.GetDuration("SEARCH_CACHE_TTL"),
		SearchCacheSize:  v.GetInt("SEARCH_CACHE_SIZE"),
		TMDBAPIKey:       v.GetString("TMDB_API_KEY"),
		TMDBBaseURL:      v.GetString("TMDB_BASE_URL"),
		DeezerBaseURL:    v.GetString("DEEZER_BASE_URL"),
		RAWGAPIKey:       v.GetString("RAWG_API_KEY"),
		RAWGBaseURL:      v.GetString("RAWG_BASE_URL"),
		CounterQueueSize: v.GetInt("COUNTER_QUEUE_SIZE"),
	}
}
