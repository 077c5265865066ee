package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// JWTSecret enables bearer auth on the diary and memo routes when non-empty.
	JWTSecret string

	Weather WeatherConfig

	WeatherFetchCron                 string
	Location                         *time.Location
	RequireCachedWeatherForPastDates bool

	LogLevel slog.Level
}

type WeatherConfig struct {
	APIKey   string
	Endpoint string
	City     string
	Units    string
	Timeout  time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		Weather: WeatherConfig{
			APIKey:   strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY")),
			Endpoint: getenv("OPENWEATHER_ENDPOINT", "https://api.openweathermap.org/data/2.5/weather"),
			City:     getenv("OPENWEATHER_CITY", "seoul"),
			Units:    strings.TrimSpace(os.Getenv("OPENWEATHER_UNITS")),
		},
		WeatherFetchCron:                 getenv("WEATHER_FETCH_CRON", "0 1 * * *"),
		RequireCachedWeatherForPastDates: getenv("REQUIRE_CACHED_WEATHER_FOR_PAST_DATES", "false") == "true",
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("missing env: DATABASE_URL")
	}
	if cfg.Weather.APIKey == "" {
		return Config{}, fmt.Errorf("missing env: OPENWEATHER_API_KEY")
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	timeout, err := time.ParseDuration(getenv("OPENWEATHER_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid OPENWEATHER_TIMEOUT: %q", os.Getenv("OPENWEATHER_TIMEOUT"))
	}
	cfg.Weather.Timeout = timeout

	loc, err := time.LoadLocation(getenv("TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
