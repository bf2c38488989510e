package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	OffDay         time.Weekday
	DBMaxConns     int32
	DBMinConns     int32
	DBConnIdleTime time.Duration
}

func Load() (Config, error) {
	// .env values never override real environment variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:           8080,
		TokenTTL:       24 * time.Hour,
		OffDay:         time.Saturday,
		DBMaxConns:     20,
		DBMinConns:     2,
		DBConnIdleTime: 5 * time.Minute,
	}

	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", raw)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required (environment variable or .env)")
	}

	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL_HOURS: %q", raw)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if raw := strings.TrimSpace(os.Getenv("DB_MAX_CONNS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid DB_MAX_CONNS: %q", raw)
		}
		cfg.DBMaxConns = int32(n)
	}

	if raw := strings.TrimSpace(os.Getenv("DB_MIN_CONNS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid DB_MIN_CONNS: %q", raw)
		}
		cfg.DBMinConns = int32(n)
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}

	if raw := strings.TrimSpace(os.Getenv("OFF_DAY")); raw != "" {
		day, err := parseWeekday(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.OffDay = day
	}

	return cfg, nil
}

func parseWeekday(raw string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(raw, day.String()) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("invalid OFF_DAY: %q", raw)
}
