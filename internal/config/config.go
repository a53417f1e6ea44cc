package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"escalator/internal/game"
)

// Config holds the service settings.
type Config struct {
	Addr            string
	DBPath          string
	WebDir          string // empty serves the embedded front end
	CleanupInterval time.Duration
	SessionMaxAge   time.Duration
	Scoring         game.Scoring
	PolicyScript    string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:            ":8080",
		DBPath:          "escalator.db",
		CleanupInterval: time.Minute,
		SessionMaxAge:   time.Hour,
		Scoring:         game.DefaultScoring,
	}
}

// Load reads a .env file from the working directory if there is one, then
// the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, starting from Default.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()

	if p := getenv("PORT"); p != "" {
		c.Addr = ":" + p
	}
	if a := getenv("ESCALATOR_ADDR"); a != "" {
		c.Addr = a
	}
	if p := getenv("DB_PATH"); p != "" {
		c.DBPath = p
	}
	c.WebDir = getenv("WEB_DIR")
	c.PolicyScript = getenv("POLICY_SCRIPT")

	var err error
	if c.CleanupInterval, err = duration(getenv, "CLEANUP_INTERVAL", c.CleanupInterval); err != nil {
		return Config{}, err
	}
	if c.SessionMaxAge, err = duration(getenv, "SESSION_MAX_AGE", c.SessionMaxAge); err != nil {
		return Config{}, err
	}
	if c.Scoring.WinBonus, err = integer(getenv, "WIN_BONUS", c.Scoring.WinBonus); err != nil {
		return Config{}, err
	}
	if c.Scoring.LossPenalty, err = integer(getenv, "LOSS_PENALTY", c.Scoring.LossPenalty); err != nil {
		return Config{}, err
	}
	return c, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func integer(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
