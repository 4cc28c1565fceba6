// Package config загружает настройки клиента и сервера: TOML файл,
// затем переменные окружения WASTETRACK_*, затем флаги командной строки.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "WASTETRACK_"

// ErrInvalidConfig is wrapped by every validation error
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Client holds the terminal client settings.
type Client struct {
	ServerURL    string   `toml:"server_url"`
	DBPath       string   `toml:"db_path"`
	LogLevel     string   `toml:"log_level"`
	CallTimeout  Duration `toml:"call_timeout"`
	ProbeTimeout Duration `toml:"probe_timeout"`
}

// Server holds the reference backend settings.
type Server struct {
	Address         string   `toml:"address"`
	DBPath          string   `toml:"db_path"`
	LogLevel        string   `toml:"log_level"`
	JWTSecret       string   `toml:"jwt_secret"`
	AccessTokenTTL  Duration `toml:"access_token_ttl"`
	RefreshTokenTTL Duration `toml:"refresh_token_ttl"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	RateLimit       float64  `toml:"rate_limit"`
	RateBurst       int      `toml:"rate_burst"`
}

// DefaultClient returns the client defaults
func DefaultClient() Client {
	return Client{
		ServerURL:    "http://localhost:8080",
		DBPath:       "wastetrack-client.db",
		LogLevel:     "warn",
		CallTimeout:  Duration{20 * time.Second},
		ProbeTimeout: Duration{3 * time.Second},
	}
}

// DefaultServer returns the server defaults
func DefaultServer() Server {
	return Server{
		Address:         ":8080",
		DBPath:          "wastetrack-server.db",
		LogLevel:        "info",
		AccessTokenTTL:  Duration{15 * time.Minute},
		RefreshTokenTTL: Duration{30 * 24 * time.Hour},
		ShutdownTimeout: Duration{10 * time.Second},
		RateLimit:       20,
		RateBurst:       40,
	}
}

// LoadClient reads the client config. An empty path means defaults plus env.
func LoadClient(fs afero.Fs, path string) (*Client, error) {
	cfg := DefaultClient()
	if err := decodeFile(fs, path, &cfg); err != nil {
		return nil, err
	}

	err := applyEnv(
		envString("SERVER_URL", &cfg.ServerURL),
		envString("DB_PATH", &cfg.DBPath),
		envString("LOG_LEVEL", &cfg.LogLevel),
		envDuration("CALL_TIMEOUT", &cfg.CallTimeout),
		envDuration("PROBE_TIMEOUT", &cfg.ProbeTimeout),
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer reads the server config. An empty path means defaults plus env.
func LoadServer(fs afero.Fs, path string) (*Server, error) {
	cfg := DefaultServer()
	if err := decodeFile(fs, path, &cfg); err != nil {
		return nil, err
	}

	err := applyEnv(
		envString("ADDRESS", &cfg.Address),
		envString("DB_PATH", &cfg.DBPath),
		envString("LOG_LEVEL", &cfg.LogLevel),
		envString("JWT_SECRET", &cfg.JWTSecret),
		envDuration("ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL),
		envDuration("REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL),
		envDuration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout),
		envFloat("RATE_LIMIT", &cfg.RateLimit),
		envInt("RATE_BURST", &cfg.RateBurst),
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the client settings
func (c *Client) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, fmt.Errorf("%w: server_url is required", ErrInvalidConfig))
	}
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("%w: db_path is required", ErrInvalidConfig))
	}
	if c.CallTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: call_timeout must be positive", ErrInvalidConfig))
	}
	if c.ProbeTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: probe_timeout must be positive", ErrInvalidConfig))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the server settings
func (s *Server) Validate() error {
	var errs []error
	if s.Address == "" {
		errs = append(errs, fmt.Errorf("%w: address is required", ErrInvalidConfig))
	}
	if s.DBPath == "" {
		errs = append(errs, fmt.Errorf("%w: db_path is required", ErrInvalidConfig))
	}
	if len(s.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("%w: jwt_secret must be at least 32 bytes", ErrInvalidConfig))
	}
	if s.AccessTokenTTL.Duration <= 0 || s.RefreshTokenTTL.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig))
	}
	if s.RateLimit <= 0 || s.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("%w: rate_limit and rate_burst must be positive", ErrInvalidConfig))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel converts debug/info/warn/error into a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, s)
	}
	return level, nil
}

// decodeFile читает TOML через afero; неизвестные ключи считаются ошибкой
func decodeFile(fs afero.Fs, path string, dst any) error {
	if path == "" {
		return nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(dst); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

type envFunc func() error

func applyEnv(fns ...envFunc) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func envString(name string, dst *string) envFunc {
	return func() error {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
		return nil
	}
}

func envDuration(name string, dst *Duration) envFunc {
	return func() error {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
		}
		return nil
	}
}

func envFloat(name string, dst *float64) envFunc {
	return func() error {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = f
		return nil
	}
}

func envInt(name string, dst *int) envFunc {
	return func() error {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
}
