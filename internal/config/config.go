package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/butecodosdevs/buteco-core/pkg/database"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

// Config holds every setting the services read at startup.
type Config struct {
	HTTP     HTTPConfig       `yaml:"http"`
	Database database.Config  `yaml:"database"`
	Log      utilities.Config `yaml:"log"`
	Auth     AuthConfig       `yaml:"auth"`
	Balance  BalanceConfig    `yaml:"balance"`
}

// HTTPConfig holds listener and request-shaping settings.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// AuthConfig holds the shared secret for service bearer tokens. Empty disables the guard.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// BalanceConfig points the farm service at the balance API.
type BalanceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when neither file nor env say otherwise.
func Default(port int) Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            port,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: database.DefaultConfig(),
		Auth:     AuthConfig{Issuer: "buteco-core"},
		Balance: BalanceConfig{
			URL:     "http://localhost:5011",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads an optional .env, then the YAML file at path (missing is fine),
// then applies environment overrides.
func Load(path string, defaultPort int) (*Config, error) {
	// best-effort: no .env is the normal case in containers
	_ = godotenv.Load()

	cfg := Default(defaultPort)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Database.ApplyEnv()
	c.Log.ApplyEnv()

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.HTTP.Port = p
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.HTTP.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.HTTP.RateLimitBurst = b
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("BALANCE_API_URL"); v != "" {
		c.Balance.URL = v
	}
	return nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.HTTP.Port)
}
