// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string  `yaml:"token"`
	Workers     int     `yaml:"workers"` // polling workers
	PollTimeout int     `yaml:"poll_timeout"`
	AdminIDs    []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"` // wins over the discrete fields when set
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MatchConfig struct {
	PoolSize      int           `yaml:"pool_size"`
	LeaveCooldown time.Duration `yaml:"leave_cooldown"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type BootstrapConfig struct {
	// AdminURL points at the maintenance database with a superuser; role and
	// database creation run over it.
	AdminURL          string `yaml:"admin_url"`
	Role              string `yaml:"role"`
	RolePassword      string `yaml:"role_password"`
	Database          string `yaml:"database"`
	DefaultPrivileges bool   `yaml:"default_privileges"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Match     MatchConfig     `yaml:"match"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file (optional: a missing file leaves defaults),
// then a .env file next to the binary, then the process environment. The
// environment always wins, so the containerized deployment can be driven by
// BOT_TOKEN / POSTGRES_* alone, as the runbook documents.
func LoadConfig(configPath string, dev bool) (*Config, error) {
	var cfg Config

	if b, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	applyEnv(&cfg)

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "telegram_bot"
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "bot_user"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Match.PoolSize <= 0 {
		cfg.Match.PoolSize = 10
	}
	if cfg.Match.LeaveCooldown <= 0 {
		cfg.Match.LeaveCooldown = time.Minute
	}
	if cfg.Match.SweepInterval <= 0 {
		cfg.Match.SweepInterval = 5 * time.Minute
	}
	if cfg.Bootstrap.Role == "" {
		cfg.Bootstrap.Role = cfg.Database.User
	}
	if cfg.Bootstrap.Database == "" {
		cfg.Bootstrap.Database = cfg.Database.Name
	}
	if cfg.Bootstrap.RolePassword == "" {
		cfg.Bootstrap.RolePassword = cfg.Database.Password
	}

	// Minimal validation. bot.token is deliberately NOT checked here: the
	// bootstrap tool must work without it, only cmd/app requires the token.
	if cfg.Match.PoolSize%2 != 0 {
		return nil, errors.New("match.pool_size must be even")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// applyEnv maps the documented environment variables over the file config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ADMIN_API_SECRET"); v != "" {
		cfg.Admin.JWTSecret = v
	}
}

// DSN returns database.url when set, otherwise composes one from the discrete
// fields with proper escaping.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.UserPassword(d.User, d.Password)
	return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=%s",
		u.String(), d.Host, d.Port, url.PathEscape(d.Name), d.SSLMode)
}

// AdminDSN returns the maintenance-database connection string for bootstrap.
// Falls back to the regular credentials against the "postgres" database.
func (c *Config) AdminDSN() string {
	if c.Bootstrap.AdminURL != "" {
		return c.Bootstrap.AdminURL
	}
	d := c.Database
	u := url.UserPassword(d.User, d.Password)
	return fmt.Sprintf("postgres://%s@%s:%d/postgres?sslmode=%s",
		u.String(), d.Host, d.Port, d.SSLMode)
}
