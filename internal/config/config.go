package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address         string `yaml:"address"`
		ReadTimeoutSec  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSec int    `yaml:"write_timeout_seconds"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // sqlite | memory
		Path   string `yaml:"path"`
		Seed   bool   `yaml:"seed"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		Store        string `yaml:"store"` // memory | redis
		TTLMinutes   int    `yaml:"ttl_minutes"`
		CookieName   string `yaml:"cookie_name"`
		SecureCookie bool   `yaml:"secure_cookie"`
	} `yaml:"session"`

	Auth struct {
		Accounts       []Account `yaml:"accounts"`
		LoginPerMinute int       `yaml:"login_per_minute"`
		LoginBurst     int       `yaml:"login_burst"`
	} `yaml:"auth"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup BackupConfig `yaml:"backup"`

	Export struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
		Path     string `yaml:"path"`
	} `yaml:"export"`

	Reminders struct {
		Enabled         bool `yaml:"enabled"`
		IntervalMinutes int  `yaml:"interval_minutes"`
		LeadHours       int  `yaml:"lead_hours"`
	} `yaml:"reminders"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"logging"`

	AreasConfigPath string `yaml:"areas_config_path"`
}

// Account is a login account; PasswordHash is a bcrypt hash. ID keys every
// record the account owns and defaults to the account's position in the list.
type Account struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`
	Avatar       string `yaml:"avatar"`
	Unit         string `yaml:"unit"`
	Block        string `yaml:"block"`
	Phone        string `yaml:"phone"`
	Bio          string `yaml:"bio"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Database.Driver == "sqlite" {
		if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/condoflow.db"
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "condoflow_session"
	}
	if c.Auth.LoginPerMinute <= 0 {
		c.Auth.LoginPerMinute = 10
	}
	if c.Auth.LoginBurst <= 0 {
		c.Auth.LoginBurst = 5
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "0 3 * * *"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Export.Schedule == "" {
		c.Export.Schedule = "0 6 1 * *"
	}
	if c.Export.Path == "" {
		c.Export.Path = "exports"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.AreasConfigPath == "" {
		c.AreasConfigPath = "configs/areas.yaml"
	}
}

func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) ReadTimeout() time.Duration {
	if c.Server.ReadTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Server.ReadTimeoutSec) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	if c.Server.WriteTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Server.WriteTimeoutSec) * time.Second
}

func (c *Config) ReminderInterval() time.Duration {
	if c.Reminders.IntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Reminders.IntervalMinutes) * time.Minute
}

func (c *Config) ReminderLead() time.Duration {
	if c.Reminders.LeadHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Reminders.LeadHours) * time.Hour
}
