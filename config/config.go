// Package config loads the service configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

const (
	ModeRender   = "render"
	ModeRedirect = "redirect"
)

type Config struct {
	HTTP struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Models struct {
		Dir       string `yaml:"dir"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"models"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log       Log       `yaml:"log"`
	Templates Templates `yaml:"templates"`
	Routes    []Route   `yaml:"routes"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Templates struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Route mounts one model family under Prefix.
type Route struct {
	Task        string `yaml:"task"`
	Prefix      string `yaml:"prefix"`
	Mode        string `yaml:"mode"`
	RedirectURL string `yaml:"redirect_url"`
	Template    string `yaml:"template"`
}

var defaultTemplates = map[string]string{
	"regression":     "hdb.html",
	"anomaly":        "fillbird.html",
	"classification": "mushroom.html",
}

// Default mirrors the combined deployment: each family redirects to its
// own hosted front end.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = 5000
	cfg.HTTP.Timeout = 30 * time.Second
	cfg.HTTP.MaxBodyBytes = 1 << 20
	cfg.Models.Dir = "models"
	cfg.Log.Level = "info"
	cfg.Routes = []Route{
		{Task: "regression", Prefix: "/hdb", Mode: ModeRedirect, RedirectURL: "https://combined-1-z6te.onrender.com"},
		{Task: "anomaly", Prefix: "", Mode: ModeRedirect, RedirectURL: "https://fillbird.onrender.com/"},
		{Task: "classification", Prefix: "/mushroom", Mode: ModeRedirect, RedirectURL: "https://mushrooms-1.onrender.com"},
	}
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("MODELS_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	return nil
}

func (c *Config) fillDefaults() {
	for i := range c.Routes {
		r := &c.Routes[i]
		if r.Mode == "" {
			r.Mode = ModeRender
		}
		if r.Template == "" {
			r.Template = defaultTemplates[r.Task]
		}
	}
}

func (c *Config) Validate() error {
	var errs error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.HTTP.Timeout < 0 {
		errs = multierr.Append(errs, errors.New("http.timeout must not be negative"))
	}
	if c.Models.Dir == "" {
		errs = multierr.Append(errs, errors.New("models.dir is required"))
	}
	if c.Models.CacheSize < 0 {
		errs = multierr.Append(errs, errors.New("models.cache_size must not be negative"))
	}
	if len(c.Routes) == 0 {
		errs = multierr.Append(errs, errors.New("at least one route is required"))
	}
	prefixes := make(map[string]bool, len(c.Routes))
	for i, r := range c.Routes {
		if err := r.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("routes[%d]: %w", i, err))
		}
		if prefixes[r.Prefix] {
			errs = multierr.Append(errs, fmt.Errorf("routes[%d]: prefix %q already mounted", i, r.Prefix))
		}
		prefixes[r.Prefix] = true
	}
	return errs
}

func (r Route) validate() error {
	if _, ok := defaultTemplates[r.Task]; !ok {
		return fmt.Errorf("unknown task %q", r.Task)
	}
	if r.Prefix != "" && (!strings.HasPrefix(r.Prefix, "/") || strings.HasSuffix(r.Prefix, "/")) {
		return fmt.Errorf("prefix %q must start with / and must not end with /", r.Prefix)
	}
	switch r.Mode {
	case ModeRender:
		if r.Template == "" {
			return errors.New("render mode needs a template")
		}
	case ModeRedirect:
		u, err := url.Parse(r.RedirectURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("redirect_url %q must be an absolute URL", r.RedirectURL)
		}
	default:
		return fmt.Errorf("unknown mode %q", r.Mode)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}
