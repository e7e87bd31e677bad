package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServerURL       string
	Agent           string
	HTTPTimeout     time.Duration
	DataDir         string
	DBPath          string
	TokenPath       string
	LogPath         string
	LogLevel        string
	AgentsTTL       time.Duration
	TranscriptLimit int
	IngestWorkers   int
	HealthInterval  time.Duration
}

func Default() Config {
	dataDir := filepath.Join(userConfigDir(), "parley")
	cfg := Config{
		ServerURL:       "http://localhost:8000",
		Agent:           "comercial",
		HTTPTimeout:     90 * time.Second,
		DataDir:         dataDir,
		LogLevel:        "info",
		AgentsTTL:       1 * time.Hour,
		TranscriptLimit: 200,
		IngestWorkers:   4,
		HealthInterval:  30 * time.Second,
	}
	cfg.derivePaths()
	return cfg
}

// fileConfig is the on-disk TOML schema. Only a subset of Config is
// file-configurable; the rest keeps its defaults.
type fileConfig struct {
	Server  serverSection  `toml:"server"`
	Storage storageSection `toml:"storage"`
	Logging loggingSection `toml:"logging"`
}

type serverSection struct {
	URL            string `toml:"url"`
	Agent          string `toml:"agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type storageSection struct {
	DataDir string `toml:"data_dir"`
}

type loggingSection struct {
	Level string `toml:"level"`
}

type envOverrides struct {
	ServerURL string `env:"PARLEY_SERVER_URL"`
	Agent     string `env:"PARLEY_AGENT"`
	LogLevel  string `env:"PARLEY_LOG_LEVEL"`
}

// Load builds the effective configuration: defaults, then the TOML file,
// then environment overrides. An empty path means the default location,
// which is allowed to not exist; an explicit path must.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.toml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if _, err := toml.Decode(expandEnvVars(string(data)), &fc); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.applyFile(fc)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file; defaults apply
	default:
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process(context.Background(), &env); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if env.ServerURL != "" {
		cfg.ServerURL = env.ServerURL
	}
	if env.Agent != "" {
		cfg.Agent = env.Agent
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(fc fileConfig) {
	if fc.Server.URL != "" {
		c.ServerURL = fc.Server.URL
	}
	if fc.Server.Agent != "" {
		c.Agent = fc.Server.Agent
	}
	if fc.Server.TimeoutSeconds > 0 {
		c.HTTPTimeout = time.Duration(fc.Server.TimeoutSeconds) * time.Second
	}
	if fc.Storage.DataDir != "" {
		c.DataDir = fc.Storage.DataDir
		c.derivePaths()
	}
	if fc.Logging.Level != "" {
		c.LogLevel = fc.Logging.Level
	}
}

func (c *Config) derivePaths() {
	c.DBPath = filepath.Join(c.DataDir, "parley.db")
	c.TokenPath = filepath.Join(c.DataDir, "token")
	c.LogPath = filepath.Join(c.DataDir, "debug.log")
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https scheme")
	}
	if c.Agent == "" {
		return fmt.Errorf("server.agent is required")
	}
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
