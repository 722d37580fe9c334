// Package config loads the server configuration once at startup.
//
// SOURCES, LOWEST TO HIGHEST PRECEDENCE:
//  1. Defaults (Default)
//  2. An optional YAML or JSON file (CONFIG_FILE)
//  3. A .env file in the working directory
//  4. The process environment
//
// The .env file is read into a map rather than exported into the process,
// so a real environment variable always beats a .env entry and loading
// config has no side effects on os.Environ.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// minSecretLength matches what auth.NewTokenService accepts.
const minSecretLength = 16

type Config struct {
	Port          int           `json:"port" yaml:"port"`
	DBPath        string        `json:"db_path" yaml:"db_path"`
	StaticDir     string        `json:"static_dir" yaml:"static_dir"`
	TemplateDir   string        `json:"template_dir" yaml:"template_dir"`
	SecretKey     string        `json:"secret_key" yaml:"secret_key"`
	SessionTTL    time.Duration `json:"session_ttl" yaml:"session_ttl"`
	SecureCookies bool          `json:"secure_cookies" yaml:"secure_cookies"`
	Debug         bool          `json:"debug" yaml:"debug"`
	TMDB          TMDBConfig    `json:"tmdb" yaml:"tmdb"`

	// GeneratedSecret is set when no secret was configured and Load made one
	// up. Sessions then do not survive a restart.
	GeneratedSecret bool `json:"-" yaml:"-"`
}

type TMDBConfig struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	AccessToken string        `json:"access_token" yaml:"access_token"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:        5000,
		DBPath:      "showtracker.db",
		StaticDir:   "static",
		TemplateDir: "templates",
		SessionTTL:  24 * time.Hour,
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
			Timeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration. configFile may be empty. envFiles default to
// ".env"; a missing env file is not an error.
func Load(configFile string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	dotenv, err := readDotenv(envFiles)
	if err != nil {
		return nil, err
	}

	if err := applyEnv(cfg, lookup(dotenv)); err != nil {
		return nil, err
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes a YAML (.yaml/.yml) or JSON file over cfg.
func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode YAML config file %s: %w", path, err)
		}
		return nil
	}

	// JSON has no duration literal, so durations there are nanoseconds.
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config file %s: %w", path, err)
	}
	return nil
}

func readDotenv(files []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		// First file wins, as with godotenv.Load.
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

type lookupFunc func(key string) (string, bool)

// lookup prefers the process environment over .env values. A variable set
// to the empty string counts as unset.
func lookup(dotenv map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func applyEnv(cfg *Config, env lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := env(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := env(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := env(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := env(key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = d
		}
	}

	integer("PORT", &cfg.Port)
	str("DB_PATH", &cfg.DBPath)
	str("STATIC_DIR", &cfg.StaticDir)
	str("TEMPLATE_DIR", &cfg.TemplateDir)
	str("SECRET_KEY", &cfg.SecretKey)
	duration("SESSION_TTL", &cfg.SessionTTL)
	boolean("SECURE_COOKIES", &cfg.SecureCookies)
	boolean("DEBUG", &cfg.Debug)
	str("TMDB_API_KEY", &cfg.TMDB.APIKey)
	str("TMDB_ACCESS_TOKEN", &cfg.TMDB.AccessToken)
	str("TMDB_BASE_URL", &cfg.TMDB.BaseURL)
	duration("TMDB_TIMEOUT", &cfg.TMDB.Timeout)

	return errors.Join(errs...)
}

// finish validates cfg and fills in a session secret when none was given.
func (c *Config) finish() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb timeout must be positive, got %s", c.TMDB.Timeout)
	}

	if c.SecretKey == "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.SecretKey = secret
		c.GeneratedSecret = true
	}
	if len(c.SecretKey) < minSecretLength {
		return fmt.Errorf("secret_key must be at least %d characters", minSecretLength)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
