package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/mvnquery/internal/domain/repository"
)

// Config holds the mvnquery service configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Maven        MavenConfig        `yaml:"maven"`
	Repositories []RepositoryConfig `yaml:"repositories"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// MavenConfig holds query and download defaults.
type MavenConfig struct {
	DefaultLimit     int    `yaml:"default_limit"`
	MaxLimit         int    `yaml:"max_limit"`
	DefaultExtension string `yaml:"default_extension"`
	TimeZone         string `yaml:"time_zone"` // zone of display timestamps (default: UTC)
}

// RepositoryConfig declares one repository known to the service.
type RepositoryConfig struct {
	Name    string   `yaml:"name"`
	Format  string   `yaml:"format"`
	Type    string   `yaml:"type"` // hosted, proxy, group
	Members []string `yaml:"members"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "mvnquery:"
	}
	if c.Maven.DefaultLimit <= 0 {
		c.Maven.DefaultLimit = 10
	}
	if c.Maven.MaxLimit <= 0 {
		c.Maven.MaxLimit = 1000
	}
	if c.Maven.DefaultExtension == "" {
		c.Maven.DefaultExtension = "jar"
	}
	if c.Maven.TimeZone == "" {
		c.Maven.TimeZone = "UTC"
	}
	for i := range c.Repositories {
		if c.Repositories[i].Format == "" {
			c.Repositories[i].Format = repository.FormatMaven2
		}
		if c.Repositories[i].Type == "" {
			c.Repositories[i].Type = string(repository.TypeHosted)
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	if c.Maven.MaxLimit < c.Maven.DefaultLimit {
		return fmt.Errorf("maven.max_limit (%d) must not be below maven.default_limit (%d)",
			c.Maven.MaxLimit, c.Maven.DefaultLimit)
	}
	if _, err := time.LoadLocation(c.Maven.TimeZone); err != nil {
		return fmt.Errorf("maven.time_zone: %w", err)
	}
	if _, err := c.BuildRepositories(); err != nil {
		return err
	}
	return nil
}

// Location returns the display time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Maven.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BuildRepositories converts the repository list into domain repositories.
// Names must be unique and group members must be declared.
func (c *Config) BuildRepositories() ([]repository.Repository, error) {
	declared := make(map[string]struct{}, len(c.Repositories))
	for _, rc := range c.Repositories {
		if _, dup := declared[rc.Name]; dup {
			return nil, fmt.Errorf("repositories: duplicate name %q", rc.Name)
		}
		declared[rc.Name] = struct{}{}
	}

	repos := make([]repository.Repository, 0, len(c.Repositories))
	for i, rc := range c.Repositories {
		for _, m := range rc.Members {
			if _, ok := declared[m]; !ok {
				return nil, fmt.Errorf("repositories[%d] %q: unknown member %q", i, rc.Name, m)
			}
		}
		r, err := repository.New(rc.Name, rc.Format, repository.Type(rc.Type), rc.Members)
		if err != nil {
			return nil, fmt.Errorf("repositories[%d]: %w", i, err)
		}
		repos = append(repos, r)
	}
	return repos, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
