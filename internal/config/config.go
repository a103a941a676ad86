package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the bikeval service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Predictor   PredictorConfig   `yaml:"predictor"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Comparables ComparablesConfig `yaml:"comparables"`
	Assets      AssetsConfig      `yaml:"assets"`
	Cache       CacheConfig       `yaml:"cache"`
	Narrator    NarratorConfig    `yaml:"narrator"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty APIKeys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig points at the listings file (.csv or .parquet).
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Predictor drivers.
const (
	PredictorLocal  = "local"
	PredictorRemote = "remote"
)

// PredictorConfig selects and configures the price model.
type PredictorConfig struct {
	Driver       string `yaml:"driver"`        // local (default), remote
	ArtifactPath string `yaml:"artifact_path"` // local driver
	Endpoint     string `yaml:"endpoint"`      // remote driver
	APIKey       string `yaml:"api_key"`       // remote driver, optional bearer token
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// PricingConfig holds feature derivation and input bounds.
type PricingConfig struct {
	ReferenceYear  int   `yaml:"reference_year"`
	MinYear        int   `yaml:"min_year"`
	ValidateInputs *bool `yaml:"validate_inputs"`
}

// Validating reports whether request inputs are range-checked.
func (p PricingConfig) Validating() bool {
	return p.ValidateInputs == nil || *p.ValidateInputs
}

// ComparablesConfig holds the default profile and extra named profiles.
type ComparablesConfig struct {
	DefaultProfile string          `yaml:"default_profile"`
	Profiles       []ProfileConfig `yaml:"profiles"`
}

// ProfileConfig declares a custom comparables profile.
type ProfileConfig struct {
	Name        string  `yaml:"name"`
	LowerFactor float64 `yaml:"lower_factor"`
	UpperFactor float64 `yaml:"upper_factor"`
	Limit       int     `yaml:"limit"`
	SortByPrice bool    `yaml:"sort_by_price"`
}

// AssetsConfig holds brand logo lookup settings.
type AssetsConfig struct {
	ImagesDir   string `yaml:"images_dir"`
	FallbackURL string `yaml:"fallback_url"`
}

// CacheConfig holds the optional prediction cache settings.
type CacheConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTLSec    int      `yaml:"ttl_sec"` // 0 = no expiry

	// ModelVersion overrides the predictor version in cache keys.
	// Set it when a remote model server is redeployed with a new model.
	ModelVersion string `yaml:"model_version"`

	ReadinessTimeoutSec int `yaml:"readiness_timeout_sec"`
}

// NarratorConfig holds the optional LLM valuation summary settings.
type NarratorConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/Used_Bikes.csv"
	}
	if c.Predictor.Driver == "" {
		c.Predictor.Driver = PredictorLocal
	}
	if c.Predictor.ArtifactPath == "" {
		c.Predictor.ArtifactPath = "data/bike_model.json"
	}
	if c.Predictor.TimeoutSec <= 0 {
		c.Predictor.TimeoutSec = 5
	}
	if c.Pricing.ReferenceYear == 0 {
		c.Pricing.ReferenceYear = 2026
	}
	if c.Pricing.MinYear == 0 {
		c.Pricing.MinYear = 1990
	}
	if c.Comparables.DefaultProfile == "" {
		c.Comparables.DefaultProfile = "standard"
	}
	if c.Assets.ImagesDir == "" {
		c.Assets.ImagesDir = "images"
	}
	if c.Assets.FallbackURL == "" {
		c.Assets.FallbackURL = "https://cdn-icons-png.flaticon.com/512/6750/6750554.png"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "bikeval:pred:"
	}
	if c.Cache.ReadinessTimeoutSec <= 0 {
		c.Cache.ReadinessTimeoutSec = 5
	}
	if c.Narrator.Model == "" {
		c.Narrator.Model = "gpt-4o-mini"
	}
	if c.Narrator.TimeoutSec <= 0 {
		c.Narrator.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Predictor.Driver {
	case PredictorLocal:
		if c.Predictor.ArtifactPath == "" {
			return fmt.Errorf("predictor.artifact_path is required for driver %q", c.Predictor.Driver)
		}
	case PredictorRemote:
		if c.Predictor.Endpoint == "" {
			return fmt.Errorf("predictor.endpoint is required for driver %q", c.Predictor.Driver)
		}
	default:
		return fmt.Errorf("predictor.driver must be %q or %q, got %q",
			PredictorLocal, PredictorRemote, c.Predictor.Driver)
	}
	if c.Pricing.MinYear > c.Pricing.ReferenceYear {
		return fmt.Errorf("pricing.min_year (%d) must not exceed pricing.reference_year (%d)",
			c.Pricing.MinYear, c.Pricing.ReferenceYear)
	}
	for i, p := range c.Comparables.Profiles {
		if p.Name == "" {
			return fmt.Errorf("comparables.profiles[%d].name is required", i)
		}
		if p.LowerFactor <= 0 || p.UpperFactor < p.LowerFactor {
			return fmt.Errorf("comparables.profiles.%s: need 0 < lower_factor <= upper_factor, got %v/%v",
				p.Name, p.LowerFactor, p.UpperFactor)
		}
		if p.Limit <= 0 {
			return fmt.Errorf("comparables.profiles.%s.limit must be positive, got %d", p.Name, p.Limit)
		}
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Narrator.Enabled && c.Narrator.APIKey == "" {
		return fmt.Errorf("narrator.api_key is required when narrator is enabled")
	}
	return nil
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
