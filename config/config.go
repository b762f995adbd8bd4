package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nutrimatch/backend/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Catalog      CatalogConfig
	Matching     MatchingConfig
	Alternatives AlternativesConfig
	Restrictions []domain.RestrictionRule `mapstructure:"restrictions"`
	Cache        CacheConfig
	USDA         USDAConfig
	RateLimit    RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects and locates the reference food catalog
type CatalogConfig struct {
	Driver   string `mapstructure:"driver"` // "memory" or "sqlite"
	Path     string `mapstructure:"path"`   // sqlite database file
	SeedFile string `mapstructure:"seed_file"`
}

// MatchingConfig holds the tiered matcher configuration
type MatchingConfig struct {
	PartialLimit        int     `mapstructure:"partial_limit"`
	FuzzySampleSize     int     `mapstructure:"fuzzy_sample_size"`
	FullScanFuzzy       bool    `mapstructure:"full_scan_fuzzy"`
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
	BatchConcurrency    int     `mapstructure:"batch_concurrency"`
	AcceptanceThreshold float64 `mapstructure:"acceptance_threshold"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// AlternativesConfig holds the nutritional alternative search configuration
type AlternativesConfig struct {
	SimilarLimit            int     `mapstructure:"similar_limit"`
	SimilarCalorieTolerance float64 `mapstructure:"similar_calorie_tolerance"`
	SimilarProteinTolerance float64 `mapstructure:"similar_protein_tolerance"`
	SimilarProteinFloor     float64 `mapstructure:"similar_protein_floor"`
	CaloricTolerance        float64 `mapstructure:"caloric_tolerance"`
	Limit                   int     `mapstructure:"limit"`
}

// CacheConfig holds match-result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// USDAConfig holds USDA API configuration, used by catalog imports
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from configFile when set, otherwise from the
// default search paths
func LoadFrom(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutrimatch/")
	}

	v.SetEnvPrefix("NUTRIMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("catalog.path", "nutrimatch.db")
	v.SetDefault("catalog.seed_file", "")

	v.SetDefault("matching.partial_limit", 10)
	v.SetDefault("matching.fuzzy_sample_size", 500)
	v.SetDefault("matching.full_scan_fuzzy", false)
	v.SetDefault("matching.fuzzy_threshold", 0.5)
	v.SetDefault("matching.max_candidates", 5)
	v.SetDefault("matching.batch_concurrency", 4)
	v.SetDefault("matching.acceptance_threshold", 0.7)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("alternatives.similar_limit", 5)
	v.SetDefault("alternatives.similar_calorie_tolerance", 0.2)
	v.SetDefault("alternatives.similar_protein_tolerance", 0.3)
	v.SetDefault("alternatives.similar_protein_floor", 2.0)
	v.SetDefault("alternatives.caloric_tolerance", 0.25)
	v.SetDefault("alternatives.limit", 10)

	v.SetDefault("restrictions", restrictionDefaults())

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	v.SetDefault("ratelimit.per_ip", 100)
}

// restrictionDefaults renders DefaultRestrictions in the shape viper decodes
func restrictionDefaults() []map[string]interface{} {
	rules := DefaultRestrictions()
	out := make([]map[string]interface{}, 0, len(rules))
	for _, r := range rules {
		out = append(out, map[string]interface{}{
			"label":    r.Label,
			"keywords": r.ExcludedNameKeywords,
		})
	}
	return out
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Driver != "memory" && config.Catalog.Driver != "sqlite" {
		return fmt.Errorf("catalog driver must be 'memory' or 'sqlite', got: %s", config.Catalog.Driver)
	}
	if config.Catalog.Driver == "sqlite" && config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required when catalog driver is 'sqlite'")
	}

	m := config.Matching
	if m.PartialLimit <= 0 || m.FuzzySampleSize <= 0 || m.MaxCandidates <= 0 || m.BatchConcurrency <= 0 {
		return fmt.Errorf("matching limits must be positive")
	}
	if !inUnitInterval(m.FuzzyThreshold) {
		return fmt.Errorf("matching fuzzy threshold must be within [0,1], got: %v", m.FuzzyThreshold)
	}
	if !inUnitInterval(m.AcceptanceThreshold) {
		return fmt.Errorf("matching acceptance threshold must be within [0,1], got: %v", m.AcceptanceThreshold)
	}

	a := config.Alternatives
	if a.SimilarLimit <= 0 || a.Limit <= 0 {
		return fmt.Errorf("alternative limits must be positive")
	}
	if a.CaloricTolerance <= 0 || a.SimilarCalorieTolerance <= 0 || a.SimilarProteinTolerance <= 0 {
		return fmt.Errorf("alternative tolerances must be positive")
	}

	for _, r := range config.Restrictions {
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("restriction rules need a label")
		}
	}

	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}

// loadEnvFile exports the variables of ./.env without overriding ones that
// are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
