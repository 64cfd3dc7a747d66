package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dobby152/askelio-sub001/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Mistral    MistralConfig    `yaml:"mistral" mapstructure:"mistral"`
	Tesseract  TesseractConfig  `yaml:"tesseract" mapstructure:"tesseract"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Pricing    cost.Rates       `yaml:"pricing" mapstructure:"pricing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the document store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"` // sqlite file path
}

// AnthropicConfig holds Claude provider settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// MistralConfig holds Mistral OCR provider settings.
type MistralConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// TesseractConfig holds the local OCR fallback settings.
type TesseractConfig struct {
	Languages []string `yaml:"languages" mapstructure:"languages"`
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
}

// RegistryConfig holds ARES lookup settings.
type RegistryConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ProcessingConfig configures upload validation and reconciliation.
type ProcessingConfig struct {
	Mode             string   `yaml:"mode" mapstructure:"mode"` // "all" or a provider name
	MaxFileSizeMB    int      `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
	AllowedTypes     []string `yaml:"allowed_types" mapstructure:"allowed_types"`
	MaxCostUSD       float64  `yaml:"max_cost_usd" mapstructure:"max_cost_usd"`
	MinConfidence    float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	EnrichmentTrust  float64  `yaml:"enrichment_trust" mapstructure:"enrichment_trust"`
	SkipEnrichment   bool     `yaml:"skip_enrichment" mapstructure:"skip_enrichment"`
	ProviderPriority []string `yaml:"provider_priority" mapstructure:"provider_priority"`
	FieldMappingPath string   `yaml:"field_mapping_path" mapstructure:"field_mapping_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ASKELIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "askelio.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.enabled", true)
	v.SetDefault("mistral.model", "pixtral-large-latest")
	v.SetDefault("mistral.enabled", true)
	v.SetDefault("tesseract.languages", []string{"ces", "eng"})
	v.SetDefault("tesseract.enabled", true)
	v.SetDefault("registry.base_url", "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest/ekonomicke-subjekty")
	v.SetDefault("registry.requests_per_sec", 5.0)
	v.SetDefault("registry.timeout_secs", 15)
	v.SetDefault("processing.mode", "all")
	v.SetDefault("processing.max_file_size_mb", 20)
	v.SetDefault("processing.min_confidence", 0.0)
	v.SetDefault("processing.allowed_types", []string{"application/pdf", "image/png", "image/jpeg"})
	v.SetDefault("processing.max_cost_usd", 1.0)
	v.SetDefault("processing.enrichment_trust", 0.95)
	v.SetDefault("processing.skip_enrichment", false)
	v.SetDefault("processing.provider_priority", []string{"claude", "mistral", "tesseract"})
	v.SetDefault("pricing.providers.claude.per_document", 0.02)
	v.SetDefault("pricing.providers.claude.per_mb", 0.01)
	v.SetDefault("pricing.providers.mistral.per_document", 0.005)
	v.SetDefault("pricing.providers.mistral.per_mb", 0.002)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
