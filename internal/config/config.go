package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Publisher  PublisherConfig  `yaml:"publisher" mapstructure:"publisher"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Keywords   KeywordsConfig   `yaml:"keywords" mapstructure:"keywords"`
	ContentAPI ContentAPIConfig `yaml:"content_api" mapstructure:"content_api"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" mapstructure:"retrieval"`
	Tips       TipsConfig       `yaml:"tips" mapstructure:"tips"`
	Markers    MarkersConfig    `yaml:"markers" mapstructure:"markers"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PublisherConfig identifies the news site the assistant is restricted to.
type PublisherConfig struct {
	Origin   string `yaml:"origin" mapstructure:"origin"`
	Locality string `yaml:"locality" mapstructure:"locality"`
}

// GeminiConfig holds Gemini API settings for grounded answers.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	Model  string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings for the alternate
// keyword-extraction backend.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// KeywordsConfig selects the keyword-extraction provider. The heuristic
// fallback is always available regardless of provider.
type KeywordsConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // gemini, anthropic, heuristic
}

// ContentAPIConfig holds keyword article search settings.
type ContentAPIConfig struct {
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	PageSize   int     `yaml:"page_size" mapstructure:"page_size"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// RetrievalConfig tunes the answered/unanswered heuristic and the optional
// source-validation pass.
type RetrievalConfig struct {
	MinAnsweredLength     int      `yaml:"min_answered_length" mapstructure:"min_answered_length"`
	CitationPhrase        string   `yaml:"citation_phrase" mapstructure:"citation_phrase"`
	NotFoundPhrases       []string `yaml:"not_found_phrases" mapstructure:"not_found_phrases"`
	ValidateSources       bool     `yaml:"validate_sources" mapstructure:"validate_sources"`
	ValidationTimeoutSecs int      `yaml:"validation_timeout_secs" mapstructure:"validation_timeout_secs"`
}

// TipsConfig configures tip submission.
type TipsConfig struct {
	IntakeURL          string `yaml:"intake_url" mapstructure:"intake_url"`
	APIKey             string `yaml:"api_key" mapstructure:"api_key"`
	FallbackWebhookURL string `yaml:"fallback_webhook_url" mapstructure:"fallback_webhook_url"`
	FallbackAddress    string `yaml:"fallback_address" mapstructure:"fallback_address"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
}

// MarkersConfig points at an optional YAML file overriding the built-in
// marker phrase sets.
type MarkersConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// StoreConfig configures the tip archive backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("AMAIKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("publisher.origin", "https://www.eleco.com.ar")
	v.SetDefault("publisher.locality", "Tandil")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("keywords.provider", "gemini")
	v.SetDefault("content_api.base_url", "https://articapiv3.eleco.com.ar/api/v2/search")
	v.SetDefault("content_api.page_size", 10)
	v.SetDefault("content_api.rate_per_sec", 5)
	v.SetDefault("content_api.rate_burst", 5)
	v.SetDefault("retrieval.min_answered_length", 100)
	v.SetDefault("retrieval.citation_phrase", "Puedes leer más en:")
	v.SetDefault("retrieval.not_found_phrases", []string{
		"no he encontrado información específica",
		"no hay información",
		"no encontré",
		"no se encontró",
		"no se encontraron",
		"no hay datos",
		"no hay artículos",
		"no hay noticias",
		"no hay resultados",
		"no hay registro",
	})
	v.SetDefault("retrieval.validate_sources", false)
	v.SetDefault("retrieval.validation_timeout_secs", 10)
	v.SetDefault("tips.intake_url", "https://api.eleco.com.ar/tips")
	v.SetDefault("tips.fallback_address", "servicios@eleco.com.ar")
	v.SetDefault("tips.user_agent", "amaike/1.0")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "amaike.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"https://www.eleco.com.ar"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
