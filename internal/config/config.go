package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds service configuration loaded from environment variables.
type Config struct {
	// HTTP server
	ListenAddr     string `env:"LISTEN_ADDR" env-default:":8080"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	// Groq analysis API (OpenAI-compatible)
	GroqAPIKey      string        `env:"GROQ_API_KEY"`
	GroqModel       string        `env:"GROQ_MODEL" env-default:"llama-3.3-70b-versatile"`
	GroqBaseURL     string        `env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" env-default:"60s"`

	// OCR
	OCRLanguage   string        `env:"OCR_LANGUAGE" env-default:"jpn"`
	OCRTimeout    time.Duration `env:"OCR_TIMEOUT" env-default:"30s"`
	MinConfidence float64       `env:"MIN_CONFIDENCE" env-default:"20"`
	SameLineBand  int           `env:"SAME_LINE_BAND" env-default:"15"`

	// Rendering
	FontPaths []string `env:"FONT_PATHS" env-separator:":"`

	// Dictionary gloss file (optional)
	DictionaryPath string `env:"DICTIONARY_PATH" env-default:""`

	// Output persistence
	OutputDir       string        `env:"OUTPUT_DIR" env-default:"outputs"`
	OutputPrefix    string        `env:"OUTPUT_PREFIX" env-default:"annotated"`
	OutputRetention time.Duration `env:"OUTPUT_RETENTION" env-default:"1h"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" env-default:"10m"`
}

// defaultFontPaths are tried in order when FONT_PATHS is not set. The list
// covers the common CJK font locations on Debian-family and macOS hosts.
var defaultFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJKjp-Regular.otf",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if len(cfg.FontPaths) == 0 {
		cfg.FontPaths = defaultFontPaths
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}

	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("MIN_CONFIDENCE must be between 0 and 100, got %v", c.MinConfidence)
	}

	if c.SameLineBand < 1 || c.SameLineBand > 200 {
		return fmt.Errorf("SAME_LINE_BAND must be between 1 and 200, got %d", c.SameLineBand)
	}

	if c.MaxUploadBytes < 1024 || c.MaxUploadBytes > 104857600 { // 1KB to 100MB
		return fmt.Errorf("MAX_UPLOAD_BYTES must be between 1KB and 100MB, got %d", c.MaxUploadBytes)
	}

	if c.AnalysisTimeout < time.Second {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be at least 1s, got %v", c.AnalysisTimeout)
	}

	if c.OCRTimeout < time.Second {
		return fmt.Errorf("OCR_TIMEOUT must be at least 1s, got %v", c.OCRTimeout)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}

	return nil
}
