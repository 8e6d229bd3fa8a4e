package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dgallion1/booktojson/internal/cleaner"
	"github.com/dgallion1/booktojson/internal/export"
	"github.com/dgallion1/booktojson/internal/parser"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Output
	Out    string `yaml:"out"`
	Format string `yaml:"format"` // empty: inferred from Out

	// Extraction
	PDFEngine  string `yaml:"pdf_engine"`
	EPUBTitles string `yaml:"epub_titles"`
	TitleMatch string `yaml:"title_match"`
	NFC        bool   `yaml:"nfc"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// HTTP server
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

func Load() Config {
	cfg := Config{
		Out:    envOr("BOOKTOJSON_OUT", "out.json"),
		Format: os.Getenv("BOOKTOJSON_FORMAT"),

		PDFEngine:  envOr("BOOKTOJSON_PDF_ENGINE", parser.EngineMuPDF),
		EPUBTitles: envOr("BOOKTOJSON_EPUB_TITLES", parser.TitlesName),
		TitleMatch: envOr("BOOKTOJSON_TITLE_MATCH", cleaner.MatchSubstring.String()),
		NFC:        envBool("BOOKTOJSON_NFC", false),

		LogLevel:  envOr("BOOKTOJSON_LOG_LEVEL", "info"),
		LogFormat: envOr("BOOKTOJSON_LOG_FORMAT", "console"),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("BOOKTOJSON_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

// LoadFile overlays the YAML file at path on base. Keys absent from the file
// keep their base value.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Out == "" {
		return errors.New("output path is required")
	}
	if c.Format != "" {
		if _, err := export.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	switch c.PDFEngine {
	case "", parser.EngineMuPDF, parser.EngineNative:
	default:
		return fmt.Errorf("pdf engine must be %q or %q, got %q", parser.EngineMuPDF, parser.EngineNative, c.PDFEngine)
	}
	switch c.EPUBTitles {
	case "", parser.TitlesName, parser.TitlesHeading:
	default:
		return fmt.Errorf("epub titles must be %q or %q, got %q", parser.TitlesName, parser.TitlesHeading, c.EPUBTitles)
	}
	if _, err := cleaner.ParseMatching(c.TitleMatch); err != nil {
		return err
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// OutputFormat resolves the export format, falling back to the extension of Out.
func (c Config) OutputFormat() (export.Format, error) {
	if c.Format == "" {
		return export.FormatForPath(c.Out), nil
	}
	return export.ParseFormat(c.Format)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
