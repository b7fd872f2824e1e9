// Package config loads process-level settings from an optional YAML file
// with environment overrides. Components receive their settings explicitly;
// nothing reads the environment past startup.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "DOCVERIFY_CONFIG"
	portEnv          = "PORT"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmAPIURLEnv     = "LLM_API_URL"
	llmModelEnv      = "LLM_MODEL"
	useRefinementEnv = "USE_LLM_REFINEMENT"
	auditDBPathEnv   = "AUDIT_DB_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	OCR          OCRConfig          `yaml:"ocr"`
	Layout       LayoutConfig       `yaml:"layout"`
	Refinement   RefinementConfig   `yaml:"refinement"`
	Plausibility PlausibilityConfig `yaml:"plausibility"`
	Audit        AuditConfig        `yaml:"audit"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type OCRConfig struct {
	Pdftoppm      string `yaml:"pdftoppm"`
	Tesseract     string `yaml:"tesseract"`
	TesseractLang string `yaml:"tesseractLang"`
	DPI           int    `yaml:"dpi"`
	MaxPages      int    `yaml:"maxPages"`
	MinTextLen    int    `yaml:"minTextLen"`
}

type LayoutConfig struct {
	LineTolerance int `yaml:"lineTolerance"`
	FieldGap      int `yaml:"fieldGap"`
	ColumnGap     int `yaml:"columnGap"`
}

type RefinementConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PlausibilityConfig struct {
	QuantityTolerancePct float64 `yaml:"quantityTolerancePct"`
	PriceEpsilon         float64 `yaml:"priceEpsilon"`
	ValidityDaysPerYear  int     `yaml:"validityDaysPerYear"`
}

type AuditConfig struct {
	DBPath string `yaml:"dbPath"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Addr = ":" + v
		}
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.Refinement.APIKey = v
	}
	if v := os.Getenv(llmAPIURLEnv); v != "" {
		c.Refinement.Endpoint = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.Refinement.Model = v
	}
	if v := os.Getenv(useRefinementEnv); v != "" {
		c.Refinement.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv(auditDBPathEnv); v != "" {
		c.Audit.DBPath = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.OCR.Pdftoppm != "" {
		base.OCR.Pdftoppm = override.OCR.Pdftoppm
	}
	if override.OCR.Tesseract != "" {
		base.OCR.Tesseract = override.OCR.Tesseract
	}
	if override.OCR.TesseractLang != "" {
		base.OCR.TesseractLang = override.OCR.TesseractLang
	}
	if override.OCR.DPI != 0 {
		base.OCR.DPI = override.OCR.DPI
	}
	if override.OCR.MaxPages != 0 {
		base.OCR.MaxPages = override.OCR.MaxPages
	}
	if override.OCR.MinTextLen != 0 {
		base.OCR.MinTextLen = override.OCR.MinTextLen
	}

	if override.Layout.LineTolerance != 0 {
		base.Layout.LineTolerance = override.Layout.LineTolerance
	}
	if override.Layout.FieldGap != 0 {
		base.Layout.FieldGap = override.Layout.FieldGap
	}
	if override.Layout.ColumnGap != 0 {
		base.Layout.ColumnGap = override.Layout.ColumnGap
	}

	if override.Refinement.Enabled {
		base.Refinement.Enabled = true
	}
	if override.Refinement.Endpoint != "" {
		base.Refinement.Endpoint = override.Refinement.Endpoint
	}
	if override.Refinement.APIKey != "" {
		base.Refinement.APIKey = override.Refinement.APIKey
	}
	if override.Refinement.Model != "" {
		base.Refinement.Model = override.Refinement.Model
	}
	if override.Refinement.Timeout != 0 {
		base.Refinement.Timeout = override.Refinement.Timeout
	}

	if override.Plausibility.QuantityTolerancePct != 0 {
		base.Plausibility.QuantityTolerancePct = override.Plausibility.QuantityTolerancePct
	}
	if override.Plausibility.PriceEpsilon != 0 {
		base.Plausibility.PriceEpsilon = override.Plausibility.PriceEpsilon
	}
	if override.Plausibility.ValidityDaysPerYear != 0 {
		base.Plausibility.ValidityDaysPerYear = override.Plausibility.ValidityDaysPerYear
	}

	if override.Audit.DBPath != "" {
		base.Audit.DBPath = override.Audit.DBPath
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		OCR: OCRConfig{
			Pdftoppm:      "pdftoppm",
			Tesseract:     "tesseract",
			TesseractLang: "eng",
			DPI:           300,
			MaxPages:      10,
			MinTextLen:    100,
		},
		Layout: LayoutConfig{
			LineTolerance: 10,
			FieldGap:      20,
			ColumnGap:     50,
		},
		Refinement: RefinementConfig{
			Enabled:  true,
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
			Model:    "gemini-2.0-flash",
			Timeout:  30 * time.Second,
		},
		Plausibility: PlausibilityConfig{
			QuantityTolerancePct: 5,
			PriceEpsilon:         0.01,
			ValidityDaysPerYear:  365,
		},
		Audit: AuditConfig{
			DBPath: "docverify.db",
		},
	}
}
