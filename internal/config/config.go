// Package config loads service configuration from an optional YAML file, a .env file and
// the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Port             string   `yaml:"port"`
	DBPath           string   `yaml:"db_path"`
	CORSOrigins      []string `yaml:"cors_origins"`
	FrontendDistPath string   `yaml:"frontend_dist_path"`
	Debug            bool     `yaml:"debug"`

	Gemini struct {
		APIKey  string `yaml:"api_key"`
		KeyFile string `yaml:"key_file"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"gemini"`

	Prediction struct {
		Timeout    time.Duration `yaml:"timeout"`
		RatePerMin int           `yaml:"rate_per_min"`
		CacheSize  int           `yaml:"cache_size"`
		MaxHistory int           `yaml:"max_history"`
	} `yaml:"prediction"`

	OCR struct {
		TesseractPath string        `yaml:"tesseract_path"`
		Language      string        `yaml:"language"`
		FrameTimeout  time.Duration `yaml:"frame_timeout"`
		DebugFrameDir string        `yaml:"debug_frame_dir"`
	} `yaml:"ocr"`

	RoundLog struct {
		RetentionDays int           `yaml:"retention_days"`
		PruneInterval time.Duration `yaml:"prune_interval"`
	} `yaml:"round_log"`
}

// Load reads config from a YAML file (missing file is fine), loads .env, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv()
	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.Gemini.APIKey == "" && cfg.Gemini.KeyFile != "" {
		if key, err := os.ReadFile(cfg.Gemini.KeyFile); err == nil {
			cfg.Gemini.APIKey = strings.TrimSpace(string(key))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads the first .env found in the working directory or next to the executable.
// Variables already set in the environment win.
func loadDotEnv() {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("FRONTEND_DIST_PATH"); v != "" {
		cfg.FrontendDistPath = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = strings.EqualFold(v, "true")
	}

	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY_FILE"); v != "" {
		cfg.Gemini.KeyFile = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.Gemini.BaseURL = v
	}

	if v := os.Getenv("PREDICTION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Prediction.Timeout = d
		}
	}
	if n, ok := envInt("PREDICTION_RATE_PER_MIN"); ok {
		cfg.Prediction.RatePerMin = n
	}
	if n, ok := envInt("PREDICTION_CACHE_SIZE"); ok {
		cfg.Prediction.CacheSize = n
	}
	if n, ok := envInt("MAX_HISTORY"); ok {
		cfg.Prediction.MaxHistory = n
	}

	if v := os.Getenv("TESSERACT_PATH"); v != "" {
		cfg.OCR.TesseractPath = v
	}
	if v := os.Getenv("OCR_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}
	if v := os.Getenv("OCR_FRAME_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OCR.FrameTimeout = d
		}
	}
	if v := os.Getenv("OCR_DEBUG_FRAME_DIR"); v != "" {
		cfg.OCR.DebugFrameDir = v
	}

	if n, ok := envInt("ROUND_RETENTION_DAYS"); ok {
		cfg.RoundLog.RetentionDays = n
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./aviator_overlay.db"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Prediction.Timeout == 0 {
		cfg.Prediction.Timeout = 30 * time.Second
	}
	if cfg.Prediction.RatePerMin == 0 {
		cfg.Prediction.RatePerMin = 20
	}
	if cfg.Prediction.CacheSize == 0 {
		cfg.Prediction.CacheSize = 64
	}
	if cfg.Prediction.MaxHistory == 0 {
		cfg.Prediction.MaxHistory = 50
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "eng"
	}
	if cfg.OCR.FrameTimeout == 0 {
		cfg.OCR.FrameTimeout = 10 * time.Second
	}
	if cfg.RoundLog.RetentionDays == 0 {
		cfg.RoundLog.RetentionDays = 30
	}
	if cfg.RoundLog.PruneInterval == 0 {
		cfg.RoundLog.PruneInterval = time.Hour
	}
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	if c.Prediction.Timeout < 0 {
		return fmt.Errorf("prediction timeout must be positive, got %s", c.Prediction.Timeout)
	}
	if c.Prediction.RatePerMin < 0 {
		return fmt.Errorf("prediction rate must be positive, got %d", c.Prediction.RatePerMin)
	}
	if c.Prediction.MaxHistory < 0 {
		return fmt.Errorf("max history must be positive, got %d", c.Prediction.MaxHistory)
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if k == "" {
		return ""
	}
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
