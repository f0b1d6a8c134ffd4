package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	MaxUploadBytes  int64
	LogLevel        string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	LLM      LLMConfig
	Analysis AnalysisConfig
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"-"`
	BaseURL         string        `yaml:"base_url"`
	SafetyThreshold string        `yaml:"safety_threshold"`
	Temperature     float64       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	RetryAttempts   int           `yaml:"retry_attempts"`
}

// AnalysisConfig controls prompt construction and result checking.
type AnalysisConfig struct {
	SchemaVersion  string `yaml:"schema_version"`
	PromptMaxChars int    `yaml:"prompt_max_chars"`
	StrictSchema   bool   `yaml:"strict_schema"`
}

const (
	defaultMaxUploadBytes = 20 << 20
	defaultPromptMaxChars = 8000
	defaultLLMTimeout     = 60 * time.Second
)

// Load reads configuration from environment variables with sensible defaults.
// A YAML file named by CONFIG_FILE is applied first; env vars win over it.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		DatabaseURL:     dbURL,
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getEnv("MINIO_BUCKET", "pitchdecks"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		LLM:             DefaultLLMConfig(),
		Analysis:        DefaultAnalysisConfig(),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			log.Printf("config file %s ignored: %v", path, err)
		}
	}

	applyLLMEnv(&cfg.LLM)
	applyAnalysisEnv(&cfg.Analysis)
	return cfg
}

// DefaultLLMConfig returns provider defaults used when nothing is configured.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:        "gemini",
		SafetyThreshold: "BLOCK_NONE",
		Timeout:         defaultLLMTimeout,
		RetryAttempts:   1,
	}
}

// DefaultAnalysisConfig returns analysis defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SchemaVersion:  "v2",
		PromptMaxChars: defaultPromptMaxChars,
	}
}

func applyLLMEnv(c *LLMConfig) {
	c.Provider = normalizeProvider(getEnv("LLM_PROVIDER", c.Provider))
	c.Model = getEnv("LLM_MODEL", c.Model)
	c.BaseURL = getEnv("LLM_BASE_URL", c.BaseURL)
	c.SafetyThreshold = strings.ToUpper(getEnv("LLM_SAFETY_THRESHOLD", c.SafetyThreshold))
	c.Temperature = getEnvFloat("LLM_TEMPERATURE", c.Temperature)
	c.Timeout = getEnvDuration("LLM_TIMEOUT", c.Timeout)
	c.RetryAttempts = getEnvInt("LLM_RETRY_ATTEMPTS", c.RetryAttempts)

	c.APIKey = os.Getenv("LLM_API_KEY")
	if c.APIKey == "" {
		switch c.Provider {
		case "gemini":
			c.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

func applyAnalysisEnv(c *AnalysisConfig) {
	c.SchemaVersion = strings.ToLower(getEnv("ANALYSIS_SCHEMA_VERSION", c.SchemaVersion))
	c.PromptMaxChars = getEnvInt("PROMPT_MAX_CHARS", c.PromptMaxChars)
	c.StrictSchema = getEnvBool("ANALYSIS_STRICT_SCHEMA", c.StrictSchema)
	if c.PromptMaxChars <= 0 {
		c.PromptMaxChars = defaultPromptMaxChars
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid size: %q", key, raw)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration: %q", key, raw)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "google", "gemini":
		return "gemini"
	case "openrouter", "openai":
		return "openai"
	default:
		return p
	}
}
