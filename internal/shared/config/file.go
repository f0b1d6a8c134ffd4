package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay shape. Secrets stay in the environment.
type fileConfig struct {
	Port           string          `yaml:"port"`
	CORSOrigins    []string        `yaml:"cors_allow_origins"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes"`
	LLM            *LLMConfig      `yaml:"llm"`
	Analysis       *AnalysisConfig `yaml:"analysis"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return applyYAML(cfg, data)
}

func applyYAML(cfg *Config, data []byte) error {
	fc := fileConfig{
		LLM:      &LLMConfig{},
		Analysis: &AnalysisConfig{},
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if strings.TrimSpace(fc.Port) != "" && os.Getenv("PORT") == "" {
		cfg.Port = strings.TrimSpace(fc.Port)
	}
	if len(fc.CORSOrigins) > 0 && os.Getenv("CORS_ALLOW_ORIGINS") == "" {
		cfg.CORSAllowOrigin = fc.CORSOrigins
	}
	if fc.MaxUploadBytes > 0 && os.Getenv("MAX_UPLOAD_BYTES") == "" {
		cfg.MaxUploadBytes = fc.MaxUploadBytes
	}

	l := fc.LLM
	if l.Provider != "" {
		cfg.LLM.Provider = l.Provider
	}
	if l.Model != "" {
		cfg.LLM.Model = l.Model
	}
	if l.BaseURL != "" {
		cfg.LLM.BaseURL = l.BaseURL
	}
	if l.SafetyThreshold != "" {
		cfg.LLM.SafetyThreshold = l.SafetyThreshold
	}
	if l.Temperature != 0 {
		cfg.LLM.Temperature = l.Temperature
	}
	if l.Timeout > 0 {
		cfg.LLM.Timeout = l.Timeout
	}
	if l.RetryAttempts != 0 {
		cfg.LLM.RetryAttempts = l.RetryAttempts
	}

	a := fc.Analysis
	if a.SchemaVersion != "" {
		cfg.Analysis.SchemaVersion = a.SchemaVersion
	}
	if a.PromptMaxChars > 0 {
		cfg.Analysis.PromptMaxChars = a.PromptMaxChars
	}
	if a.StrictSchema {
		cfg.Analysis.StrictSchema = true
	}
	return nil
}
