package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend      string `yaml:"backend"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	LocalURL     string `yaml:"local_url"`
	LocalModel   string `yaml:"local_model"`
	ExportDir    string `yaml:"export_dir"`
	AuditRoot    string `yaml:"audit_root"`
}

func DefaultConfig() Config {
	return Config{
		Backend:     "gemini",
		GeminiModel: DefaultGeminiModel,
		LocalURL:    DefaultLocalURL,
		LocalModel:  DefaultLocalModel,
		ExportDir:   ".",
		AuditRoot:   ".",
	}
}

// LoadConfig reads the YAML config at path, falling back to defaults
// when the file does not exist. The API key may also arrive through the
// GEMINI_API_KEY environment variable, which wins over the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if cfg.Backend == "" {
		cfg.Backend = "gemini"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultGeminiModel
	}
	if cfg.LocalURL == "" {
		cfg.LocalURL = DefaultLocalURL
	}
	if cfg.LocalModel == "" {
		cfg.LocalModel = DefaultLocalModel
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	if cfg.AuditRoot == "" {
		cfg.AuditRoot = "."
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "promptforge", "config.yml")
}
