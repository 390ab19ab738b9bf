package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Menu struct {
		Path string `yaml:"path"`
	} `yaml:"menu"`
}

// Load reads the YAML config file and applies environment overrides.
// A .env file in the working directory is loaded first when present;
// secrets generally arrive through it rather than the YAML file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.OpenAI.Model = "gpt-4o-mini"
	cfg.Database.Path = "sommelier.db"
	cfg.Menu.Path = "configs/menu.json"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.OpenAI.BaseURL = base
	}

	return cfg, nil
}
