package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SecurityConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	OpsChatID int64  `yaml:"ops_chat_id"`
	DryRun    bool   `yaml:"dry_run"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Security SecurityConfig `yaml:"security"`
	Telegram TelegramConfig `yaml:"telegram"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	return &cfg
}
