package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	OpenAI   OpenAIConfig   `json:"openai"`
	GoogleAI GoogleAIConfig `json:"googleai"`
	Storage  StorageConfig  `json:"storage"`
	Auth     AuthConfig     `json:"auth"`
	LogLevel string         `json:"log_level"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// OpenAIConfig configures the OpenAI-family adapter.
type OpenAIConfig struct {
	APIKey     string `json:"api_key"`
	TitleModel string `json:"title_model"`
}

// GoogleAIConfig configures the Gemini-family adapter.
type GoogleAIConfig struct {
	APIKey     string `json:"api_key"`
	TitleModel string `json:"title_model"`
}

// StorageConfig configures the S3-backed file host.
type StorageConfig struct {
	Bucket  string `json:"bucket"`
	Region  string `json:"region"`
	BaseURL string `json:"base_url"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
	Issuer    string `json:"issuer"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// Add config paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".parley"))
	}

	// Set defaults
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "parley")
	viper.SetDefault("database.database", "parley")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("openai.title_model", "gpt-4.1-mini")
	viper.SetDefault("googleai.title_model", "gemini-2.0-flash-lite")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("auth.issuer", "parley-backend")
	viper.SetDefault("log_level", "info")

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := defaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 3000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "parley",
			Password: "",
			Database: "parley",
			SSLMode:  "disable",
		},
		OpenAI: OpenAIConfig{
			TitleModel: "gpt-4.1-mini",
		},
		GoogleAI: GoogleAIConfig{
			TitleModel: "gemini-2.0-flash-lite",
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Auth: AuthConfig{
			Issuer: "parley-backend",
		},
		LogLevel: "info",
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("PARLEY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("PARLEY_HOST"); host != "" {
		cfg.Server.Host = host
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	// Provider credentials come from the environment, never the config file
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.GoogleAI.APIKey = key
	}

	if bucket := os.Getenv("PARLEY_S3_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.Storage.Region = region
	}
	if baseURL := os.Getenv("PARLEY_S3_BASE_URL"); baseURL != "" {
		cfg.Storage.BaseURL = baseURL
	}

	if secret := os.Getenv("PARLEY_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if level := os.Getenv("PARLEY_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}
