package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

type OpenAIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	AssistantID string `mapstructure:"assistant_id"`
	Model       string `mapstructure:"model"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	SeedSamples bool   `mapstructure:"seed_samples"`
}

type AssistantConfig struct {
	PollIntervalSeconds    int `mapstructure:"poll_interval_seconds"`
	FetchRetries           int `mapstructure:"fetch_retries"`
	FetchRetryDelaySeconds int `mapstructure:"fetch_retry_delay_seconds"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "speaknote.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.seed_samples", true)
	v.SetDefault("openai.model", "gpt-4-1106-preview")
	v.SetDefault("assistant.poll_interval_seconds", 1)
	v.SetDefault("assistant.fetch_retries", 3)
	v.SetDefault("assistant.fetch_retry_delay_seconds", 1)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		dbConfig.SeedSamples = config.Database.SeedSamples
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if assistantID := v.GetString("OPENAI_ASSISTANT_ID"); assistantID != "" {
		config.OpenAI.AssistantID = assistantID
	}

	return &config, nil
}
