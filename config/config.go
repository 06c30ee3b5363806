package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	// Zone data for hosts and containers without a system database
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Google   GoogleConfig   `mapstructure:"google"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Database DatabaseConfig `mapstructure:"database"`
	State    StateConfig    `mapstructure:"state"`
	Debug    bool           `mapstructure:"debug"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" validate:"required"`
	ChatID   int64  `mapstructure:"chat_id" validate:"required"`
}

type GoogleConfig struct {
	CredentialsJSON string `mapstructure:"credentials_json" validate:"required,json"`
	SheetID         string `mapstructure:"sheet_id" validate:"required"`
	SheetRange      string `mapstructure:"sheet_range" validate:"required"`
	DocID           string `mapstructure:"doc_id" validate:"required"`
}

type QuizConfig struct {
	Count int `mapstructure:"count" validate:"gt=0"`
}

type ScheduleConfig struct {
	Timezone    string `mapstructure:"timezone" validate:"required,timezone"`
	QuizCron    string `mapstructure:"quiz_cron" validate:"required"`
	ConceptCron string `mapstructure:"concept_cron" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// StateConfig points at a state.json from an earlier deployment whose
// start date should seed the rotation anchor
type StateConfig struct {
	ImportFile string `mapstructure:"import_file"`
}

// Load reads the configuration from an optional YAML file and the environment.
// A .env file in the working directory is loaded first when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dailystudybot")
	}

	v.SetDefault("google.sheet_range", "Sheet1!A:B")
	v.SetDefault("quiz.count", 5)
	v.SetDefault("schedule.timezone", "Asia/Kolkata")
	v.SetDefault("schedule.quiz_cron", "0 20 * * *")
	v.SetDefault("schedule.concept_cron", "5 20 * * *")
	v.SetDefault("database.path", filepath.Join("data", "dailystudy.db"))
	v.SetDefault("debug", false)

	// Secrets and deployment ids come from the environment
	envBindings := map[string]string{
		"telegram.bot_token":      "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":        "YOUR_CHAT_ID",
		"google.credentials_json": "GOOGLE_CREDENTIALS_JSON",
		"google.sheet_id":         "GOOGLE_SHEET_ID",
		"google.doc_id":           "GOOGLE_DOC_ID",
		"database.path":           "DB_PATH",
		"state.import_file":       "STATE_FILE",
		"debug":                   "DEBUG",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return &cfg, nil
}

// Location loads the time zone used for schedules and for "today"
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}
