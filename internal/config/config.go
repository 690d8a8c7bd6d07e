package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN" required:"true"`
	CalendarificKey string `envconfig:"CALENDARIFIC_KEY" required:"true"`
	AdminUsername   string `envconfig:"ADMIN_USERNAME" required:"true"`
	CalendarificURL string `envconfig:"CALENDARIFIC_URL" default:"https://calendarific.com/api/v2"`
	DBPath          string `envconfig:"DB_PATH" default:"./data/holiday-radar.db"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config. A .env file is honored when
// present; required keys missing from the environment fail startup.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
