package config

import "github.com/caarlos0/env/v10"

// Config centralizes service configuration from environment variables.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	QuestionsPath string `env:"QUESTIONS_PATH" envDefault:"configs/questions.yaml"`
	ProfilesPath  string `env:"PROFILES_PATH" envDefault:"configs/profiles.yaml"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.x.ai/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"grok-4-fast-non-reasoning"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret           string `env:"JWT_SECRET"`
	MentorKey           string `env:"MENTOR_KEY"`
	MentorTokenTTLHours int    `env:"MENTOR_TOKEN_TTL_HOURS" envDefault:"12"`

	PrayerTimezone string `env:"PRAYER_TIMEZONE" envDefault:"UTC"`

	SessionExpiryHours   int `env:"SESSION_EXPIRY_HOURS" envDefault:"72"`
	SweepIntervalMinutes int `env:"SWEEP_INTERVAL_MINUTES" envDefault:"60"`

	StartRateWindowMinutes int `env:"START_RATE_WINDOW_MINUTES" envDefault:"10"`
	StartRateMax           int `env:"START_RATE_MAX" envDefault:"3"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
