package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	RabbitMQ     RabbitMQ
	GeminiApiKey string

	Grader    Grader
	Scoring   Scoring
	Session   Session
	Challenge Challenge
	Gateway   Gateway

	// IANA timezone in which streak days and daily/weekly periods are
	// computed. Not necessarily the server's local zone.
	ReferenceTimezone string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RabbitMQ struct {
	URL   string
	Queue string
}

type Grader struct {
	// Minimum combined similarity for a submission to count as correct.
	Threshold float64
}

type Scoring struct {
	BaseEasy            int
	BaseMedium          int
	BaseHard            int
	IncorrectPenalty    int
	StreakUnit          int
	StreakCap           int
	ChallengeMultiplier int
}

type Session struct {
	TimeLimitEasy   time.Duration
	TimeLimitMedium time.Duration
	TimeLimitHard   time.Duration
	AttemptBase     int
}

type Challenge struct {
	OpenTime string // "HH:MM" in the reference timezone
	Duration time.Duration
}

type Gateway struct {
	MaxConcurrent int64
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REFERENCE_TIMEZONE", "Asia/Kolkata")

	viper.SetDefault("GRADER_THRESHOLD", 0.65)

	viper.SetDefault("SCORE_BASE_EASY", 60)
	viper.SetDefault("SCORE_BASE_MEDIUM", 80)
	viper.SetDefault("SCORE_BASE_HARD", 120)
	viper.SetDefault("SCORE_INCORRECT_PENALTY", -10)
	viper.SetDefault("SCORE_STREAK_UNIT", 5)
	viper.SetDefault("SCORE_STREAK_CAP", 50)
	viper.SetDefault("SCORE_CHALLENGE_MULTIPLIER", 2)

	viper.SetDefault("SESSION_TIME_LIMIT_EASY", "10m")
	viper.SetDefault("SESSION_TIME_LIMIT_MEDIUM", "15m")
	viper.SetDefault("SESSION_TIME_LIMIT_HARD", "25m")
	viper.SetDefault("SESSION_ATTEMPT_BASE", 5)

	viper.SetDefault("CHALLENGE_OPEN_TIME", "18:00")
	viper.SetDefault("CHALLENGE_DURATION", "4h")

	viper.SetDefault("GATEWAY_MAX_CONCURRENT", 5)
	viper.SetDefault("GATEWAY_RETRY_ATTEMPTS", 3)
	viper.SetDefault("GATEWAY_RETRY_DELAY", "1s")

	viper.SetDefault("RABBITMQ_QUEUE", "challenge_events")

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.RabbitMQ.URL = viper.GetString("RABBITMQ_URL")
	config.RabbitMQ.Queue = viper.GetString("RABBITMQ_QUEUE")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.ReferenceTimezone = viper.GetString("REFERENCE_TIMEZONE")

	config.Grader.Threshold = viper.GetFloat64("GRADER_THRESHOLD")

	config.Scoring.BaseEasy = viper.GetInt("SCORE_BASE_EASY")
	config.Scoring.BaseMedium = viper.GetInt("SCORE_BASE_MEDIUM")
	config.Scoring.BaseHard = viper.GetInt("SCORE_BASE_HARD")
	config.Scoring.IncorrectPenalty = viper.GetInt("SCORE_INCORRECT_PENALTY")
	config.Scoring.StreakUnit = viper.GetInt("SCORE_STREAK_UNIT")
	config.Scoring.StreakCap = viper.GetInt("SCORE_STREAK_CAP")
	config.Scoring.ChallengeMultiplier = viper.GetInt("SCORE_CHALLENGE_MULTIPLIER")

	config.Session.TimeLimitEasy = viper.GetDuration("SESSION_TIME_LIMIT_EASY")
	config.Session.TimeLimitMedium = viper.GetDuration("SESSION_TIME_LIMIT_MEDIUM")
	config.Session.TimeLimitHard = viper.GetDuration("SESSION_TIME_LIMIT_HARD")
	config.Session.AttemptBase = viper.GetInt("SESSION_ATTEMPT_BASE")

	config.Challenge.OpenTime = viper.GetString("CHALLENGE_OPEN_TIME")
	config.Challenge.Duration = viper.GetDuration("CHALLENGE_DURATION")

	config.Gateway.MaxConcurrent = viper.GetInt64("GATEWAY_MAX_CONCURRENT")
	config.Gateway.RetryAttempts = viper.GetInt("GATEWAY_RETRY_ATTEMPTS")
	config.Gateway.RetryDelay = viper.GetDuration("GATEWAY_RETRY_DELAY")

	log.Info().Str("port", config.Server.Port).Str("tz", config.ReferenceTimezone).Msg("Config loaded")
	return &config, nil
}

// Location resolves the reference timezone, falling back to UTC if the name
// is unknown on this host.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		log.Error().Err(err).Str("tz", c.ReferenceTimezone).Msg("Unknown reference timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}
