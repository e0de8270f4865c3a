package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the loaded configuration.
var Module = fx.Provide(Load)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	TrialDurationDays int

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	InitializeRatePerMinute float64
	InitializeRateBurst     int

	OpenAIAPIKey string
	OpenAIModel  string

	AWSRegion    string
	S3Bucket     string
	S3PublicBase string

	FFmpegPath string
	TempDir    string

	YouTubeEnabled      bool
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeRefreshToken string
	YouTubePrivacy      string

	PodcastEnabled bool
	PodcastAPIURL  string
	PodcastAPIKey  string
	PodcastShowID  string

	PipelineWorkers   int
	PipelineQueueSize int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "coach"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		TrialDurationDays: getenvInt("TRIAL_DURATION_DAYS", 7),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "coach"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		InitializeRatePerMinute: getenvFloat("INITIALIZE_RATE_PER_MINUTE", 30),
		InitializeRateBurst:     getenvInt("INITIALIZE_RATE_BURST", 10),

		OpenAIAPIKey: strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
		OpenAIModel:  getenv("OPENAI_MODEL", "gpt-4o-mini"),

		AWSRegion:    getenv("AWS_REGION", "us-east-1"),
		S3Bucket:     getenv("S3_BUCKET_NAME", "purposeful-coaching-sessions"),
		S3PublicBase: getenv("S3_PUBLIC_BASE_URL", ""),

		FFmpegPath: getenv("FFMPEG_PATH", "ffmpeg"),
		TempDir:    getenv("PIPELINE_TEMP_DIR", os.TempDir()),

		YouTubeEnabled:      getenvBool("YOUTUBE_ENABLED", false),
		YouTubeClientID:     strings.TrimSpace(getenv("YOUTUBE_CLIENT_ID", "")),
		YouTubeClientSecret: strings.TrimSpace(getenv("YOUTUBE_CLIENT_SECRET", "")),
		YouTubeRefreshToken: strings.TrimSpace(getenv("YOUTUBE_REFRESH_TOKEN", "")),
		YouTubePrivacy:      getenv("YOUTUBE_PRIVACY_STATUS", "public"),

		PodcastEnabled: getenvBool("PODCAST_ENABLED", false),
		PodcastAPIURL:  strings.TrimSpace(getenv("PODCAST_API_URL", "")),
		PodcastAPIKey:  strings.TrimSpace(getenv("PODCAST_API_KEY", "")),
		PodcastShowID:  strings.TrimSpace(getenv("PODCAST_SHOW_ID", "")),

		PipelineWorkers:   getenvInt("PIPELINE_WORKERS", 2),
		PipelineQueueSize: getenvInt("PIPELINE_QUEUE_SIZE", 64),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
