package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

// Config is built once at startup and treated as read-only afterwards.
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Genius    GeniusConfig
	YouTube   YouTubeConfig
	Groq      GroqConfig
	Suno      SunoConfig
	R2        R2Config
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
	// PublicBaseURL is the externally reachable address used for the
	// callback field the music API insists on.
	PublicBaseURL string
	// SessionMaxIdle is how long an untouched session is kept in memory.
	SessionMaxIdle time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	SearchPerMin int
	ParodyPerMin int
	MusicPerHour int
}

type GeniusConfig struct {
	AccessToken string
	BaseURL     string
}

type YouTubeConfig struct {
	APIKey   string
	Endpoint string
}

type GroqConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type SunoConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	PollMaxTicks int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	// Endpoint overrides the account endpoint, e.g. for a local S3 stand-in
	Endpoint string
}

// CallbackURL returns the callback address submitted with every music job.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/music-callback"
}

func Load() (*Config, error) {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GENIUS_CLIENT_ACCESS_TOKEN")
	readSecret("YOUTUBE_API_KEY")
	readSecret("GROQ_API_KEY")
	readSecret("SUNO_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.public_base_url", "PUBLIC_BASE_URL")
	_ = v.BindEnv("server.session_max_idle", "SESSION_MAX_IDLE")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("ratelimit.search_per_min", "RATELIMIT_SEARCH_PER_MIN")
	_ = v.BindEnv("ratelimit.parody_per_min", "RATELIMIT_PARODY_PER_MIN")
	_ = v.BindEnv("ratelimit.music_per_hour", "RATELIMIT_MUSIC_PER_HOUR")
	_ = v.BindEnv("genius.access_token", "GENIUS_CLIENT_ACCESS_TOKEN")
	_ = v.BindEnv("genius.base_url", "GENIUS_BASE_URL")
	_ = v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("youtube.endpoint", "YOUTUBE_ENDPOINT")
	_ = v.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = v.BindEnv("groq.model", "GROQ_MODEL")
	_ = v.BindEnv("groq.max_tokens", "GROQ_MAX_TOKENS")
	_ = v.BindEnv("suno.api_key", "SUNO_API_KEY")
	_ = v.BindEnv("suno.base_url", "SUNO_BASE_URL")
	_ = v.BindEnv("suno.model", "SUNO_MODEL")
	_ = v.BindEnv("suno.poll_interval", "SUNO_POLL_INTERVAL")
	_ = v.BindEnv("suno.poll_max_ticks", "SUNO_POLL_MAX_TICKS")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("r2.endpoint", "R2_ENDPOINT")

	// Defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.public_base_url", "http://localhost:3000")
	v.SetDefault("server.session_max_idle", time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.search_per_min", 30)
	v.SetDefault("ratelimit.parody_per_min", 10)
	v.SetDefault("ratelimit.music_per_hour", 10)

	// Genius defaults
	v.SetDefault("genius.base_url", "https://api.genius.com")

	// Groq defaults
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("groq.max_tokens", 2048)

	// Suno defaults
	v.SetDefault("suno.base_url", "https://api.sunoapi.org")
	v.SetDefault("suno.model", "V4")
	v.SetDefault("suno.poll_interval", 10*time.Second)
	v.SetDefault("suno.poll_max_ticks", 60)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			Env:            v.GetString("server.env"),
			LogLevel:       v.GetString("server.log_level"),
			PublicBaseURL:  v.GetString("server.public_base_url"),
			SessionMaxIdle: v.GetDuration("server.session_max_idle"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			SearchPerMin: v.GetInt("ratelimit.search_per_min"),
			ParodyPerMin: v.GetInt("ratelimit.parody_per_min"),
			MusicPerHour: v.GetInt("ratelimit.music_per_hour"),
		},
		Genius: GeniusConfig{
			AccessToken: v.GetString("genius.access_token"),
			BaseURL:     v.GetString("genius.base_url"),
		},
		YouTube: YouTubeConfig{
			APIKey:   v.GetString("youtube.api_key"),
			Endpoint: v.GetString("youtube.endpoint"),
		},
		Groq: GroqConfig{
			APIKey:    v.GetString("groq.api_key"),
			BaseURL:   v.GetString("groq.base_url"),
			Model:     v.GetString("groq.model"),
			MaxTokens: v.GetInt("groq.max_tokens"),
		},
		Suno: SunoConfig{
			APIKey:       v.GetString("suno.api_key"),
			BaseURL:      v.GetString("suno.base_url"),
			Model:        v.GetString("suno.model"),
			PollInterval: v.GetDuration("suno.poll_interval"),
			PollMaxTicks: v.GetInt("suno.poll_max_ticks"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
			Endpoint:        v.GetString("r2.endpoint"),
		},
	}

	return cfg, nil
}
