package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/lynx-api/internal/resolver"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	RealtimeChannel        string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	AnalysisCacheTTL       time.Duration
	Timezone               string
	DuplicatePolicy        resolver.DuplicatePolicy
	BoardLimitOnGoing      int
	BoardLimitSubmitted    int
	BoardLimitGraded       int
	SubmissionMaxMB        int
	ChatFileMaxMB          int
	AIProvider             string
	AIRequestTimeout       time.Duration
	LynxAPIURL             string
	OpenAIAPIKey           string
	OpenAIModel            string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LYNX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Lynx API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("realtime.channel", "lynx:live")
	v.SetDefault("cloudinary.folder", "synclearner")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("analysis.cache_ttl", "1h")
	v.SetDefault("timezone", "Asia/Jakarta")
	v.SetDefault("duplicate_policy", "first")
	v.SetDefault("board.limit_ongoing", 3)
	v.SetDefault("board.limit_submitted", 3)
	v.SetDefault("board.limit_graded", 2)
	v.SetDefault("submission.max_mb", 10)
	v.SetDefault("chat.file_max_mb", 5)
	v.SetDefault("ai.provider", "lynx")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("lynx.api_url", "https://lynx-ai.up.railway.app")
	v.SetDefault("openai.model", "gpt-4o-mini")

	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	analysisTTL, err := parseDuration(v, "analysis.cache_ttl", time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analysis cache ttl: %w", err)
	}

	aiTimeout, err := parseDuration(v, "ai.timeout", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		RealtimeChannel:        v.GetString("realtime.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      dashboardTTL,
		AnalysisCacheTTL:       analysisTTL,
		Timezone:               v.GetString("timezone"),
		BoardLimitOnGoing:      v.GetInt("board.limit_ongoing"),
		BoardLimitSubmitted:    v.GetInt("board.limit_submitted"),
		BoardLimitGraded:       v.GetInt("board.limit_graded"),
		SubmissionMaxMB:        v.GetInt("submission.max_mb"),
		ChatFileMaxMB:          v.GetInt("chat.file_max_mb"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		AIRequestTimeout:       aiTimeout,
		LynxAPIURL:             strings.TrimRight(v.GetString("lynx.api_url"), "/"),
		OpenAIAPIKey:           v.GetString("openai.api_key"),
		OpenAIModel:            v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	policy, err := resolver.ParseDuplicatePolicy(v.GetString("duplicate_policy"))
	if err != nil {
		return Config{}, err
	}
	cfg.DuplicatePolicy = policy

	switch cfg.AIProvider {
	case "lynx", "openai":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.SubmissionMaxMB <= 0 {
		cfg.SubmissionMaxMB = 10
	}

	if cfg.ChatFileMaxMB <= 0 {
		cfg.ChatFileMaxMB = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
