package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB          int    `mapstructure:"REDIS_AUTH_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Identity provider tokens (HS256 shared secret).
	IdentityJWTSecret string `mapstructure:"IDENTITY_JWT_SECRET"`

	// Analysis upstreams.
	AnalysisAPIBaseURL   string        `mapstructure:"ANALYSIS_API_BASE_URL"`
	ImageAnalysisURL     string        `mapstructure:"IMAGE_ANALYSIS_URL"`
	GeminiAPIKey         string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string        `mapstructure:"GEMINI_MODEL"`
	AnalysisTimeout      time.Duration `mapstructure:"ANALYSIS_TIMEOUT"`
	MaxImageBytes        int64         `mapstructure:"MAX_IMAGE_BYTES"`
	APIKeySealSecret     string        `mapstructure:"API_KEY_SEAL_SECRET"`
	LastResultTTL        time.Duration `mapstructure:"LAST_RESULT_TTL"`
	ClinicTimezone       string        `mapstructure:"CLINIC_TIMEZONE"`
	ReminderLeadTime     time.Duration `mapstructure:"REMINDER_LEAD_TIME"`
	SendgridAPIKey       string        `mapstructure:"SENDGRID_API_KEY"`
	SendgridFromName     string        `mapstructure:"SENDGRID_FROM_NAME"`
	SendgridFromEmail    string        `mapstructure:"SENDGRID_FROM_EMAIL"`
	EthRPCURL            string        `mapstructure:"ETH_RPC_URL"`
	TreasuryAddress      string        `mapstructure:"TREASURY_ADDRESS"`
	HealthCheckInterval  time.Duration `mapstructure:"HEALTH_CHECK_INTERVAL"`
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`
	CORSAllowedOrigins   []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	DisableReminderQueue bool          `mapstructure:"DISABLE_REMINDER_QUEUE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "genzhealth")
	viper.SetDefault("IDENTITY_JWT_SECRET", "")
	viper.SetDefault("ANALYSIS_API_BASE_URL", "http://localhost:5000")
	viper.SetDefault("IMAGE_ANALYSIS_URL", "")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	viper.SetDefault("ANALYSIS_TIMEOUT", 60*time.Second)
	viper.SetDefault("MAX_IMAGE_BYTES", 10<<20)
	viper.SetDefault("API_KEY_SEAL_SECRET", "")
	viper.SetDefault("LAST_RESULT_TTL", 0)
	viper.SetDefault("CLINIC_TIMEZONE", "UTC")
	viper.SetDefault("REMINDER_LEAD_TIME", time.Hour)
	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("SENDGRID_FROM_NAME", "GenZ Health")
	viper.SetDefault("SENDGRID_FROM_EMAIL", "appointments@genzhealth.app")
	viper.SetDefault("ETH_RPC_URL", "")
	viper.SetDefault("TREASURY_ADDRESS", "")
	viper.SetDefault("HEALTH_CHECK_INTERVAL", 60*time.Second)
	viper.SetDefault("SHUTDOWN_GRACE_PERIOD", 5*time.Second)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DISABLE_REMINDER_QUEUE", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
