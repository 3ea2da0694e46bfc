package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigin string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Storage backends: memory, redis or mongo.
	DraftBackend      string `mapstructure:"DRAFT_BACKEND"`
	PreferenceBackend string `mapstructure:"PREFERENCE_BACKEND"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDraftDB      int    `mapstructure:"REDIS_DRAFT_DB"`
	RedisPreferenceDB int    `mapstructure:"REDIS_PREFERENCE_DB"`
	RedisQueueDB      int    `mapstructure:"REDIS_QUEUE_DB"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Wizard timings.
	DraftTTL       time.Duration `mapstructure:"DRAFT_TTL"`
	PersistTimeout time.Duration `mapstructure:"PERSIST_TIMEOUT"`
	SubmitDelay    time.Duration `mapstructure:"SUBMIT_DELAY"`
	SummaryTTL     time.Duration `mapstructure:"SUMMARY_TTL"`
	SessionIdleTTL time.Duration `mapstructure:"SESSION_IDLE_TTL"`

	// How often idle sessions and expired summaries are evicted in process.
	JanitorInterval time.Duration `mapstructure:"JANITOR_INTERVAL"`

	// Country detection: none, fixed, ipapi or header.
	CountryDetector      string `mapstructure:"COUNTRY_DETECTOR"`
	DetectorFixedCountry string `mapstructure:"DETECTOR_FIXED_COUNTRY"`
	DetectorHeader       string `mapstructure:"DETECTOR_HEADER"`

	// Stale draft purge.
	DraftPurgeEnabled  bool          `mapstructure:"DRAFT_PURGE_ENABLED"`
	DraftPurgeInterval time.Duration `mapstructure:"DRAFT_PURGE_INTERVAL"`
	DraftMaxAge        time.Duration `mapstructure:"DRAFT_MAX_AGE"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DRAFT_BACKEND", "memory")
	v.SetDefault("PREFERENCE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DRAFT_DB", 0)
	v.SetDefault("REDIS_PREFERENCE_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "regwizard")
	v.SetDefault("DRAFT_TTL", 7*24*time.Hour)
	v.SetDefault("PERSIST_TIMEOUT", 2*time.Second)
	v.SetDefault("SUBMIT_DELAY", 1500*time.Millisecond)
	v.SetDefault("SUMMARY_TTL", 30*time.Minute)
	v.SetDefault("SESSION_IDLE_TTL", 2*time.Hour)
	v.SetDefault("JANITOR_INTERVAL", time.Minute)
	v.SetDefault("COUNTRY_DETECTOR", "none")
	v.SetDefault("DETECTOR_FIXED_COUNTRY", "")
	v.SetDefault("DETECTOR_HEADER", "CF-IPCountry")
	v.SetDefault("DRAFT_PURGE_ENABLED", false)
	v.SetDefault("DRAFT_PURGE_INTERVAL", time.Hour)
	v.SetDefault("DRAFT_MAX_AGE", 7*24*time.Hour)
}

// Load reads configuration from an optional .env file, config.yaml and the environment.
func Load() (Config, error) {
	// Values already present in the environment win over .env entries.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing")
	}

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.DraftBackend = strings.ToLower(cfg.DraftBackend)
	cfg.PreferenceBackend = strings.ToLower(cfg.PreferenceBackend)
	cfg.CountryDetector = strings.ToLower(cfg.CountryDetector)
	return cfg, nil
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
