package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"matchwell/backend/internal/logging"
)

// Config holds the application configuration.
type Config struct {
	ServerAddr  string        `mapstructure:"SERVER_ADDR"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	EmailTopic   string `mapstructure:"EMAIL_TOPIC"`

	DispatchWorkers   int           `mapstructure:"DISPATCH_WORKERS"`
	DispatchQueueSize int           `mapstructure:"DISPATCH_QUEUE_SIZE"`
	DispatchTimeout   time.Duration `mapstructure:"DISPATCH_TIMEOUT"`

	BoostReferralThreshold int           `mapstructure:"BOOST_REFERRAL_THRESHOLD"`
	BoostWindow            time.Duration `mapstructure:"BOOST_WINDOW"`
	ReferralCacheTTL       time.Duration `mapstructure:"REFERRAL_CACHE_TTL"`
	NotificationTTL        time.Duration `mapstructure:"NOTIFICATION_TTL"`
}

// Brokers splits KafkaBrokers into a list, dropping empty entries.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 7*24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EMAIL_TOPIC", "email-requests")
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 1024)
	v.SetDefault("DISPATCH_TIMEOUT", 5*time.Second)
	v.SetDefault("BOOST_REFERRAL_THRESHOLD", 3)
	v.SetDefault("BOOST_WINDOW", 30*24*time.Hour)
	v.SetDefault("REFERRAL_CACHE_TTL", 5*time.Minute)
	v.SetDefault("NOTIFICATION_TTL", 30*24*time.Hour)
}

// Load reads configuration from a .env file in path and from environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logging.Logger.Warn().Msg(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads the configuration from a .env file and environment variables into AppConfig.
func LoadConfig() error {
	cfg, err := Load(".")
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}
