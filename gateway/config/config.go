package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	API    APIConfig    `mapstructure:"api"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	MinIO  MinIOConfig  `mapstructure:"minio"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	MetricsPort    string `mapstructure:"metrics_port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	Mode           string `mapstructure:"mode"`
}

// APIConfig points at the Material Record Service.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AssetsURL string        `mapstructure:"assets_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	v := viper.New()

	// 设置默认值
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.metrics_port", "2112")
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.assets_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("auth.token_ttl", 8*time.Hour)
	v.SetDefault("kafka.topic", "material.consigned")
	v.SetDefault("minio.bucket_name", "gazotheque-labels")
	v.SetDefault("minio.url_expiry", 24*time.Hour)
	v.SetDefault("log.level", "info")

	v.AutomaticEnv()

	bindings := map[string]string{
		"server.port":             "GATEWAY_PORT",
		"server.metrics_port":     "METRICS_PORT",
		"server.allowed_origins":  "ALLOWED_ORIGINS",
		"server.mode":             "GIN_MODE",
		"api.base_url":            "API_BASE_URL",
		"api.assets_url":          "ASSETS_BASE_URL",
		"api.timeout":             "API_TIMEOUT",
		"auth.jwt_secret":         "JWT_SECRET",
		"auth.token_ttl":          "TOKEN_TTL",
		"kafka.brokers":           "KAFKA_BROKERS",
		"kafka.topic":             "KAFKA_TOPIC_CONSIGNED",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.bucket_name":       "MINIO_LABEL_BUCKET",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"minio.url_expiry":        "MINIO_URL_EXPIRY",
		"log.level":               "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *KafkaConfig) Enabled() bool { return strings.TrimSpace(c.Brokers) != "" }

func (c *MinIOConfig) Enabled() bool { return c.Endpoint != "" }
