package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Bus      BusConfig
	Storage  StorageConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	URL        string
	Credential string
	Timeout    time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type BusConfig struct {
	URL     string
	Subject string
}

type StorageConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	PublicURLBase  string
	PresignTTL     time.Duration
	Timeout        time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("AUTH_URL", "http://localhost:9099")
	v.SetDefault("AUTH_CREDENTIAL", "")
	v.SetDefault("AUTH_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shellos_packages")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "packages.catalog.changed")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "shellos-packages")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_FORCE_PATH_STYLE", true)
	v.SetDefault("S3_PUBLIC_URL_BASE", "")
	v.SetDefault("S3_PRESIGN_TTL", "24h")
	v.SetDefault("S3_TIMEOUT", "30s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Auth: AuthConfig{
			URL:        v.GetString("AUTH_URL"),
			Credential: v.GetString("AUTH_CREDENTIAL"),
			Timeout:    duration(v, "AUTH_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Bus: BusConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
		Storage: StorageConfig{
			Endpoint:       v.GetString("S3_ENDPOINT"),
			Region:         v.GetString("S3_REGION"),
			Bucket:         v.GetString("S3_BUCKET"),
			AccessKey:      v.GetString("S3_ACCESS_KEY"),
			SecretKey:      v.GetString("S3_SECRET_KEY"),
			ForcePathStyle: v.GetBool("S3_FORCE_PATH_STYLE"),
			PublicURLBase:  v.GetString("S3_PUBLIC_URL_BASE"),
			PresignTTL:     duration(v, "S3_PRESIGN_TTL", 24*time.Hour),
			Timeout:        duration(v, "S3_TIMEOUT", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
