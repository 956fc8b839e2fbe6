package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DatabaseConfig carries the Postgres connection string.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// StorageConfig selects and configures the blob store backend.
// Driver is either "local" (Path is the upload directory) or "s3".
type StorageConfig struct {
	Driver string   `mapstructure:"driver"`
	Path   string   `mapstructure:"path"`
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines the session token configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// UploadConfig bounds what the ingestion pipeline accepts.
type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override the file, e.g.
	// database.dsn -> DATABASE_DSN, jwt.expiration -> JWT_EXPIRATION.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.dsn", "postgres://localhost:5432/snapverse")
	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("storage.path", "./uploads")
	viper.SetDefault("storage.s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("upload.max_file_size", 2*1024*1024) // 2MB

	err = viper.ReadInConfig()
	// Missing config file is fine; defaults and env vars still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
