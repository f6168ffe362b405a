package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type OutputConfig struct {
	Destination  string   `mapstructure:"destination"` // console, json, csv, kafka, parquet, postgres or none
	Folder       string   `mapstructure:"folder"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

type StorageConfig struct {
	Backend         string `mapstructure:"backend"` // file or s3
	Folder          string `mapstructure:"folder"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"` // set for R2, MinIO and other S3 compatible stores
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
}

type Config struct {
	RestaurantName string        `mapstructure:"restaurant_name"`
	Currency       string        `mapstructure:"currency"`
	DataFile       string        `mapstructure:"data_file"`
	LogLevel       string        `mapstructure:"log_level"`
	DatabaseURL    string        `mapstructure:"database_url"`
	Output         OutputConfig  `mapstructure:"output"`
	Storage        StorageConfig `mapstructure:"storage"`
	Server         ServerConfig  `mapstructure:"server"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("restaurant_name", DefaultRestaurantName)
	v.SetDefault("currency", DefaultCurrency)
	v.SetDefault("data_file", "menu_data.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("output.destination", "none")
	v.SetDefault("output.folder", "output")
	v.SetDefault("output.kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.folder", ".")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.session_ttl", "2h")
}

// LoadConfig reads the configuration from cfgFile (or the default search path),
// the environment and any flags already bound to v.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("menuboard")
	}

	v.SetEnvPrefix("menuboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Output.Destination {
	case "", "none", "console", "json", "csv", "kafka", "parquet", "postgres":
	default:
		return fmt.Errorf("unsupported output destination: %s", cfg.Output.Destination)
	}
	switch cfg.Storage.Backend {
	case "", "file":
	case "s3":
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
	if cfg.Output.Destination == "postgres" && cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required for the postgres output")
	}
	return nil
}
