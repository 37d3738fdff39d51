package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // "memory", "file", "redis", "postgres"
	Directory   string `mapstructure:"directory"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type AssignmentConfig struct {
	MinHOSHours          float64 `mapstructure:"min_hos_hours"`
	AllowAssignedDrivers bool    `mapstructure:"allow_assigned_drivers"`
}

type KafkaConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	BrokerList       string        `mapstructure:"broker_list"`
	Topic            string        `mapstructure:"topic"`
	SessionTimeoutMs int           `mapstructure:"session_timeout_ms"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"` // only "s3"
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type ExportConfig struct {
	Format       string             `mapstructure:"format"`      // "json" or "parquet"
	Destination  string             `mapstructure:"destination"` // "local" or "cloud"
	OutputPath   string             `mapstructure:"output_path"`
	OutputFolder string             `mapstructure:"output_folder"`
	Schedule     string             `mapstructure:"schedule"` // cron expression, empty disables
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

type FixtureConfig struct {
	Source   string    `mapstructure:"source"` // "mock" or "generated"
	Seed     int64     `mapstructure:"seed"`
	Drivers  int       `mapstructure:"drivers"`
	Assets   int       `mapstructure:"assets"`
	Trailers int       `mapstructure:"trailers"`
	Trips    int       `mapstructure:"trips"`
	Now      time.Time `mapstructure:"now"` // zero means wall clock at seed time
}

type Config struct {
	LogLevel      string           `mapstructure:"log_level"`
	LogsDirectory string           `mapstructure:"logs_directory"`
	ServerAddr    string           `mapstructure:"server_addr"`
	Store         StoreConfig      `mapstructure:"store"`
	Assignment    AssignmentConfig `mapstructure:"assignment"`
	Kafka         KafkaConfig      `mapstructure:"kafka"`
	Export        ExportConfig     `mapstructure:"export"`
	Fixtures      FixtureConfig    `mapstructure:"fixtures"`
}

// SetDefaults registers every default on v so that env overrides resolve
// even when no config file mentions the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("logs_directory", "")
	v.SetDefault("server_addr", ":8080")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.directory", "data")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "")
	v.SetDefault("store.postgres_dsn", "")

	v.SetDefault("assignment.min_hos_hours", 4.0)
	v.SetDefault("assignment.allow_assigned_drivers", false)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("kafka.topic", "fleet-events")
	v.SetDefault("kafka.session_timeout_ms", 0)
	v.SetDefault("kafka.dial_timeout", "30s")

	v.SetDefault("export.format", "json")
	v.SetDefault("export.destination", "local")
	v.SetDefault("export.output_path", "output")
	v.SetDefault("export.output_folder", "snapshots")
	v.SetDefault("export.schedule", "")
	v.SetDefault("export.cloud_storage.provider", "s3")
	v.SetDefault("export.cloud_storage.bucket_name", "")
	v.SetDefault("export.cloud_storage.region", "us-east-1")

	v.SetDefault("fixtures.source", "mock")
	v.SetDefault("fixtures.seed", 42)
	v.SetDefault("fixtures.drivers", 20)
	v.SetDefault("fixtures.assets", 15)
	v.SetDefault("fixtures.trailers", 15)
	v.SetDefault("fixtures.trips", 12)
}

// LoadConfig reads .env, the optional config file and FLEETOPS_* environment
// variables into a Config.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetEnvPrefix("fleetops")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("fleetops")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
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
	switch cfg.Store.Backend {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("config: unsupported store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "postgres" && strings.TrimSpace(cfg.Store.PostgresDSN) == "" {
		return errors.New("config: store.postgres_dsn is required for the postgres backend")
	}
	if cfg.Assignment.MinHOSHours < 0 {
		return fmt.Errorf("config: assignment.min_hos_hours must not be negative, got %v", cfg.Assignment.MinHOSHours)
	}
	switch cfg.Export.Format {
	case "json", "parquet":
	default:
		return fmt.Errorf("config: unsupported export format %q", cfg.Export.Format)
	}
	switch cfg.Fixtures.Source {
	case "mock", "generated":
	default:
		return fmt.Errorf("config: unsupported fixture source %q", cfg.Fixtures.Source)
	}
	return nil
}
