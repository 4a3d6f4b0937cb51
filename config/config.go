package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Database struct {
		Driver     string `mapstructure:"driver"`
		SQLitePath string `mapstructure:"sqlite_path"`
		DSN        string `mapstructure:"dsn"`
		Seed       bool   `mapstructure:"seed"`
	} `mapstructure:"database"`
	Socket struct {
		CORSAllowed string `mapstructure:"cors_allowed"`
		SendQueue   int    `mapstructure:"send_queue"`
	} `mapstructure:"socket"`
	Static struct {
		DocsDir          string `mapstructure:"docs_dir"`
		ProductImagesDir string `mapstructure:"product_images_dir"`
	} `mapstructure:"static"`
	Notes struct {
		TTL           time.Duration `mapstructure:"ttl"`
		PurgeSchedule string        `mapstructure:"purge_schedule"`
	} `mapstructure:"notes"`
	Auth struct {
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
		BcryptCost int           `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
	Providers struct {
		Kind          string        `mapstructure:"kind"`
		CurrencyURL   string        `mapstructure:"currency_url"`
		WeatherURL    string        `mapstructure:"weather_url"`
		WeatherAPIKey string        `mapstructure:"weather_api_key"`
		Timeout       time.Duration `mapstructure:"timeout"`
		CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"providers"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Images struct {
		Backend        string `mapstructure:"backend"`
		Dir            string `mapstructure:"dir"`
		MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	} `mapstructure:"images"`
	Minio struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
	} `mapstructure:"minio"`
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/open-data.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.seed", true)
	v.SetDefault("socket.cors_allowed", "*")
	v.SetDefault("socket.send_queue", 256)
	v.SetDefault("static.docs_dir", "docs")
	v.SetDefault("static.product_images_dir", "docs/products")
	v.SetDefault("notes.ttl", 24*time.Hour)
	v.SetDefault("notes.purge_schedule", "0 0 * * *")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("providers.kind", "mock")
	v.SetDefault("providers.currency_url", "")
	v.SetDefault("providers.weather_url", "")
	v.SetDefault("providers.weather_api_key", "")
	v.SetDefault("providers.timeout", 10*time.Second)
	v.SetDefault("providers.cache_ttl", 10*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("images.backend", "disk")
	v.SetDefault("images.dir", "data/images")
	v.SetDefault("images.max_upload_bytes", 5<<20)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "images")
}

// Load reads configuration from file (when present), ODA_* environment
// variables and defaults, in increasing order of precedence from defaults to env.
// An empty path searches for config.yaml in the usual locations.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("oda")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig loads configuration into C.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	C = cfg
	return nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Providers.Kind {
	case "mock":
	case "http":
		if c.Providers.CurrencyURL == "" || c.Providers.WeatherURL == "" {
			return errors.New("providers.currency_url and providers.weather_url are required for http providers")
		}
	default:
		return fmt.Errorf("unsupported providers.kind %q", c.Providers.Kind)
	}
	switch c.Images.Backend {
	case "disk":
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" || c.Minio.Bucket == "" {
			return errors.New("minio configuration incomplete")
		}
	default:
		return fmt.Errorf("unsupported images.backend %q", c.Images.Backend)
	}
	if c.Notes.TTL <= 0 {
		return errors.New("notes.ttl must be positive")
	}
	return nil
}
