package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig is optional. An empty Addr disables the catalog cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig is optional. An empty Endpoint disables thumbnail uploads.
type StorageConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	BucketThumbnails  string
	UseSSL            bool
	Region            string
	PublicBaseURL     string
	MaxThumbnailBytes int64
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

type CacheConfig struct {
	CatalogTTL time.Duration
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Cache            CacheConfig
	AllowCORSOrigins []string
}

// keys without defaults must be bound explicitly or AutomaticEnv never sees them during Unmarshal
var envKeys = []string{
	"postgres.dsn",
	"http.port",
	"security.jwtsecret",
	"redis.addr",
	"redis.password",
	"storage.endpoint",
	"storage.accesskey",
	"storage.secretkey",
	"storage.publicbaseurl",
	"allowcorsorigins",
}

func Load() (*AppConfig, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ZEHNIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if strings.TrimSpace(c.Security.JWTSecret) == "" {
		errs = append(errs, errors.New("security.jwtsecret is required"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be set to a valid port, got %d", c.HTTP.Port))
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, errors.New("security.tokenttl must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *AppConfig) StorageEnabled() bool {
	return c.Storage.Endpoint != ""
}

func (c *AppConfig) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucketthumbnails", "zehnify-thumbnails")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxthumbnailbytes", 5<<20)

	v.SetDefault("security.tokenttl", "24h")
	v.SetDefault("security.issuer", "zehnify")

	v.SetDefault("cache.catalogttl", "5m")
}
