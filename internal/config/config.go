package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	TransportLocal = "local"
	TransportRedis = "redis"
	TransportKafka = "kafka"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// Storage selects where the cart blob lives. Namespace scopes keys so that
// several storefronts can share one backend.
type Storage struct {
	Driver    string `mapstructure:"driver"    json:"driver"`
	Namespace string `mapstructure:"namespace" json:"namespace"`
}

type Notifier struct {
	Transport string   `mapstructure:"transport" json:"transport"`
	Channel   string   `mapstructure:"channel"   json:"channel"`
	Brokers   []string `mapstructure:"brokers"   json:"brokers"`
	Topic     string   `mapstructure:"topic"     json:"topic"`
	GroupID   string   `mapstructure:"group_id"  json:"group_id"`
}

type Handoff struct {
	CartURL       string        `mapstructure:"cart_url"       json:"cart_url"`
	TTL           time.Duration `mapstructure:"ttl"            json:"ttl"`
	AllowUnsigned bool          `mapstructure:"allow_unsigned" json:"allow_unsigned"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Storage     `mapstructure:"storage"     json:"storage"`
	Notifier    `mapstructure:"notifier"    json:"notifier"`
	Handoff     `mapstructure:"handoff"     json:"handoff"`
}

var (
	once   sync.Once
	config *Config
)

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger = logger.With().Str(log.KeyProcess, "loading dotenv").Logger()
		logger.Info().Msg("loading dotenv")
		if err := godotenv.Load(); err != nil {
			logger.Debug().Err(err).Msg("no .env file loaded")
		} else {
			logger.Info().Msg("loaded dotenv")
		}

		v := viper.New()
		v.SetConfigName(filename)
		v.AddConfigPath("./env")
		v.SetConfigType("yaml")
		setDefaults(v)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := v.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = v.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.namespace", "storefront")
	v.SetDefault("notifier.transport", TransportLocal)
	v.SetDefault("notifier.channel", "cart-updated")
	v.SetDefault("notifier.topic", "cart-updated")
	v.SetDefault("notifier.group_id", "")
	v.SetDefault("handoff.ttl", 15*time.Minute)
	v.SetDefault("handoff.allow_unsigned", true)
	v.SetDefault("db.migration_path", "file://migrations")
}
