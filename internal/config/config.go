package config

import (
	"strconv"
	"time"

	"github.com/maxviazov/tennis-players-service/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	HTTP     HTTPConfig          `mapstructure:"http"`
	CORS     CORSConfig          `mapstructure:"cors"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Mongo    MongoConfig         `mapstructure:"mongo"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Players  PlayersConfig       `mapstructure:"players"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev staging prod test"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// CORSConfig lists allowed origins explicitly; "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age" validate:"min=0"`
}

// StorageConfig picks the PlayerRepository implementation.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=mongo postgres memory"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri" validate:"required_if=Enabled true"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Enabled        bool          `mapstructure:"-"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port              int    `mapstructure:"port" validate:"min=0,max=65535"`
	User              string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db" validate:"required_if=Enabled true"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	Enabled           bool   `mapstructure:"-"`
}

// PlayersConfig tunes the player service.
type PlayersConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"min=1"`
	MaxLimit     int `mapstructure:"max_limit" validate:"gtefield=DefaultLimit"`
	MaxBulk      int `mapstructure:"max_bulk" validate:"min=1"`
	// MergeMode is read_modify_write or atomic, see service.MergeMode.
	MergeMode string `mapstructure:"merge_mode" validate:"oneof=read_modify_write atomic"`
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.App.Port)
}
