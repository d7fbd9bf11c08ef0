package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Store     StoreConfig
	Import    ImportConfig
	Matching  MatchingConfig
	Converter ConverterConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

// StoreConfig выбирает реализацию хранилища сущностей
type StoreConfig struct {
	Driver string
}

type ImportConfig struct {
	HistoryEnabled bool
	LockTTL        time.Duration
	SourcesFile    string
}

type MatchingConfig struct {
	DefaultRadius float64 // meters
}

type ConverterConfig struct {
	RequestTimeout time.Duration
	UserAgent      string
}

type WorkerConfig struct {
	Enabled                 bool
	ConsumerGroup           string
	StreamReadTimeout       time.Duration
	MaxRetries              int
	DefaultStaticSchedule   string
	DefaultRealtimeSchedule string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return fromViper(viper.GetViper()), nil
}

func fromViper(v *viper.Viper) *Config {
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("IMPORT_HISTORY_ENABLED", true)
	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("API_CORS_ORIGINS", "*")

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Driver: v.GetString("STORE_DRIVER"),
		},
		Import: ImportConfig{
			HistoryEnabled: v.GetBool("IMPORT_HISTORY_ENABLED"),
			LockTTL:        time.Duration(v.GetInt("IMPORT_LOCK_TTL")) * time.Second,
			SourcesFile:    v.GetString("IMPORT_SOURCES_FILE"),
		},
		Matching: MatchingConfig{
			DefaultRadius: v.GetFloat64("MATCHING_DEFAULT_RADIUS"),
		},
		Converter: ConverterConfig{
			RequestTimeout: time.Duration(v.GetInt("CONVERTER_REQUEST_TIMEOUT")) * time.Second,
			UserAgent:      v.GetString("CONVERTER_USER_AGENT"),
		},
		Worker: WorkerConfig{
			Enabled:                 v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:           v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout:       time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:              v.GetInt("WORKER_MAX_RETRIES"),
			DefaultStaticSchedule:   v.GetString("WORKER_STATIC_SCHEDULE"),
			DefaultRealtimeSchedule: v.GetString("WORKER_REALTIME_SCHEDULE"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Import.LockTTL == 0 {
		cfg.Import.LockTTL = 15 * time.Minute
	}
	if cfg.Import.SourcesFile == "" {
		cfg.Import.SourcesFile = "sources.yaml"
	}
	if cfg.Matching.DefaultRadius == 0 {
		cfg.Matching.DefaultRadius = 100
	}
	if cfg.Converter.RequestTimeout == 0 {
		cfg.Converter.RequestTimeout = 30 * time.Second
	}
	if cfg.Converter.UserAgent == "" {
		cfg.Converter.UserAgent = "parking-aggregator/1.0"
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "parking-import-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.DefaultStaticSchedule == "" {
		cfg.Worker.DefaultStaticSchedule = "0 3 * * *"
	}
	if cfg.Worker.DefaultRealtimeSchedule == "" {
		cfg.Worker.DefaultRealtimeSchedule = "@every 5m"
	}

	return cfg
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
