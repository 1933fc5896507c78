package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	GrpcPort      string        `mapstructure:"GRPC_PORT"`
	StoreDriver   string        `mapstructure:"STORE_DRIVER"`
	RedisUrl      string        `mapstructure:"REDIS_URL"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	MongoUri      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	SnapshotTTL   time.Duration `mapstructure:"SNAPSHOT_TTL"`
	IsLocalCors   bool          `mapstructure:"LOCAL_CORS"`
}

var configKeys = map[string]any{
	"SERVER_PORT":    ":8080",
	"GRPC_PORT":      ":8082",
	"STORE_DRIVER":   StoreMemory,
	"REDIS_URL":      "localhost:6379",
	"REDIS_PASSWORD": "",
	"MONGO_URI":      "mongodb://localhost:27017",
	"MONGO_DATABASE": "quantum_gomoku",
	"SNAPSHOT_TTL":   "24h",
	"LOCAL_CORS":     false,
}

// Setup reads cfgPath and lets environment variables override it. A missing
// file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range configKeys {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return &cfg, nil
}
