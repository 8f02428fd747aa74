package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Supported storage drivers.
const (
	MongoDBDriver = "mongodb"
	BoltDBDriver  = "boltdb"
	RedisDriver   = "redis"
)

const (
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = "3000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMongoAppName    = "books-api"
	DefaultCollectionName  = "books"
	DefaultLogMaxSize      = 10
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"BOOKS_GIT_COMMIT" json:"git_commit"`
	GitTag                  string        `yaml:"git_tag" envconfig:"BOOKS_GIT_TAG" json:"git_tag"`
	BuildTime               string        `yaml:"build_time" envconfig:"BOOKS_BUILD_TIME" json:"build_time"`
	IsProduction            bool          `yaml:"is_production" envconfig:"BOOKS_IS_PRODUCTION" json:"is_production"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"BOOKS_LOG_LEVEL" json:"log_level"`
	LogFolder               string        `yaml:"log_folder" envconfig:"BOOKS_LOG_FOLDER" json:"log_folder"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"BOOKS_LOG_MAX_SIZE" json:"log_max_size"` // in megabytes
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"BOOKS_OPS_ENDPOINTS_ENABLE" json:"ops_endpoints_enable"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"BOOKS_PROFILER_ENDPOINTS_ENABLE" json:"profiler_endpoints_enable"`
	Server                  ServerConfig  `yaml:"server" json:"server"`
	Store                   StoreConfig   `yaml:"store" json:"store"`
	MongoDB                 MongoDBConfig `yaml:"mongodb" json:"mongodb"`
	Redis                   RedisConfig   `yaml:"redis" json:"redis"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb" json:"boltdb"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BOOKS_SERVER_HOST" json:"host"`
	Port            string        `yaml:"port" envconfig:"PORT" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BOOKS_SERVER_READ_TIMEOUT" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BOOKS_SERVER_WRITE_TIMEOUT" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BOOKS_SERVER_SHUTDOWN_TIMEOUT" json:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" envconfig:"BOOKS_STORE_DRIVER" json:"driver"`
}

// MongoDBConfig holds the document database settings. The URI
// may contain credentials so it is never exposed by json encoding.
type MongoDBConfig struct {
	URI        string `yaml:"uri" envconfig:"MONGODB_URI" json:"-"`
	Database   string `yaml:"database" envconfig:"MONGODB_DB" json:"database"`
	AppName    string `yaml:"app_name" envconfig:"MONGODB_APP_NAME" json:"app_name"`
	Collection string `yaml:"collection" envconfig:"MONGODB_COLLECTION" json:"collection"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BOOKS_REDIS_HOST" json:"host"`
	Port          string        `yaml:"port" envconfig:"BOOKS_REDIS_PORT" json:"port"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BOOKS_REDIS_DIAL_TIMEOUT" json:"dial_timeout"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BOOKS_REDIS_POOL_SIZE" json:"pool_size"`
	Username      string        `yaml:"username" envconfig:"BOOKS_REDIS_USERNAME" json:"-"`
	Password      string        `yaml:"password" envconfig:"BOOKS_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BOOKS_REDIS_DATABASE_INDEX" json:"db_index"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BOOKS_BOLTDB_FILE_PATH" json:"filepath"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BOOKS_BOLTDB_TIMEOUT" json:"timeout"`
	BucketName string        `yaml:"bucket_name" envconfig:"BOOKS_BOLTDB_BUCKET_NAME" json:"bucket_name"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables into the App config.
// Keys are taken verbatim from the envconfig tags so no prefix is used.
func LoadConfigEnvs(config *Config) error {
	return envconfig.Process("", config)
}

// LoadDotEnv sets the environment variables defined into the
// given dotenv file. A missing file is not considered an error.
func LoadDotEnv(filename string) error {
	err := godotenv.Load(filename)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// InitConfig setup defaults values for non provided parameters,
// configures build tags values to be used if provided and makes
// sure the selected storage driver has its mandatory settings.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 {
		config.Server.Host = DefaultServerHost
	}

	if port, err := strconv.ParseUint(config.Server.Port, 10, 16); err != nil || port == 0 {
		config.Server.Port = DefaultServerPort
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = DefaultLogMaxSize
	}

	if len(config.Store.Driver) == 0 {
		config.Store.Driver = MongoDBDriver
	}

	switch config.Store.Driver {
	case MongoDBDriver:
		if len(config.MongoDB.URI) == 0 {
			return &ConfigError{Key: "MONGODB_URI"}
		}
		if len(config.MongoDB.Database) == 0 {
			return &ConfigError{Key: "MONGODB_DB"}
		}
		if len(config.MongoDB.AppName) == 0 {
			config.MongoDB.AppName = DefaultMongoAppName
		}
		if len(config.MongoDB.Collection) == 0 {
			config.MongoDB.Collection = DefaultCollectionName
		}
	case BoltDBDriver:
		if len(config.BoltDB.FilePath) == 0 {
			config.BoltDB.FilePath = "books.db"
		}
		if config.BoltDB.Timeout <= 0 {
			config.BoltDB.Timeout = 5 * time.Second
		}
		if len(config.BoltDB.BucketName) == 0 {
			config.BoltDB.BucketName = DefaultCollectionName
		}
	case RedisDriver:
		if len(config.Redis.Host) == 0 {
			config.Redis.Host = "localhost"
		}
		if len(config.Redis.Port) == 0 {
			config.Redis.Port = "6379"
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Store.Driver)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The yaml file is optional and skipped
// when configFile is empty.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime, configFile string) (*Config, error) {
	config := &Config{}
	var err error
	if configFile != "" {
		config, err = LoadConfigFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configurations from file: %w", err)
		}
	}

	err = LoadDotEnv(".env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %w", err)
	}

	err = LoadConfigEnvs(config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %w", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %w", err)
	}
	return config, nil
}
