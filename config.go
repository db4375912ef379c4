package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"BRAP_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"BRAP_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"BRAP_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"BRAP_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"BRAP_LOG_LEVEL"`
	LogFile            string        `yaml:"log_file" envconfig:"BRAP_LOG_FILE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"BRAP_PROFILER_ENABLE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"BRAP_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
	Rental             RentalConfig  `yaml:"rental"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BRAP_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BRAP_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BRAP_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BRAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BRAP_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BRAP_SERVER_SHUTDOWN_TIMEOUT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BRAP_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BRAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BRAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BRAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BRAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BRAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BRAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BRAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BRAP_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BRAP_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath      string        `yaml:"filepath" envconfig:"BRAP_BOLTDB_FILE_PATH"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"BRAP_BOLTDB_TIMEOUT"`
	BooksBucket   string        `yaml:"books_bucket" envconfig:"BRAP_BOLTDB_BOOKS_BUCKET"`
	RentalsBucket string        `yaml:"rentals_bucket" envconfig:"BRAP_BOLTDB_RENTALS_BUCKET"`
}

// RentalConfig groups the rental policy knobs. The late fee is expressed
// in currency units charged per started day past the due date.
type RentalConfig struct {
	LateFeePerDay int `yaml:"late_fee_per_day" envconfig:"BRAP_RENTAL_LATE_FEE_PER_DAY"`
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

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
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

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if len(config.BoltDB.BooksBucket) == 0 || len(config.BoltDB.RentalsBucket) == 0 {
		return errors.New("make sure to set valid boltdb buckets names in configuration file")
	}

	if config.Rental.LateFeePerDay <= 0 {
		config.Rental.LateFeePerDay = 1
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BRAP`.
	err = LoadConfigEnvs("BRAP", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
