package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	CONFIG_FILE = "config/config.yaml"

	STORAGE_BACKEND_BOLT     = "bolt"
	STORAGE_BACKEND_POSTGRES = "postgres"
)

var (
	config     Config
	onceConfig sync.Once
)

func GetConfig(forceNewInstance ...bool) Config {
	if len(forceNewInstance) > 0 && forceNewInstance[0] {
		newInstance := NewConfig()
		config = newInstance
		onceConfig = sync.Once{}
		onceConfig.Do(func() {})
		return newInstance
	}

	onceConfig.Do(func() {
		config = NewConfig()
	})

	return config
}

type Config struct {
	Log           LogConfig     `yaml:"log" json:"-"`
	HTTPAPIServer HTTPAPIServer `yaml:"http_api_server" json:"-"`
	DNSSD         DNSSD         `yaml:"dns_sd" json:"-"`
	Storage       StorageConfig `yaml:"storage" json:"-"`
}

type LogConfig struct {
	Level string `yaml:"level"  json:"-"`
}

type HTTPAPIServer struct {
	Host string `yaml:"host" json:"-"`
	Port int    `yaml:"port" json:"-"`
}

type DNSSD struct {
	Enabled       bool   `yaml:"enabled" json:"-"`
	ServiceName   string `yaml:"service_name" json:"-"`
	ServiceType   string `yaml:"service_type" json:"-"`
	ServiceDomain string `yaml:"service_domain" json:"-"`
	ServicePort   int    `yaml:"service_port" json:"-"`
	Version       string `yaml:"version" json:"-"`
}

type StorageConfig struct {
	Backend  string                `yaml:"backend" json:"-"`
	Bolt     BoltStorageConfig     `yaml:"bolt" json:"-"`
	Postgres PostgresStorageConfig `yaml:"postgres" json:"-"`
}

type BoltStorageConfig struct {
	Path    string        `yaml:"path" json:"-"`
	Timeout time.Duration `yaml:"timeout" json:"-"`
}

type PostgresStorageConfig struct {
	CredentialsPath   string        `yaml:"credentials_path" json:"-"`
	EnvVarName        string        `yaml:"env_var_name" json:"-"`
	Url               string        `yaml:"url" json:"url"`
	Table             string        `yaml:"table" json:"-"`
	MaxOpenConns      int           `yaml:"max_open_conns" json:"-"`
	ConnectRetries    int           `yaml:"connect_retries" json:"-"`
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay" json:"-"`
}

// DefaultConfig is what an empty or missing config file resolves to.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level: "warn",
		},
		HTTPAPIServer: HTTPAPIServer{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DNSSD: DNSSD{
			Enabled:       false,
			ServiceName:   "blocks-api",
			ServiceType:   "_http._tcp",
			ServiceDomain: "local.",
			ServicePort:   8080,
			Version:       "0.1",
		},
		Storage: StorageConfig{
			Backend: STORAGE_BACKEND_BOLT,
			Bolt: BoltStorageConfig{
				Path:    "blocks.db",
				Timeout: time.Second,
			},
			Postgres: PostgresStorageConfig{
				EnvVarName:        "DATABASE_URL",
				Table:             "blocks",
				MaxOpenConns:      10,
				ConnectRetries:    5,
				ConnectRetryDelay: 3 * time.Second,
			},
		},
	}
}

func NewConfig() Config {
	godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = CONFIG_FILE
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		panic(err)
	}

	return config
}

// LoadConfig reads the YAML file at configPath over DefaultConfig. A missing
// file is not an error.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(configPath)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err == nil {
		defer file.Close()

		d := yaml.NewDecoder(file)
		if err := d.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return config, fmt.Errorf("failed to decode %s: %w", configPath, err)
		}
	}

	if config.Storage.Backend == STORAGE_BACKEND_POSTGRES {
		url, err := loadDatabaseURL(
			config.Storage.Postgres.EnvVarName,
			configPath,
			config.Storage.Postgres.CredentialsPath,
		)
		if err == nil {
			config.Storage.Postgres.Url = url
		} else if config.Storage.Postgres.Url == "" {
			return config, err
		}
	}

	switch config.Storage.Backend {
	case STORAGE_BACKEND_BOLT, STORAGE_BACKEND_POSTGRES:
	default:
		return config, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	if config.DNSSD.ServicePort == 0 {
		config.DNSSD.ServicePort = config.HTTPAPIServer.Port
	}

	return config, nil
}

// SetHTTPAPIPort overrides the listening port, keeping the advertised port in sync.
func (c *Config) SetHTTPAPIPort(port int) {
	c.HTTPAPIServer.Port = port
	c.DNSSD.ServicePort = port
}
