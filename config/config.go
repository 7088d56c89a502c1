package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	App       AppConfig       `yaml:"app" envconfig:"APP"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Log       LogConfig       `yaml:"log" envconfig:"LOG"`
	Weather   WeatherConfig   `yaml:"weather" envconfig:"OPENWEATHER"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	Redis     RedisConfig     `yaml:"redis" envconfig:"REDIS"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"MINIO"`
	Events    EventsConfig    `yaml:"events" envconfig:"EVENTS"`
	Writeback WritebackConfig `yaml:"writeback" envconfig:"WRITEBACK"`
	Sentry    SentryConfig    `yaml:"sentry" envconfig:"SENTRY"`
}

type AppConfig struct {
	Name    string `yaml:"name" split_words:"true"`
	Version string `yaml:"version" split_words:"true"`
	Env     string `yaml:"env" split_words:"true"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Host         string `yaml:"host" split_words:"true"`
	Port         string `yaml:"port" split_words:"true"`
	ReadTimeout  int    `yaml:"read_timeout" split_words:"true"`
	WriteTimeout int    `yaml:"write_timeout" split_words:"true"`
	IdleTimeout  int    `yaml:"idle_timeout" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level" split_words:"true"`
}

type WeatherConfig struct {
	Provider string        `yaml:"provider" split_words:"true"`
	BaseURL  string        `yaml:"base_url" split_words:"true"`
	GeoURL   string        `yaml:"geo_url" split_words:"true"`
	APIKey   string        `yaml:"api_key" split_words:"true"`
	Units    string        `yaml:"units" split_words:"true"`
	Lang     string        `yaml:"lang" split_words:"true"`
	Timeout  int           `yaml:"timeout" split_words:"true"`
	Breaker  BreakerConfig `yaml:"breaker" split_words:"true"`
}

// BreakerConfig trips after MaxFailures consecutive failures and probes
// again after OpenTimeout seconds.
type BreakerConfig struct {
	MaxFailures uint32 `yaml:"max_failures" split_words:"true"`
	OpenTimeout int    `yaml:"open_timeout" split_words:"true"`
}

type CacheConfig struct {
	Driver        string `yaml:"driver" split_words:"true"`
	WeatherRefTTL int    `yaml:"weather_ref_ttl" split_words:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	DB       int    `yaml:"db" split_words:"true"`
	PoolSize int    `yaml:"pool_size" split_words:"true"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" split_words:"true"`
	AccessKey string `yaml:"access_key" split_words:"true"`
	SecretKey string `yaml:"secret_key" split_words:"true"`
	Bucket    string `yaml:"bucket" split_words:"true"`
	Region    string `yaml:"region" split_words:"true"`
	UseSSL    bool   `yaml:"use_ssl" split_words:"true"`
}

type EventsConfig struct {
	Driver     string `yaml:"driver" split_words:"true"`
	DSN        string `yaml:"dsn" split_words:"true"`
	SqlitePath string `yaml:"sqlite_path" split_words:"true"`
	Table      string `yaml:"table" split_words:"true"`
}

type WritebackConfig struct {
	Workers         int `yaml:"workers" split_words:"true"`
	QueueSize       int `yaml:"queue_size" split_words:"true"`
	ShutdownTimeout int `yaml:"shutdown_timeout" split_words:"true"`
}

type SentryConfig struct {
	DSN   string `yaml:"dsn" split_words:"true"`
	Debug bool   `yaml:"debug" split_words:"true"`
}

// ConfigProvider loads and checks a Config.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider layers a YAML file and then the environment over
// DefaultConfig. A missing file is not an error.
type FileConfigProvider struct {
	configPath string
}

func NewFileConfigProvider(configPath string) *FileConfigProvider {
	return &FileConfigProvider{configPath: configPath}
}

// DefaultConfig holds the values used when neither the file nor the
// environment sets a key.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "city-weather",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10,
			WriteTimeout: 10,
			IdleTimeout:  120,
		},
		Log: LogConfig{
			Level: "info",
		},
		Weather: WeatherConfig{
			Provider: "openweathermap",
			BaseURL:  "https://api.openweathermap.org/data/2.5",
			GeoURL:   "http://api.openweathermap.org/geo/1.0",
			Units:    "metric",
			Lang:     "en",
			Timeout:  10,
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30,
			},
		},
		Cache: CacheConfig{
			Driver:        "redis",
			WeatherRefTTL: 300,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Storage: StorageConfig{
			Endpoint: "localhost:9000",
			Bucket:   "weather-data",
			Region:   "us-east-1",
		},
		Events: EventsConfig{
			Driver:     "sqlite",
			SqlitePath: "data/events.db",
			Table:      "fetch_weather_history",
		},
		Writeback: WritebackConfig{
			Workers:         4,
			QueueSize:       256,
			ShutdownTimeout: 10,
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	config := DefaultConfig()

	if err := p.loadFromFile(config); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	return config, nil
}

func (p *FileConfigProvider) loadFromFile(config *Config) error {
	data, err := os.ReadFile(p.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read config file %s", p.configPath)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.Wrapf(err, "parse config file %s", p.configPath)
	}
	return nil
}

func (p *FileConfigProvider) Validate(config *Config) error {
	var problems []string

	if strings.TrimSpace(config.App.Name) == "" {
		problems = append(problems, "app.name is required")
	}
	if strings.TrimSpace(config.Server.Port) == "" {
		problems = append(problems, "server.port is required")
	}
	switch config.Cache.Driver {
	case "redis", "memory":
	default:
		problems = append(problems, fmt.Sprintf("cache.driver %q must be redis or memory", config.Cache.Driver))
	}
	if config.Cache.WeatherRefTTL <= 0 {
		problems = append(problems, "cache.weather_ref_ttl must be positive")
	}
	switch config.Events.Driver {
	case "postgres":
		if config.Events.DSN == "" {
			problems = append(problems, "events.dsn is required for the postgres driver")
		}
	case "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("events.driver %q must be postgres or sqlite", config.Events.Driver))
	}
	if config.Writeback.Workers <= 0 {
		problems = append(problems, "writeback.workers must be positive")
	}
	if config.Writeback.QueueSize <= 0 {
		problems = append(problems, "writeback.queue_size must be positive")
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	config, err := provider.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if err := provider.Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// NewConfig reads CONFIG_PATH, or config/config.yaml when unset.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return NewConfigWithProvider(NewFileConfigProvider(path))
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
