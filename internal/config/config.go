package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
}

type NodeInfo struct {
	FQDN     string `yaml:"fqdn" env:"FQDN"`
	NodeName string `yaml:"nodeName" env:"NODE_NAME"`
}

type Server struct {
	Driver         string        `yaml:"driver" env:"DRIVER"` // postgres, sqlite
	PostgresDsn    string        `yaml:"postgresDsn" env:"POSTGRES_DSN"`
	RedisAddr      string        `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisDB        int           `yaml:"redisDB" env:"REDIS_DB"`
	MemcachedAddr  string        `yaml:"memcachedAddr" env:"MEMCACHED_ADDR"`
	EnableTrace    bool          `yaml:"enableTrace" env:"ENABLE_TRACE"`
	TraceEndpoint  string        `yaml:"traceEndpoint" env:"TRACE_ENDPOINT"`
	JwtSecret      string        `yaml:"jwtSecret" env:"JWT_SECRET"`
	Listen         string        `yaml:"listen" env:"LISTEN"`
	PersonCacheTTL time.Duration `yaml:"personCacheTTL" env:"PERSON_CACHE_TTL"`
}

const EnvPrefix = "ASPECTD_"

func defaults() Config {
	return Config{
		Server: Server{
			Driver:         "postgres",
			Listen:         ":8000",
			PersonCacheTTL: 10 * time.Minute,
		},
	}
}

// Load reads the yaml file at path, then applies ASPECTD_* environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to decode config")
		}
	}

	err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to parse environment")
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	switch c.Server.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unknown driver %q", c.Server.Driver)
	}
	if c.NodeInfo.FQDN == "" {
		return errors.New("nodeInfo.fqdn is required")
	}
	if c.Server.JwtSecret == "" {
		return errors.New("server.jwtSecret is required")
	}
	return nil
}

func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:     c.NodeInfo.FQDN,
		NodeName: c.NodeInfo.NodeName,
	}
}
