// Package config loads server settings from defaults, an optional YAML file,
// SECUREPASS_* environment variables and command-line flags, in that order.
package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix prefixes every environment override, e.g. SECUREPASS_STORAGE_DSN.
const EnvPrefix = "SECUREPASS_"

// Config holds runtime settings for the server.
type Config struct {
	HTTP struct {
		Addr            string        `koanf:"addr"`
		Static          string        `koanf:"static"`
		BodyLimit       string        `koanf:"bodylimit"`
		ShutdownTimeout time.Duration `koanf:"shutdown"`
	} `koanf:"http"`

	GRPC struct {
		Addr string `koanf:"addr"` // empty disables the gRPC listener
		Cert string `koanf:"cert"`
		Key  string `koanf:"key"`
	} `koanf:"grpc"`

	Storage struct {
		Driver string `koanf:"driver"` // sqlite | postgres
		DSN    string `koanf:"dsn"`
	} `koanf:"storage"`

	Hash struct {
		Cost    int `koanf:"cost"`
		Workers int `koanf:"workers"` // 0 = GOMAXPROCS
	} `koanf:"hash"`

	Log struct {
		Level string `koanf:"level"`
		Dev   bool   `koanf:"dev"`
	} `koanf:"log"`
}

// Default returns development defaults matching existing deployments:
// HTTP on :3000, SQLite file securepass.db, bcrypt cost 10.
func Default() *Config {
	c := &Config{}
	c.HTTP.Addr = ":3000"
	c.HTTP.Static = "public"
	c.HTTP.BodyLimit = "10M"
	c.HTTP.ShutdownTimeout = 5 * time.Second
	c.GRPC.Addr = ":8443"
	c.Storage.Driver = "sqlite"
	c.Storage.DSN = "securepass.db" // the sqlite store adds its pragmas
	c.Hash.Cost = 10
	c.Log.Level = "info"
	return c
}

// Load builds the configuration for args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := Default()

	// PORT is honored for compatibility with existing deployments.
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTP.Addr = ":" + port
	}

	fs := flag.NewFlagSet("securepass-server", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(EnvPrefix+"CONFIG"), "path to YAML config file")
	httpAddr := fs.String("http-addr", cfg.HTTP.Addr, "HTTP listen address")
	static := fs.String("static", cfg.HTTP.Static, "directory served at / (empty disables)")
	grpcAddr := fs.String("grpc-addr", cfg.GRPC.Addr, "gRPC listen address (empty disables)")
	cert := fs.String("tls-cert", cfg.GRPC.Cert, "gRPC TLS certificate (PEM)")
	key := fs.String("tls-key", cfg.GRPC.Key, "gRPC TLS private key (PEM)")
	driver := fs.String("driver", cfg.Storage.Driver, "storage driver: sqlite | postgres")
	dsn := fs.String("dsn", cfg.Storage.DSN, "storage DSN")
	cost := fs.Int("bcrypt-cost", cfg.Hash.Cost, "bcrypt work factor")
	workers := fs.Int("hash-workers", cfg.Hash.Workers, "concurrent hashing operations (0 = GOMAXPROCS)")
	level := fs.String("log-level", cfg.Log.Level, "log level: debug | info | warn | error")
	dev := fs.Bool("log-dev", cfg.Log.Dev, "human-readable development logging")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	k := koanf.New(".")
	if *configPath != "" {
		if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", *configPath)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// Only flags given explicitly override file and environment values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTP.Addr = *httpAddr
		case "static":
			cfg.HTTP.Static = *static
		case "grpc-addr":
			cfg.GRPC.Addr = *grpcAddr
		case "tls-cert":
			cfg.GRPC.Cert = *cert
		case "tls-key":
			cfg.GRPC.Key = *key
		case "driver":
			cfg.Storage.Driver = *driver
		case "dsn":
			cfg.Storage.DSN = *dsn
		case "bcrypt-cost":
			cfg.Hash.Cost = *cost
		case "hash-workers":
			cfg.Hash.Workers = *workers
		case "log-level":
			cfg.Log.Level = *level
		case "log-dev":
			cfg.Log.Dev = *dev
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return errors.New("storage dsn is empty")
	}
	if c.Hash.Cost < bcrypt.MinCost || c.Hash.Cost > bcrypt.MaxCost {
		return errors.Errorf("bcrypt cost %d out of range [%d, %d]", c.Hash.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.HTTP.Addr == "" && c.GRPC.Addr == "" {
		return errors.New("no listener configured")
	}
	if (c.GRPC.Cert == "") != (c.GRPC.Key == "") {
		return errors.New("tls cert and key must be set together")
	}
	return nil
}

// envKey maps SECUREPASS_STORAGE_DSN to storage.dsn.
func envKey(k, v string) (string, any) {
	k = strings.TrimPrefix(k, EnvPrefix)
	if k == "CONFIG" {
		return "", nil
	}
	return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
}
