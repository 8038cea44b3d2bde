// Package config holds the TOML configuration of the envelope service.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/rotisserie/eris"

	"TxEnvelope/wallet"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type ServerConfig struct {
	ListenAddr     string
	AllowedOrigins []string
	BatchLimit     int // concurrent items per batch request, 0 for GOMAXPROCS
	MaxBatchSize   int
}

type WalletConfig struct {
	AccountPath    string `toml:",omitempty"`
	DerivationPath string
}

type ChainConfig struct {
	ChainID uint64
}

type ResolverConfig struct {
	CacheSize int
	Names     map[string]string `toml:",omitempty"`
}

type LogConfig struct {
	Verbosity int
	Format    string // "terminal" or "json"
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Wallet   WalletConfig
	Chain    ChainConfig
	Resolver ResolverConfig
	Log      LogConfig
}

// Defaults contains the settings used when no file is given.
var Defaults = Config{
	Server: ServerConfig{
		ListenAddr:     ":8080",
		AllowedOrigins: []string{"*"},
		MaxBatchSize:   256,
	},
	Wallet: WalletConfig{
		DerivationPath: wallet.DefaultDerivationPath,
	},
	Chain: ChainConfig{
		ChainID: 1,
	},
	Resolver: ResolverConfig{
		CacheSize: 1024,
	},
	Log: LogConfig{
		Verbosity: 3,
		Format:    "terminal",
	},
}

// Default returns a copy of Defaults that is safe to modify.
func Default() Config {
	cfg := Defaults
	cfg.Server.AllowedOrigins = append([]string(nil), Defaults.Server.AllowedOrigins...)
	return cfg
}

// Load reads file over the defaults.
func Load(file string) (Config, error) {
	cfg := Default()
	f, err := os.Open(file)
	if err != nil {
		return cfg, eris.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	if err := Decode(bufio.NewReader(f), &cfg); err != nil {
		var lineErr *toml.LineError
		if errors.As(err, &lineErr) {
			return cfg, eris.New(file + ", " + err.Error())
		}
		return cfg, eris.Wrap(err, file)
	}
	return cfg, cfg.Validate()
}

// Decode reads TOML from r into cfg. Keys not defined in Config are an error.
func Decode(r io.Reader, cfg *Config) error {
	return tomlSettings.NewDecoder(r).Decode(cfg)
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return tomlSettings.NewEncoder(w).Encode(c)
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "terminal", "json":
	default:
		return eris.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Server.BatchLimit < 0 {
		return eris.Errorf("negative batch limit %d", c.Server.BatchLimit)
	}
	if c.Server.MaxBatchSize <= 0 {
		return eris.Errorf("max batch size must be positive, have %d", c.Server.MaxBatchSize)
	}
	if c.Resolver.CacheSize <= 0 {
		return eris.Errorf("resolver cache size must be positive, have %d", c.Resolver.CacheSize)
	}
	return nil
}
