// Package config loads moltda settings from a TOML file and the environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables, then command-line flags (applied by the caller).
//
//	[pipeline]
//	pixels = [20, 20]
//	spread = 1.0
//	weighting = "linear"
//	dims = [0, 1, 2]
//
//	[cache]
//	dir = "/var/cache/moltda"
//	redis_addr = "localhost:6379"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// Environment variables read by Load.
const (
	EnvRedisAddr = "MOLTDA_REDIS_ADDR"
	EnvMongoURI  = "MOLTDA_MONGO_URI"
	EnvAddr      = "MOLTDA_ADDR"
)

// DefaultAddr is the default HTTP listen address.
const DefaultAddr = ":8080"

// Config is the file-level configuration.
type Config struct {
	Pipeline Pipeline `toml:"pipeline"`
	Engine   Engine   `toml:"engine"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
}

// Pipeline holds vectorization defaults. Zero values keep the pipeline's
// own defaults.
type Pipeline struct {
	Pixels        [2]int   `toml:"pixels"`
	Spread        *float64 `toml:"spread"`
	Kernel        string   `toml:"kernel"`
	Weighting     string   `toml:"weighting"`
	CorrectedGrid bool     `toml:"corrected_grid"`
	Dims          []int    `toml:"dims"`
	Formats       []string `toml:"formats"`
	PNGScale      int      `toml:"png_scale"`
	Workers       int      `toml:"workers"`
}

// Engine configures the external homology engine.
type Engine struct {
	Command  string `toml:"command"`
	Exact    bool   `toml:"exact"`
	Periodic bool   `toml:"periodic"`
}

// Cache selects the cache backend. Redis wins over Dir when both are set.
type Cache struct {
	Disabled      bool   `toml:"disabled"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// RedisRetries is the number of tries per Redis command. Zero keeps the
	// backend default.
	RedisRetries int    `toml:"redis_retries"`
	Prefix       string `toml:"prefix"`
}

// Store selects the result store backend. Mongo wins over Dir when both are
// set.
type Store struct {
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string   `toml:"addr"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration that decodes from strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", string(b))
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            DefaultAddr,
			MaxBodyBytes:    32 << 20,
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// Load reads path on top of Default and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses TOML text on top of Default without reading the environment.
func Decode(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the pipeline section by building options from it.
func (c Config) Validate() error {
	opts := c.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "[pipeline]")
	}
	if c.Cache.RedisRetries < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "redis_retries must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_body_bytes must not be negative")
	}
	return nil
}

// Options returns pipeline options seeded from the [pipeline] section.
func (c Config) Options() pipeline.Options {
	p := c.Pipeline
	return pipeline.Options{
		Pixels:        p.Pixels,
		Spread:        p.Spread,
		Kernel:        p.Kernel,
		Weighting:     p.Weighting,
		CorrectedGrid: p.CorrectedGrid,
		Dims:          append([]int(nil), p.Dims...),
		Formats:       append([]string(nil), p.Formats...),
		PNGScale:      p.PNGScale,
		Workers:       p.Workers,
	}
}
