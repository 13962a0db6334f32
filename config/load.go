package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// EnvPrefix prefixes the environment variable of every key, e.g.
// PONTOS_MODEL_PATH for model_path.
const EnvPrefix = "PONTOS_"

// Option is a functional option for [Load].
type Option func(*options) error

type options struct {
	file      string
	lookupEnv func(string) (string, bool)
	overrides []func(*Config)
}

// WithFile reads path instead of the default ini file. Unlike the
// default file, a named file must exist.
func WithFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("config file path must not be empty")
		}
		o.file = path
		return nil
	}
}

// WithLookupEnv replaces os.LookupEnv as the source of environment
// values, including HOME.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("env lookup must not be nil")
		}
		o.lookupEnv = fn
		return nil
	}
}

// WithOverride applies fn after every other source, before
// validation. Command-line flags are applied this way.
func WithOverride(fn func(*Config)) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("override must not be nil")
		}
		o.overrides = append(o.overrides, fn)
		return nil
	}
}

// Load builds a validated Config. Values are layered as defaults, then
// the ini file, then the environment, then overrides.
func Load(optFns ...Option) (Config, error) {
	opts := options{lookupEnv: os.LookupEnv}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return Config{}, fmt.Errorf("applying config option: %w", err)
		}
	}

	cfg := Default()

	section, err := loadFile(opts)
	if err != nil {
		return Config{}, err
	}

	for _, b := range cfg.bindings() {
		if section != nil && section.HasKey(b.key) {
			if err := b.fromINI(section.Key(b.key)); err != nil {
				return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, b.key, err)
			}
		}

		if name, val, ok := b.lookup(opts.lookupEnv); ok {
			if err := b.parse(val); err != nil {
				return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
			}
		}
	}

	for _, fn := range opts.overrides {
		fn(&cfg)
	}

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 1
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadFile returns the default section of the ini file. A missing
// default file reads as empty.
func loadFile(opts options) (*ini.Section, error) {
	path := opts.file
	explicit := path != ""

	if !explicit {
		home, ok := opts.lookupEnv("HOME")
		if !ok || home == "" {
			return nil, nil
		}
		path = filepath.Join(home, DefaultFile)
	}

	load := ini.Load
	if !explicit {
		load = ini.LooseLoad
	}

	f, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	return f.Section(""), nil
}

// binding ties an ini key to a Config field and its environment
// variables. The first variable set wins.
type binding struct {
	key string
	env []string
	ptr any
}

func (c *Config) bindings() []binding {
	bind := func(key string, ptr any, aliases ...string) binding {
		return binding{key: key, env: append([]string{EnvPrefix + strings.ToUpper(key)}, aliases...), ptr: ptr}
	}

	return []binding{
		bind("model_url", &c.ModelURL),
		bind("model_path", &c.ModelPath),
		bind("model_sha256", &c.ModelSHA256),
		bind("data_dir", &c.DataDir),
		bind("output_dir", &c.OutputDir),
		bind("sentinel_client_id", &c.SentinelClientID, "SH_CLIENT_ID"),
		bind("sentinel_client_secret", &c.SentinelClientSecret, "SH_CLIENT_SECRET"),
		bind("confidence_threshold", &c.ConfidenceThreshold),
		bind("patch_size", &c.PatchSize),
		bind("patch_overlap", &c.PatchOverlap),
		bind("device", &c.Device),
		bind("max_workers", &c.MaxWorkers),
		bind("batch_size", &c.BatchSize),
		bind("http_timeout", &c.HTTPTimeout),
		bind("user_agent", &c.UserAgent),
		bind("rate_limit_rps", &c.RateLimitRPS),
		bind("rate_limit_burst", &c.RateLimitBurst),
		bind("max_retries", &c.MaxRetries),
		bind("log_level", &c.LogLevel),
		bind("progress", &c.Progress),
	}
}

func (b binding) lookup(lookupEnv func(string) (string, bool)) (string, string, bool) {
	for _, name := range b.env {
		if val, ok := lookupEnv(name); ok {
			return name, val, true
		}
	}
	return "", "", false
}

func (b binding) fromINI(k *ini.Key) error {
	switch p := b.ptr.(type) {
	case *string:
		*p = k.String()
	case *int:
		v, err := k.Int()
		if err != nil {
			return err
		}
		*p = v
	case *float64:
		v, err := k.Float64()
		if err != nil {
			return err
		}
		*p = v
	case *time.Duration:
		v, err := k.Duration()
		if err != nil {
			return err
		}
		*p = v
	default:
		return fmt.Errorf("unsupported field type %T", b.ptr)
	}
	return nil
}

func (b binding) parse(val string) error {
	val = strings.TrimSpace(val)

	switch p := b.ptr.(type) {
	case *string:
		*p = val
	case *int:
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		*p = v
	case *time.Duration:
		v, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		*p = v
	default:
		return fmt.Errorf("unsupported field type %T", b.ptr)
	}
	return nil
}
