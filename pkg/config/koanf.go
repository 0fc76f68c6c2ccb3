package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/wasmstash/pkg/errors"
	"github.com/arthur-debert/wasmstash/pkg/logging"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName names the user config directory
	AppName = "wasmstash"

	// EnvPrefix is stripped from environment variables before they
	// become keys: WASMSTASH_SOURCE_DIR sets source_dir.
	EnvPrefix = "WASMSTASH_"
)

// ProjectFiles are looked up in the working directory, first match wins
var ProjectFiles = []string{".wasmstash.toml", "wasmstash.toml", ".wasmstash.yaml", "wasmstash.yaml"}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile replaces the project file lookup when set. It must exist.
	ConfigFile string

	// WorkDir is searched for ProjectFiles. Defaults to ".".
	WorkDir string

	// UserConfigDir holds config.toml. Defaults to $XDG_CONFIG_HOME/wasmstash.
	UserConfigDir string

	// Overrides are applied last, keyed like the TOML file.
	Overrides map[string]interface{}
}

// Load builds the effective configuration from every source
func Load(opts LoadOptions) (*Config, error) {
	k, err := newKoanf(opts)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration built from the embedded defaults only
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode defaults")
	}
	return &cfg, nil
}

func newKoanf(opts LoadOptions) (*koanf.Koanf, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Load system defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Load user config if it exists
	userDir := opts.UserConfigDir
	if userDir == "" {
		userDir = filepath.Join(xdg.ConfigHome, AppName)
	}
	userFile := filepath.Join(userDir, "config.toml")
	if _, err := os.Stat(userFile); err == nil {
		if err := loadFile(k, userFile); err != nil {
			return nil, err
		}
		logger.Debug().Str("path", userFile).Msg("Loaded user config")
	}

	// 3. Load project config, explicit or discovered
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", opts.ConfigFile).
				WithDetail("path", opts.ConfigFile)
		}
		if err := loadFile(k, opts.ConfigFile); err != nil {
			return nil, err
		}
		logger.Debug().Str("path", opts.ConfigFile).Msg("Loaded config file")
	} else {
		workDir := opts.WorkDir
		if workDir == "" {
			workDir = "."
		}
		for _, name := range ProjectFiles {
			path := filepath.Join(workDir, name)
			if _, err := os.Stat(path); err == nil {
				if err := loadFile(k, path); err != nil {
					return nil, err
				}
				logger.Debug().Str("path", path).Msg("Loaded project config")
				break
			}
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 5. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return k, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return errors.Newf(errors.ErrConfigParse, "unsupported config format %q", filepath.Ext(path)).
			WithDetail("path", path)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return nil
}
