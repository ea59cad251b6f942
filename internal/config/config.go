// Package config loads the optional power.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bangzek/k8090"
	"github.com/bangzek/k8090/relayset"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Device   string
	AliasDir string
	Timeout  time.Duration
	Debug    bool
	// Aliases are looked up before the ones in AliasDir.
	Aliases map[string]string
}

// Defaults is the configuration used without a config file.
func Defaults() Config {
	return Config{
		Device:   k8090.DEVICE,
		AliasDir: relayset.DefaultDir,
		Timeout:  k8090.TIMEOUT,
	}
}

// Error is a failure to read or map a config file.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (path=%s): %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type yamlConfig struct {
	Device   string            `yaml:"device"`
	AliasDir string            `yaml:"alias_dir"`
	Timeout  string            `yaml:"timeout"`
	Debug    bool              `yaml:"debug"`
	Aliases  map[string]string `yaml:"aliases"`
}

// Load reads path over Defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{"config.load", path, err}
	}

	var dto yamlConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return Config{}, &Error{"config.load", path, err}
	}

	cfg, err := mapConfig(dto)
	if err != nil {
		return Config{}, &Error{"config.map", path, err}
	}
	return cfg, nil
}

func mapConfig(dto yamlConfig) (Config, error) {
	cfg := Defaults()
	if dto.Device != "" {
		cfg.Device = dto.Device
	}
	if dto.AliasDir != "" {
		cfg.AliasDir = dto.AliasDir
	}
	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: timeout: %v", ErrInvalid, err)
		} else if d <= 0 {
			return Config{}, fmt.Errorf("%w: timeout must be positive, got %s",
				ErrInvalid, dto.Timeout)
		}
		cfg.Timeout = d
	}
	cfg.Debug = dto.Debug

	for name, target := range dto.Aliases {
		if name == "" || strings.ContainsAny(name, ", /") {
			return Config{}, fmt.Errorf("%w: aliases: bad name %q", ErrInvalid, name)
		}
		if strings.TrimSpace(target) == "" {
			return Config{}, fmt.Errorf("%w: aliases.%s: empty relay list",
				ErrInvalid, name)
		}
		if cfg.Aliases == nil {
			cfg.Aliases = make(map[string]string, len(dto.Aliases))
		}
		cfg.Aliases[name] = target
	}
	return cfg, nil
}

// Store layers the inline aliases over the alias directory.
func (c Config) Store() relayset.Store {
	dir := relayset.DirStore{Dir: c.AliasDir}
	if len(c.Aliases) == 0 {
		return dir
	}
	return relayset.Stores{relayset.MapStore(c.Aliases), dir}
}
