package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/mika-go/support"
	"github.com/satishbabariya/mika-go/toolchain"
)

var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension.
	FileName = ".mika"
	// EnvPrefix prefixes every environment override, e.g. MIKA_TOOLCHAIN_CC.
	EnvPrefix = "MIKA"
)

// Config holds the application configuration
type Config struct {
	Toolchain  ToolchainConfig  `mapstructure:"toolchain"`
	Runtime    RuntimeConfig    `mapstructure:"runtime"`
	Translator TranslatorConfig `mapstructure:"translator"`
	History    HistoryConfig    `mapstructure:"history"`
	Debug      bool             `mapstructure:"debug"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type ToolchainConfig struct {
	CC         string `mapstructure:"cc"`
	MinVersion string `mapstructure:"min_version"`
}

type RuntimeConfig struct {
	Dir     string `mapstructure:"dir"`
	TempDir string `mapstructure:"temp_dir"`
	Object  string `mapstructure:"object"`
}

// IncludeDir is the include root handed to the compiler; translated
// sources include <root>/mika/mika_std.h by absolute path.
func (r RuntimeConfig) IncludeDir() string {
	return filepath.Dir(r.Dir)
}

type TranslatorConfig struct {
	// Command runs an external translator; empty means in-process.
	Command string `mapstructure:"command"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

// Options tune where LoadConfig looks.
type Options struct {
	// File is an explicit config file; search paths are skipped.
	File string
	// Dir is the working directory holding .env files (default ".").
	Dir string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("toolchain.cc", toolchain.DefaultCompiler)
	v.SetDefault("toolchain.min_version", "4.9")
	v.SetDefault("runtime.dir", support.DefaultDir)
	v.SetDefault("runtime.temp_dir", os.TempDir())
	v.SetDefault("runtime.object", "")
	v.SetDefault("translator.command", "")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.driver", "sqlite3")
	v.SetDefault("history.dsn", "~/.mika/history.db")
	v.SetDefault("debug", false)
}

// LoadConfig loads configuration from various sources
func LoadConfig(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	// .env.local wins over .env; real environment variables win over both.
	loadEnvFile(filepath.Join(dir, ".env"), false)
	loadEnvFile(filepath.Join(dir, ".env.local"), true)

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "mika"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Runtime.TempDir == "" {
		cfg.Runtime.TempDir = os.TempDir()
	}
	if cfg.Runtime.Object == "" {
		cfg.Runtime.Object = support.DefaultObjectPath(cfg.Runtime.TempDir)
	}
	if dsn, err := homedir.Expand(cfg.History.DSN); err == nil {
		cfg.History.DSN = dsn
	}

	return cfg, nil
}

// loadEnvFile exports the variables of an env file through AppFs. Without
// overload, variables already set in the environment are left alone.
func loadEnvFile(path string, overload bool) {
	f, err := AppFs.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		// A broken env file is ignored, like a missing one.
		return
	}

	for key, value := range values {
		if _, set := os.LookupEnv(key); set && !overload {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)

	v.Set("toolchain.cc", cfg.Toolchain.CC)
	v.Set("toolchain.min_version", cfg.Toolchain.MinVersion)
	v.Set("runtime.dir", cfg.Runtime.Dir)
	v.Set("translator.command", cfg.Translator.Command)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.driver", cfg.History.Driver)
	v.Set("history.dsn", cfg.History.DSN)

	if err := AppFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.Runtime.Object = support.DefaultObjectPath(cfg.Runtime.TempDir)
	if dsn, err := homedir.Expand(cfg.History.DSN); err == nil {
		cfg.History.DSN = dsn
	}
	return cfg
}
