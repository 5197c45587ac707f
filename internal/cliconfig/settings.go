// Package cliconfig layers flags, environment variables, and an
// optional project config file (aurelia.config.yaml) into one Settings
// value for cmd/aurelia-ls, the way the teacher's pkg/cli.EnvSettings
// layers pflag + environment variables for Helm's own CLI. Adapted: no
// Kubernetes context/namespace/auth fields — project root, cache
// directory, log level, and schema-version pin take their place.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aurelia-tools/aurelia-ls/internal/buildinfo"
)

const (
	defaultCacheDirName = ".aurelia-cache"
	defaultConfigName   = "aurelia.config"
	envPrefix           = "AURELIA"
)

// Settings is the fully-resolved configuration for one aurelia-ls
// invocation: project root, cache directory, log verbosity, and the
// envelope schema version this process expects to speak.
type Settings struct {
	ProjectRoot   string
	CacheDir      string
	Debug         bool
	SchemaVersion int

	configFile string
	v          *viper.Viper
}

// New returns Settings seeded with defaults; call AddFlags before
// pflag.Parse, then Init after parsing to layer flags over environment
// over the project config file.
func New() *Settings {
	return &Settings{
		ProjectRoot:   ".",
		SchemaVersion: buildinfo.EnvelopeSchemaVersion,
		v:             viper.New(),
	}
}

// AddFlags registers this Settings' flags on fs, mirroring the teacher's
// EnvSettings.AddFlags convention of one persistent flag set shared by
// every subcommand.
func (s *Settings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.ProjectRoot, "project", s.ProjectRoot, "project root directory")
	fs.StringVar(&s.CacheDir, "cache-dir", s.CacheDir, "cache directory (default $PROJECT/.aurelia-cache)")
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable debug logging")
	fs.StringVar(&s.configFile, "config", s.configFile, "path to aurelia.config.yaml (default $PROJECT/aurelia.config.yaml)")
}

// Init resolves defaults and environment overrides after flags have
// been parsed, and merges in the project config file when present —
// flags win over environment, which wins over the file, which wins over
// the built-in defaults above.
func (s *Settings) Init(fs *pflag.FlagSet) error {
	s.v.SetEnvPrefix(envPrefix)
	s.v.AutomaticEnv()

	if s.ProjectRoot == "" || s.ProjectRoot == "." {
		if v := os.Getenv(envPrefix + "_PROJECT"); v != "" {
			s.ProjectRoot = v
		}
	}
	root, err := filepath.Abs(s.ProjectRoot)
	if err != nil {
		return err
	}
	s.ProjectRoot = root

	if s.CacheDir == "" {
		s.CacheDir = filepath.Join(s.ProjectRoot, defaultCacheDirName)
	}

	if !s.Debug {
		if v := os.Getenv(envPrefix + "_DEBUG"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				s.Debug = b
			}
		}
	}

	configFormat := "yaml"
	if s.configFile == "" {
		s.configFile = filepath.Join(s.ProjectRoot, defaultConfigName+".yaml")
		if _, err := os.Stat(s.configFile); os.IsNotExist(err) {
			// A project that prefers TOML over YAML keeps
			// aurelia.config.toml instead; fall back to it only when no
			// explicit --config was given and the YAML default is absent.
			tomlPath := filepath.Join(s.ProjectRoot, defaultConfigName+".toml")
			if _, err := os.Stat(tomlPath); err == nil {
				s.configFile = tomlPath
				configFormat = "toml"
			}
		}
	} else if strings.HasSuffix(s.configFile, ".toml") {
		configFormat = "toml"
	}

	raw, err := os.ReadFile(s.configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var doc map[string]any
	if configFormat == "toml" {
		if _, err := toml.Decode(string(raw), &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", s.configFile, err)
		}
	} else if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", s.configFile, err)
	}
	if doc != nil {
		if err := ValidateConfig(doc); err != nil {
			return fmt.Errorf("%s failed schema validation: %w", s.configFile, err)
		}
	}

	s.v.SetConfigFile(s.configFile)
	s.v.SetConfigType(configFormat)
	if err := s.v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	if !fs.Changed("cache-dir") {
		if v := s.v.GetString("cacheDir"); v != "" {
			s.CacheDir = v
		}
	}
	if !fs.Changed("debug") && s.v.IsSet("debug") {
		s.Debug = s.v.GetBool("debug")
	}
	return nil
}

// PluginAllowlist reads the project config's plugin allowlist, if any —
// an empty, non-nil slice means "configured, allow nothing"; nil means
// "not configured, no restriction".
func (s *Settings) PluginAllowlist() []string {
	if !s.v.IsSet("pluginAllowlist") {
		return nil
	}
	return s.v.GetStringSlice("pluginAllowlist")
}
