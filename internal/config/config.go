// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/resdir/run/internal/issue"
	"github.com/resdir/run/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "run"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// EnvBindings maps config keys to the environment variables that override them.
var EnvBindings = []struct {
	Key string
	Env string
}{
	{Key: "client_directory", Env: "RUN_CLIENT_DIRECTORY"},
	{Key: "registry.url", Env: "RESDIR_REGISTRY_URL"},
	{Key: "local_resources", Env: "RUN_LOCAL_RESOURCES"},
	{Key: "log_level", Env: "RUN_LOG_LEVEL"},
}

// ConfigDir returns the run configuration directory for the current platform.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	return configDirWith(os.Getenv)
}

// ConfigDirFromEnv is ConfigDir reading environment variables through lookupEnv.
func ConfigDirFromEnv(lookupEnv func(string) (string, bool)) (string, error) {
	return configDirWith(func(key string) string {
		value, _ := lookupEnv(key)
		return value
	})
}

func configDirWith(getenv func(string) string) (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions loads defaults, the config file and environment
// overrides. It returns the path of the file that was read, or "".
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("client_directory", defaults.ClientDirectory.String())
	v.SetDefault("registry.url", defaults.Registry.URL)
	v.SetDefault("registry.resource", defaults.Registry.Resource)
	v.SetDefault("local_resources", defaults.LocalResources)
	v.SetDefault("log_level", defaults.LogLevel.String())
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	path, err := configFilePath(opts, lookupEnv)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'run config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	for _, b := range EnvBindings {
		if value, ok := lookupEnv(b.Env); ok && value != "" {
			v.Set(b.Key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check the environment variables " + envNames()).
			Wrap(err).
			BuildError()
	}

	return &cfg, path, nil
}

// configFilePath returns the file to load, or "" when only defaults apply.
// An explicit ConfigFilePath must exist.
func configFilePath(opts LoadOptions, lookupEnv func(string) (string, bool)) (string, error) {
	if opts.ConfigFilePath != "" {
		path := opts.ConfigFilePath.String()
		if !fileExists(path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'run config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		return path, nil
	}

	dir := opts.ConfigDirPath.String()
	if dir == "" {
		var err error
		dir, err = ConfigDirFromEnv(lookupEnv)
		if err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if !fileExists(path) {
		return "", nil
	}
	return path, nil
}

func envNames() string {
	names := make([]string, len(EnvBindings))
	for i, b := range EnvBindings {
		names[i] = b.Env
	}
	return strings.Join(names, ", ")
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
//
// The file is decoded to a map rather than through cueutil.ParseAndDecode
// because fields are optional and viper merges maps.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config.cue into dir unless one
// exists. It returns the file path.
func CreateDefaultConfig(dir string) (string, error) {
	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	return cfgPath, Save(DefaultConfig(), dir)
}

// Save writes cfg as config.cue into dir, creating dir when needed.
func Save(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// run configuration file\n\n")

	fmt.Fprintf(&sb, "client_directory: %q\n", cfg.ClientDirectory)

	sb.WriteString("\nregistry: {\n")
	fmt.Fprintf(&sb, "\turl:      %q\n", cfg.Registry.URL)
	fmt.Fprintf(&sb, "\tresource: %q\n", cfg.Registry.Resource)
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "local_resources: %q\n", cfg.LocalResources)
	fmt.Fprintf(&sb, "log_level:       %q\n", cfg.LogLevel)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders cfg as TOML, the format `run config show --format toml` prints.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return string(data), nil
}
