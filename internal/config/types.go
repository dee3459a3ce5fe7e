// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/resdir/run/pkg/registry"
	"github.com/resdir/run/pkg/resid"
	"github.com/resdir/run/pkg/types"
)

const (
	// LogLevelDebug logs resolution steps, cache hits and install transitions.
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultClientDirectory is expanded against the home directory.
	DefaultClientDirectory types.FilesystemPath = "~/.run"
	// DefaultRegistryResource is the resource @registry forwards to.
	DefaultRegistryResource = "resdir/registry"

	// resourcesSubdir holds Git checkouts under the client directory.
	resourcesSubdir = "resources"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRegistryConfig is the sentinel error wrapped by InvalidRegistryConfigError.
	ErrInvalidRegistryConfig = errors.New("invalid registry config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the CLI logger prints.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RegistryConfig locates remote resources.
	RegistryConfig struct {
		// URL is a repository template with {namespace} and {name} placeholders.
		URL string `json:"url" mapstructure:"url" toml:"url"`
		// Resource is the specifier @registry imports.
		Resource string `json:"resource" mapstructure:"resource" toml:"resource"`
	}

	// InvalidRegistryConfigError is returned when RegistryConfig has invalid fields.
	InvalidRegistryConfigError struct {
		FieldErrors []error
	}

	// UIConfig configures CLI output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}

	// Config is the application configuration.
	Config struct {
		ClientDirectory types.FilesystemPath `json:"client_directory" mapstructure:"client_directory" toml:"client_directory"`
		Registry        RegistryConfig       `json:"registry" mapstructure:"registry" toml:"registry"`
		// LocalResources is the root of development overrides. "0" or empty disables them.
		LocalResources string   `json:"local_resources" mapstructure:"local_resources" toml:"local_resources"`
		LogLevel       LogLevel `json:"log_level" mapstructure:"log_level" toml:"log_level"`
		UI             UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		ClientDirectory: DefaultClientDirectory,
		Registry: RegistryConfig{
			URL:      registry.DefaultURLTemplate,
			Resource: DefaultRegistryResource,
		},
		LocalResources: "",
		LogLevel:       LogLevelWarn,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// Validate returns an error if the LogLevel is not one of the known levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

func (l LogLevel) String() string { return string(l) }

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Validate returns an error if the ColorScheme is not auto, dark or light.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

func (c ColorScheme) String() string { return string(c) }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the URL template and the registry specifier.
func (r RegistryConfig) Validate() error {
	var errs []error
	if !strings.Contains(r.URL, "{name}") {
		errs = append(errs, fmt.Errorf("registry.url %q must contain {name}", r.URL))
	}
	spec, err := resid.ParseSpecifier(r.Resource)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("registry.resource: %w", err))
	case spec.IsLocation():
		errs = append(errs, fmt.Errorf("registry.resource %q must be an identifier, not a path", r.Resource))
	}
	if len(errs) > 0 {
		return &InvalidRegistryConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidRegistryConfigError) Error() string {
	return fmt.Sprintf("invalid registry config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidRegistryConfig followed by the field errors.
func (e *InvalidRegistryConfigError) Unwrap() []error {
	return append([]error{ErrInvalidRegistryConfig}, e.FieldErrors...)
}

// Validate checks every field and returns an *InvalidConfigError listing
// all problems.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ClientDirectory.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("client_directory: %w", err))
	}
	if err := c.Registry.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// ClientDir returns the absolute client directory.
func (c *Config) ClientDir(home string) string {
	return c.ClientDirectory.Resolve(home, home).String()
}

// ResourcesDir is where the Git registry keeps checkouts.
func (c *Config) ResourcesDir(home string) string {
	return filepath.Join(c.ClientDir(home), resourcesSubdir)
}

// LocalResourcesDir returns the local override root, or "" when disabled.
func (c *Config) LocalResourcesDir(home string) string {
	if c.LocalResources == "" || c.LocalResources == "0" {
		return ""
	}
	return types.FilesystemPath(c.LocalResources).Resolve(home, home).String()
}
