// SPDX-License-Identifier: MPL-2.0

// Package config loads run's configuration with Viper, using CUE as the file
// format.
//
// The file is config.cue in the platform config directory
// ($XDG_CONFIG_HOME/run on Linux, ~/Library/Application Support/run on macOS,
// %APPDATA%\run on Windows). It must satisfy the embedded #Config schema.
// Values from the file are merged over the defaults; environment variables
// (see EnvBindings) take precedence over both.
package config
