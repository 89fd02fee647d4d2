// SPDX-License-Identifier: MPL-2.0

// Package config loads resourcekit configuration using Viper.
//
// Configuration is read from config.cue or config.toml in the user config
// directory (os.UserConfigDir()/resourcekit), or from an explicit file.
// CUE files are validated against the embedded config_schema.cue before
// they reach Viper. RESOURCEKIT_* environment variables override file
// values, for example RESOURCEKIT_CACHE_SIZE or RESOURCEKIT_LOG_LEVEL.
package config
