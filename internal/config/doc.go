// SPDX-License-Identifier: MPL-2.0

// Package config loads hostfacts settings using Viper with CUE as the file format.
//
// The config file is $XDG_CONFIG_HOME/hostfacts/config.cue (~/.config/hostfacts
// when XDG_CONFIG_HOME is unset), falling back to ./config.cue. The file is
// unified with the embedded #Config schema (config_schema.cue) before being
// merged over the built-in defaults. HOSTFACTS_* environment variables
// override both, and the merged result is validated again in Go.
package config
