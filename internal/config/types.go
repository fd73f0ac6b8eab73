// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostfacts/hostfacts/pkg/staticfact"
)

const (
	// FormatText prints aligned "name => value" lines.
	FormatText OutputFormat = "text"
	// FormatJSON prints a single JSON object.
	FormatJSON OutputFormat = "json"
	// FormatTOML prints a TOML document.
	FormatTOML OutputFormat = "toml"
	// FormatYAML prints a YAML mapping.
	FormatYAML OutputFormat = "yaml"
	// FormatEnv prints shell-quoted NAME=value assignments.
	FormatEnv OutputFormat = "env"

	// LogLevelDebug logs every diagnostic, including informational ones.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// MaxDepthLimit is the largest accepted max_depth value.
	MaxDepthLimit = 64

	// DefaultDebounce is the default watch debounce interval.
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidRootPath is returned when a RootPath value is empty or whitespace-only.
	ErrInvalidRootPath = errors.New("invalid root path")
	// ErrInvalidMaxDepth is returned when max_depth is outside 1..MaxDepthLimit.
	ErrInvalidMaxDepth = errors.New("invalid max depth")
	// ErrInvalidParallelism is returned when parallelism is below 1.
	ErrInvalidParallelism = errors.New("invalid parallelism")
	// ErrInvalidPrefix is returned when output.prefix would produce fact names starting with a digit.
	ErrInvalidPrefix = errors.New("invalid output prefix")
	// ErrInvalidDebounce is returned when watch.debounce is not positive.
	ErrInvalidDebounce = errors.New("invalid debounce interval")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how resolved facts are published.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// LogLevel is the minimum level the CLI logger emits.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// RootPath is a fact file resolution starts from.
	// A valid path must be non-empty and not whitespace-only.
	RootPath string

	// InvalidRootPathError is returned when a RootPath is empty or whitespace-only.
	InvalidRootPathError struct {
		Value RootPath
	}

	// OutOfRangeError reports an integer setting outside its accepted range.
	// Sentinel is ErrInvalidMaxDepth or ErrInvalidParallelism.
	OutOfRangeError struct {
		Field    string
		Value    int
		Min      int
		Max      int
		Sentinel error
	}

	// InvalidPrefixError is returned when output.prefix is not a valid fact name.
	InvalidPrefixError struct {
		Value string
	}

	// InvalidDebounceError is returned when the watch debounce is not positive.
	InvalidDebounceError struct {
		Value time.Duration
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Roots lists the root fact files. Empty means the built-in roots.
		Roots []RootPath `json:"roots" mapstructure:"roots"`
		// MaxDepth bounds nested include depth.
		MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
		// Parallelism is the number of concurrent readers for flat includes.
		Parallelism int `json:"parallelism" mapstructure:"parallelism"`
		// Output configures fact publishing.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Log configures the CLI logger.
		Log LogConfig `json:"log" mapstructure:"log"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// OutputConfig configures how facts are printed.
	OutputConfig struct {
		Format OutputFormat `json:"format" mapstructure:"format"`
		// Prefix is prepended to every published fact name.
		Prefix string `json:"prefix" mapstructure:"prefix"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is how long to wait after the last change before resolving again.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}
)

// OutputFormats returns every supported output format.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatTOML, FormatYAML, FormatEnv}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the supported formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatJSON, FormatTOML, FormatYAML, FormatEnv:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, toml, yaml, env)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the RootPath.
func (p RootPath) String() string { return string(p) }

// IsValid returns whether the RootPath is non-empty and not whitespace-only.
func (p RootPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidRootPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRootPathError.
func (e *InvalidRootPathError) Error() string {
	return fmt.Sprintf("invalid root path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidRootPath for errors.Is() compatibility.
func (e *InvalidRootPathError) Unwrap() error { return ErrInvalidRootPath }

// Error implements the error interface for OutOfRangeError.
func (e *OutOfRangeError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s %d out of range (valid: %d..%d)", e.Field, e.Value, e.Min, e.Max)
	}
	return fmt.Sprintf("%s %d out of range (minimum: %d)", e.Field, e.Value, e.Min)
}

// Unwrap returns the field sentinel for errors.Is() compatibility.
func (e *OutOfRangeError) Unwrap() error { return e.Sentinel }

// Error implements the error interface for InvalidPrefixError.
func (e *InvalidPrefixError) Error() string {
	return fmt.Sprintf("invalid output prefix %q: must not start with a digit", e.Value)
}

// Unwrap returns ErrInvalidPrefix for errors.Is() compatibility.
func (e *InvalidPrefixError) Unwrap() error { return ErrInvalidPrefix }

// Error implements the error interface for InvalidDebounceError.
func (e *InvalidDebounceError) Error() string {
	return fmt.Sprintf("invalid debounce interval %s: must be positive", e.Value)
}

// Unwrap returns ErrInvalidDebounce for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// IsValid returns whether the Config has valid fields.
// Every invalid field contributes one error to the InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, root := range c.Roots {
		if valid, fieldErrs := root.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.MaxDepth < 1 || c.MaxDepth > MaxDepthLimit {
		errs = append(errs, &OutOfRangeError{
			Field: "max_depth", Value: c.MaxDepth, Min: 1, Max: MaxDepthLimit, Sentinel: ErrInvalidMaxDepth,
		})
	}
	if c.Parallelism < 1 {
		errs = append(errs, &OutOfRangeError{
			Field: "parallelism", Value: c.Parallelism, Min: 1, Sentinel: ErrInvalidParallelism,
		})
	}
	if valid, fieldErrs := c.Output.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if p := c.Output.Prefix; p != "" && !staticfact.ValidName(p) {
		errs = append(errs, &InvalidPrefixError{Value: p})
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, &InvalidDebounceError{Value: c.Watch.Debounce})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error, so errors.Is
// matches both the config sentinel and the field sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// RootPaths returns the configured roots as plain strings, falling back to
// the built-in roots when none are configured.
func (c *Config) RootPaths() []string {
	if len(c.Roots) == 0 {
		return staticfact.DefaultRoots()
	}
	roots := make([]string, len(c.Roots))
	for i, r := range c.Roots {
		roots[i] = string(r)
	}
	return roots
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Roots:       []RootPath{},
		MaxDepth:    staticfact.MaxDepth,
		Parallelism: 1,
		Output: OutputConfig{
			Format: FormatText,
			Prefix: "",
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}
