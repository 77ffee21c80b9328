package gen

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/syssam/dbmlgen/naming"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the module path of the generated project.
// For example: "github.com/org/shop".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the project root the artifacts are written under.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithInflector sets the inflector used for model and relation names.
func WithInflector(inf naming.Inflector) Option {
	return func(c *Config) error {
		if inf == nil {
			return NewConfigError("Inflector", nil, "inflector cannot be nil")
		}
		c.Inflector = inf
		return nil
	}
}

// WithInflectorName selects an inflector by name: "simple" or "rules".
func WithInflectorName(name string) Option {
	return func(c *Config) error {
		inf, err := naming.ByName(name)
		if err != nil {
			return NewConfigError("Inflector", name, "unsupported inflector; use simple or rules")
		}
		c.Inflector = inf
		return nil
	}
}

// WithClock sets the clock used to stamp migration versions.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) error {
		if clock == nil {
			return NewConfigError("Clock", nil, "clock cannot be nil")
		}
		c.Clock = clock
		return nil
	}
}

// WithOutput sets the writer receiving the progress transcript.
func WithOutput(w io.Writer) Option {
	return func(c *Config) error {
		if w == nil {
			return NewConfigError("Output", nil, "output cannot be nil")
		}
		c.Output = w
		return nil
	}
}

// WithQuiet suppresses the progress transcript.
func WithQuiet(quiet bool) Option {
	return func(c *Config) error {
		c.Quiet = quiet
		return nil
	}
}

// WithLogger sets the logger for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithStrict enables strict graph validation.
func WithStrict(strict bool) Option {
	return func(c *Config) error {
		c.Strict = strict
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
