package gen

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrInvalidSchema    = errors.New("dbmlgen: invalid schema")
	ErrMissingConfig    = errors.New("dbmlgen: missing configuration")
	ErrInvalidEdge      = errors.New("dbmlgen: invalid relationship")
	ErrGenerationFailed = errors.New("dbmlgen: code generation failed")
)

// SchemaError reports a table that cannot become a Type.
type SchemaError struct {
	Table   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Table == "" {
		return "dbmlgen: schema: " + e.Message
	}
	return fmt.Sprintf("dbmlgen: table %s: %s", e.Table, e.Message)
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError returns a SchemaError for table, which may be empty.
func NewSchemaError(table, message string) *SchemaError {
	return &SchemaError{Table: table, Message: message}
}

// ConfigError reports a rejected option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("dbmlgen: option %s=%v: %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("dbmlgen: option %s: %s", e.Option, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns a ConfigError. value is nil when it is not worth
// reporting.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// EdgeError reports a relationship whose ends do not resolve. From and To
// are table.column pairs.
type EdgeError struct {
	From, To string
	Message  string
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("dbmlgen: relationship %s -> %s: %s", e.From, e.To, e.Message)
}

func (e *EdgeError) Is(target error) bool { return target == ErrInvalidEdge }

// NewEdgeError returns an EdgeError.
func NewEdgeError(from, to, message string) *EdgeError {
	return &EdgeError{From: from, To: to, Message: message}
}

// GenerationError reports an artifact that could not be written.
type GenerationError struct {
	Path string
	Op   string
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dbmlgen: generate %s: %s", e.Path, e.Op)
	}
	return fmt.Sprintf("dbmlgen: generate %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError for the artifact at path.
func NewGenerationError(path, op string, err error) *GenerationError {
	return &GenerationError{Path: path, Op: op, Err: err}
}

// IsSchemaError reports whether err wraps a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
