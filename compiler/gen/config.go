package gen

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/dbmlgen/naming"
)

// Output locations relative to Config.Target.
const (
	MigrationDir  = "database/migrations"
	ModelDir      = "app/models"
	ServiceDir    = "app/services"
	ControllerDir = "app/controllers"
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by dbmlgen. DO NOT EDIT."

// DefaultPackage is the module path assumed for the generated project, as
// created by `go mod init app`. Its models live at app/app/models.
const DefaultPackage = "app"

// RuntimePkg is the import path of the runtime the generated code uses.
const RuntimePkg = "github.com/syssam/dbmlgen"

// Config holds the global configuration for code generation.
type Config struct {
	// Target is the project root the artifacts are written under.
	Target string
	// Package is the Go module path of the target project. Generated
	// services import Package/app/models and controllers import
	// Package/app/services.
	Package string
	// Header is the comment written at the top of each file.
	Header string
	// Inflector derives model and relation names. Defaults to naming.Simple.
	Inflector naming.Inflector
	// Clock stamps migration versions. Defaults to time.Now.
	Clock func() time.Time
	// Output receives the progress transcript. Defaults to os.Stdout.
	Output io.Writer
	// Quiet suppresses the transcript.
	Quiet bool
	// Logger receives debug records. Defaults to slog.Default().
	Logger *slog.Logger
	// Strict turns unresolved relationships and model name clashes into
	// errors.
	Strict bool
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Target:    ".",
		Package:   DefaultPackage,
		Header:    DefaultHeader,
		Inflector: naming.Simple{},
		Clock:     time.Now,
		Output:    os.Stdout,
		Logger:    slog.Default(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// defaults fills zero fields of a Config built without NewConfig.
func (c *Config) defaults() {
	if c.Target == "" {
		c.Target = "."
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if c.Inflector == nil {
		c.Inflector = naming.Simple{}
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ModelsPkg returns the import path of the generated models package.
func (c *Config) ModelsPkg() string { return path.Join(c.Package, ModelDir) }

// ServicesPkg returns the import path of the generated services package.
func (c *Config) ServicesPkg() string { return path.Join(c.Package, ServiceDir) }

// FileConfig is the YAML configuration file read by the CLI.
//
//	schema: database/schema.dbml
//	target: .
//	package: example.com/shop
//	inflector: simple
//	strict: false
//	header: ""
type FileConfig struct {
	Schema    string `yaml:"schema,omitempty"`
	Target    string `yaml:"target,omitempty"`
	Package   string `yaml:"package,omitempty"`
	Inflector string `yaml:"inflector,omitempty"`
	Strict    bool   `yaml:"strict,omitempty"`
	Header    string `yaml:"header,omitempty"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(filename string) (*FileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("dbmlgen: read config: %w", err)
	}
	fc := &FileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("dbmlgen: parse config %s: %w", filename, err)
	}
	return fc, nil
}

// Options converts the non-empty file settings to options.
func (fc *FileConfig) Options() []Option {
	var opts []Option
	if fc.Target != "" {
		opts = append(opts, WithTarget(fc.Target))
	}
	if fc.Package != "" {
		opts = append(opts, WithPackage(fc.Package))
	}
	if fc.Inflector != "" {
		opts = append(opts, WithInflectorName(fc.Inflector))
	}
	if fc.Header != "" {
		opts = append(opts, WithHeader(fc.Header))
	}
	if fc.Strict {
		opts = append(opts, WithStrict(true))
	}
	return opts
}
