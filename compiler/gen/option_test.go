package gen

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbmlgen/naming"
)

func TestNewConfig_Defaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ".", c.Target)
	assert.Equal(t, DefaultPackage, c.Package)
	assert.Equal(t, "app/app/models", c.ModelsPkg())
	assert.Equal(t, "app/app/services", c.ServicesPkg())
	assert.Equal(t, DefaultHeader, c.Header)
	assert.IsType(t, naming.Simple{}, c.Inflector)
	assert.NotNil(t, c.Clock)
	assert.Equal(t, os.Stdout, c.Output)
	assert.NotNil(t, c.Logger)
	assert.False(t, c.Quiet)
	assert.False(t, c.Strict)
}

func TestOptions(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewConfig(
		WithTarget("out"),
		WithPackage("example.com/shop"),
		WithHeader("custom"),
		WithInflectorName("rules"),
		WithClock(func() time.Time { return now }),
		WithOutput(&out),
		WithQuiet(true),
		WithLogger(logger),
		WithStrict(true),
	)
	require.NoError(t, err)

	assert.Equal(t, "out", c.Target)
	assert.Equal(t, "example.com/shop", c.Package)
	assert.Equal(t, "custom", c.Header)
	assert.IsType(t, &naming.Rules{}, c.Inflector)
	assert.Equal(t, now, c.Clock())
	assert.Same(t, &out, c.Output)
	assert.True(t, c.Quiet)
	assert.Same(t, logger, c.Logger)
	assert.True(t, c.Strict)
	assert.Equal(t, "example.com/shop/app/models", c.ModelsPkg())
	assert.Equal(t, "example.com/shop/app/services", c.ServicesPkg())
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		opt    Option
		option string
	}{
		{"empty target", WithTarget(""), "Target"},
		{"empty package", WithPackage(""), "Package"},
		{"nil inflector", WithInflector(nil), "Inflector"},
		{"unknown inflector", WithInflectorName("latin"), "Inflector"},
		{"nil clock", WithClock(nil), "Clock"},
		{"nil output", WithOutput(nil), "Output"},
		{"nil logger", WithLogger(nil), "Logger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opt)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrMissingConfig)
			assert.Contains(t, err.Error(), tt.option)
		})
	}
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithTarget(""), WithPackage(""), WithHeader("kept"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Target")
	assert.Contains(t, err.Error(), "Package")
	assert.Equal(t, "kept", c.Header)
}

func TestMustNewConfig(t *testing.T) {
	assert.NotPanics(t, func() { MustNewConfig(WithTarget("x")) })
	assert.Panics(t, func() { MustNewConfig(WithTarget("")) })
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbmlgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: database/schema.dbml
target: build
package: example.com/shop
inflector: rules
strict: true
`), 0o644))

	fc, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{
		Schema:    "database/schema.dbml",
		Target:    "build",
		Package:   "example.com/shop",
		Inflector: "rules",
		Strict:    true,
	}, fc)

	c, err := NewConfig(fc.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "build", c.Target)
	assert.Equal(t, "example.com/shop", c.Package)
	assert.Equal(t, DefaultHeader, c.Header)
	assert.IsType(t, &naming.Rules{}, c.Inflector)
	assert.True(t, c.Strict)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: [unclosed"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "dbmlgen: parse config")
}
