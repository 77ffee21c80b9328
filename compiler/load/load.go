// Package load reads DBML schema files from disk.
package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/syssam/dbmlgen/dbml"
)

// ErrSchemaNotFound is returned when the schema file does not exist.
// It matches fs.ErrNotExist as well.
var ErrSchemaNotFound = errors.New("schema file not found")

// NotFoundError reports the missing schema path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema file %s not found", e.Path)
}

// Is reports whether target is ErrSchemaNotFound or fs.ErrNotExist.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound || target == fs.ErrNotExist
}

// Load reads and parses the schema at path.
func Load(path string, opts ...dbml.Option) (*dbml.Schema, error) {
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &NotFoundError{Path: path}
	case err != nil:
		return nil, fmt.Errorf("load: read schema: %w", err)
	}
	s, err := dbml.Parse(string(b), opts...)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	return s, nil
}
