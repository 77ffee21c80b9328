package gen

import (
	"fmt"
	"time"

	"github.com/dave/jennifer/jen"
)

// Kind identifies one of the four artifacts generated per table.
type Kind string

// Artifact kinds in generation order.
const (
	KindMigration  Kind = "migration"
	KindModel      Kind = "model"
	KindService    Kind = "service"
	KindController Kind = "controller"
)

// Label returns the transcript label of the kind, e.g. Migration.
func (k Kind) Label() string {
	switch k {
	case KindMigration:
		return "Migration"
	case KindModel:
		return "Model"
	case KindService:
		return "Service"
	case KindController:
		return "Controller"
	}
	return string(k)
}

// Artifact is one generated file. Name, Methods and Fields describe its
// shape independently of the rendered source.
type Artifact struct {
	Kind Kind
	Type *Type
	// Path is relative to Config.Target, slash separated.
	Path string
	// Name is the main declared type, e.g. PostService.
	Name string
	// Methods are the declared methods and functions in order.
	Methods []string
	// Fields are the data declared by the artifact: struct fields of the
	// main type, fillable columns of a model, SQL statements of a migration.
	Fields []string
	File   *jen.File
}

// HasMethod reports whether the artifact declares the named method.
func (a *Artifact) HasMethod(name string) bool {
	for _, m := range a.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Emitter renders the artifacts of one type.
type Emitter interface {
	// Name returns the emitter name, e.g. "golang".
	Name() string
	// GenMigration renders {version}_Create{Table}Table.
	GenMigration(t *Type, version string) *Artifact
	// GenModel renders {Model}.
	GenModel(t *Type) *Artifact
	// GenService renders {Model}Service.
	GenService(t *Type) *Artifact
	// GenController renders {Model}Controller.
	GenController(t *Type) *Artifact
}

// versionLayout is the timestamp part of a migration version.
const versionLayout = "2006_01_02_150405"

// MigrationVersion returns the version of the seq-th migration of a run
// started at now: YYYY_MM_DD_HHMMSS_NNNNNNNNN_SSSS, where N is the
// nanosecond of the second. Versions sort in generation order.
func MigrationVersion(now time.Time, seq int) string {
	return fmt.Sprintf("%s_%09d_%04d", now.Format(versionLayout), now.Nanosecond(), seq)
}
