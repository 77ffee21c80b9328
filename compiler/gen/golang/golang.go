// Package golang renders the migration, model, service and controller of
// every table as Go source with jennifer.
package golang

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/dbmlgen/compiler/gen"
)

// Import paths used by the generated code.
const (
	contextPkg = "context"
	httpPkg    = "net/http"
	timePkg    = "time"
	dialectPkg = gen.RuntimePkg + "/dialect"
	sqlPkg     = gen.RuntimePkg + "/dialect/sql"
	restPkg    = gen.RuntimePkg + "/contrib/rest"
	slugPkg    = gen.RuntimePkg + "/contrib/slug"
	uuidPkg    = "github.com/google/uuid"
)

// Emitter implements gen.Emitter for Go.
type Emitter struct {
	graph *gen.Graph
}

var _ gen.Emitter = (*Emitter)(nil)

// NewEmitter returns an emitter for the types of g.
func NewEmitter(g *gen.Graph) *Emitter {
	return &Emitter{graph: g}
}

// Name implements gen.Emitter.
func (*Emitter) Name() string { return "golang" }

// Generate writes the artifacts of every type of g and returns them.
func Generate(ctx context.Context, g *gen.Graph) ([]*gen.Artifact, error) {
	gr := gen.NewGenerator(g, NewEmitter(g))
	err := gr.Generate(ctx)
	return gr.Written(), err
}

// newFile creates a new Jennifer file with the header comment.
func (e *Emitter) newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	if h := e.graph.Header; h != "" {
		f.HeaderComment(h)
	}
	f.ImportName(dialectPkg, "dialect")
	f.ImportName(sqlPkg, "sql")
	f.ImportName(restPkg, "rest")
	f.ImportName(slugPkg, "slug")
	f.ImportName(uuidPkg, "uuid")
	f.ImportName(gen.RuntimePkg, "dbmlgen")
	f.ImportName(e.graph.ModelsPkg(), "models")
	f.ImportName(e.graph.ServicesPkg(), "services")
	return f
}

// relatedPK returns the primary key of table, or "id" for tables outside
// the schema.
func (e *Emitter) relatedPK(table string) string {
	if t := e.graph.Type(table); t != nil {
		return t.PrimaryKey()
	}
	return "id"
}

// ctxParam is the "ctx context.Context" parameter.
func ctxParam() jen.Code {
	return jen.Id("ctx").Qual(contextPkg, "Context")
}

func record() *jen.Statement {
	return jen.Qual(sqlPkg, "Record")
}

func records() *jen.Statement {
	return jen.Index().Qual(sqlPkg, "Record")
}

// ifErr returns "if err != nil { body }".
func ifErr(body ...jen.Code) jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(body...)
}

func lits(values []string) []jen.Code {
	codes := make([]jen.Code, len(values))
	for i, v := range values {
		codes[i] = jen.Lit(v)
	}
	return codes
}

// multiline renders call arguments one per line.
var multiline = jen.Options{Open: "(", Close: ")", Separator: ",", Multi: true}
