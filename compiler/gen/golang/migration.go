package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/dbmlgen/compiler/gen"
)

// GenMigration implements gen.Emitter. The migration type runs the DDL of
// gen.MigrationDDL through sql.ExecAll.
func (e *Emitter) GenMigration(t *gen.Type, version string) *gen.Artifact {
	name := t.MigrationName()
	stmts := gen.MigrationDDL(t)
	f := e.newFile("migrations")

	f.Commentf("%s creates the %s table.", name, t.TableName())
	f.Type().Id(name).Struct()
	f.Var().Id("_").Qual(sqlPkg, "Migration").Op("=").Id(name).Values()

	f.Comment("Version returns the migration version.")
	f.Func().Params(jen.Id(name)).Id("Version").Params().String().Block(
		jen.Return(jen.Lit(version)),
	)

	up := []jen.Code{jen.Id("ctx"), jen.Id("ex")}
	up = append(up, lits(stmts)...)
	f.Commentf("Up creates the %s table with its indexes and foreign keys.", t.TableName())
	f.Func().Params(jen.Id(name)).Id("Up").Params(
		ctxParam(), jen.Id("ex").Qual(dialectPkg, "ExecQuerier"),
	).Error().Block(
		jen.Return(jen.Qual(sqlPkg, "ExecAll").Custom(multiline, up...)),
	)

	f.Commentf("Down drops the %s table.", t.TableName())
	f.Func().Params(jen.Id(name)).Id("Down").Params(
		ctxParam(), jen.Id("ex").Qual(dialectPkg, "ExecQuerier"),
	).Error().Block(
		jen.Return(jen.Qual(sqlPkg, "ExecAll").Call(jen.Id("ctx"), jen.Id("ex"), jen.Lit(gen.DropDDL(t)))),
	)

	return &gen.Artifact{
		Kind:    gen.KindMigration,
		Type:    t,
		Path:    gen.MigrationDir + "/" + version + "_" + name + ".go",
		Name:    name,
		Methods: []string{"Version", "Up", "Down"},
		Fields:  stmts,
		File:    f,
	}
}
