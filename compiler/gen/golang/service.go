package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/dbmlgen/compiler/gen"
	"github.com/syssam/dbmlgen/dbml"
)

// GenService implements gen.Emitter.
func (e *Emitter) GenService(t *gen.Type) *gen.Artifact {
	name := t.ServiceName()
	f := e.newFile("services")
	a := &gen.Artifact{
		Kind:   gen.KindService,
		Type:   t,
		Path:   gen.ServiceDir + "/" + name + ".go",
		Name:   name,
		Fields: []string{"model"},
		File:   f,
	}
	recv := jen.Id("s").Op("*").Id(name)
	model := jen.Id("s").Dot("model")
	method := func(m string) *jen.Statement {
		a.Methods = append(a.Methods, m)
		return jen.Func().Params(recv).Id(m)
	}
	idParam := jen.Id("id").Int64()

	f.Commentf("%s holds the business logic for %s.", name, t.TableName())
	f.Type().Id(name).Struct(
		jen.Id("model").Op("*").Qual(e.graph.ModelsPkg(), t.Name),
	)

	f.Commentf("New%s returns a %s running on drv.", name, name)
	f.Func().Id("New"+name).Params(jen.Id("drv").Qual(dialectPkg, "Driver")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id("model"): jen.Qual(e.graph.ModelsPkg(), "New"+t.Name).Call(jen.Id("drv")),
		})),
	)
	a.Methods = append(a.Methods, "New"+name)

	f.Commentf("GetAll returns every %s row.", t.TableName())
	f.Add(method("GetAll").Params(ctxParam()).Params(records(), jen.Error()).Block(
		jen.Return(model.Clone().Dot("All").Call(jen.Id("ctx"))),
	))

	f.Commentf("FindByID returns the %s with the given id.", strings.ToLower(t.Name))
	f.Add(method("FindByID").Params(ctxParam(), idParam.Clone()).Params(record(), jen.Error()).Block(
		jen.Return(model.Clone().Dot("Find").Call(jen.Id("ctx"), jen.Id("id"))),
	))

	var create []jen.Code
	if req := requiredFields(t); len(req) > 0 {
		create = append(create,
			jen.If(jen.Err().Op(":=").Id("data").Dot("Require").Call(lits(req)...), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
		)
	}
	create = append(create, jen.Id("row").Op(":=").Add(model.Clone()).Dot("Fill").Call(jen.Id("data")))
	create = append(create, autoFields(t)...)
	create = append(create,
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Add(model.Clone()).Dot("Create").Call(jen.Id("ctx"), jen.Id("row")),
		ifErr(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(model.Clone().Dot("Find").Call(jen.Id("ctx"), jen.Id("id"))),
	)
	f.Comment("Create stores the fillable fields of data together with the server")
	f.Comment("generated fields and returns the stored row. A missing required")
	f.Comment("field yields a dbmlgen.ValidationError.")
	f.Add(method("Create").Params(ctxParam(), jen.Id("data").Add(record())).Params(record(), jen.Error()).Block(create...))

	f.Comment("Update writes the fillable fields of data and returns the number of")
	f.Comment("affected rows.")
	f.Add(method("Update").Params(ctxParam(), idParam.Clone(), jen.Id("data").Add(record())).Params(jen.Int64(), jen.Error()).Block(
		jen.Return(model.Clone().Dot("Update").Call(jen.Id("ctx"), jen.Id("id"), model.Clone().Dot("Fill").Call(jen.Id("data")))),
	))

	if t.HasSoftDelete() {
		f.Commentf("Delete marks the row deleted by setting %s.", gen.DeletedAt)
		f.Add(method("Delete").Params(ctxParam(), idParam.Clone()).Params(jen.Int64(), jen.Error()).Block(
			jen.Return(model.Clone().Dot("Update").Call(jen.Id("ctx"), jen.Id("id"), record().Values(jen.Dict{
				jen.Lit(gen.DeletedAt): jen.Qual(timePkg, "Now").Call(),
			}))),
		))
		f.Comment("ForceDelete removes the row.")
		f.Add(method("ForceDelete").Params(ctxParam(), idParam.Clone()).Params(jen.Int64(), jen.Error()).Block(
			jen.Return(model.Clone().Dot("Delete").Call(jen.Id("ctx"), jen.Id("id"))),
		))
	} else {
		f.Comment("Delete removes the row.")
		f.Add(method("Delete").Params(ctxParam(), idParam.Clone()).Params(jen.Int64(), jen.Error()).Block(
			jen.Return(model.Clone().Dot("Delete").Call(jen.Id("ctx"), jen.Id("id"))),
		))
	}

	for _, rel := range t.BelongsTo {
		m := gen.RelationMethod(rel.Name)
		f.Commentf("Get%s returns the %s the %s belongs to.", m, rel.Name, strings.ToLower(t.Name))
		f.Add(method("Get"+m).Params(ctxParam(), idParam.Clone()).Params(record(), jen.Error()).Block(
			jen.Return(model.Clone().Dot(m).Call(jen.Id("ctx"), jen.Id("id"))),
		))
	}
	for _, rel := range t.HasMany {
		m := gen.RelationMethod(rel.Name)
		f.Commentf("Get%s returns the %s of the %s.", m, rel.Name, strings.ToLower(t.Name))
		f.Add(method("Get"+m).Params(ctxParam(), idParam.Clone()).Params(records(), jen.Error()).Block(
			jen.Return(model.Clone().Dot(m).Call(jen.Id("ctx"), jen.Id("id"))),
		))
	}
	return a
}

// autoFields returns the statements filling server generated columns of
// row: uuid sources get a new UUID, auth sources are left to the
// application and slug columns derive from their source field.
func autoFields(t *gen.Type) []jen.Code {
	var code []jen.Code
	for _, c := range t.AutoFields() {
		src := c.Metadata.AutoSource
		switch {
		case src == "uuid":
			code = append(code, jen.Id("row").Index(jen.Lit(c.Name)).Op("=").Qual(uuidPkg, "NewString").Call())
		case strings.HasPrefix(src, "auth"):
			code = append(code,
				jen.Commentf("TODO: set %s from the authenticated user (%s).", c.Name, src),
			)
		case isSlug(c):
			code = append(code, jen.Id("row").Index(jen.Lit(c.Name)).Op("=").Qual(slugPkg, "Make").Call(
				jen.Id("data").Dot("String").Call(jen.Lit(src)),
			))
		}
	}
	return code
}

// requiredFields returns the input columns marked required.
func requiredFields(t *gen.Type) []string {
	var names []string
	for _, c := range t.Columns() {
		if c.Metadata.IsInput() && c.Metadata.Required {
			names = append(names, c.Name)
		}
	}
	return names
}

func isSlug(c *dbml.Column) bool {
	return c.Name == "slug" && c.Metadata.AutoSource != ""
}
