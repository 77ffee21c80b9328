package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/dbmlgen/compiler/gen"
)

// GenModel implements gen.Emitter. The model embeds *sql.Table and adds one
// accessor per relation.
func (e *Emitter) GenModel(t *gen.Type) *gen.Artifact {
	name := t.Name
	fillable := t.Fillable()
	f := e.newFile("models")
	a := &gen.Artifact{
		Kind:   gen.KindModel,
		Type:   t,
		Path:   gen.ModelDir + "/" + name + ".go",
		Name:   name,
		Fields: fillable,
		File:   f,
	}

	f.Commentf("%sFillable lists the %s columns accepted from client input.", name, t.TableName())
	f.Var().Id(name + "Fillable").Op("=").Index().String().Values(lits(fillable)...)

	f.Commentf("%s is the model of the %s table.", name, t.TableName())
	f.Type().Id(name).Struct(
		jen.Op("*").Qual(sqlPkg, "Table"),
	)

	f.Commentf("New%s returns the %s model running on drv.", name, name)
	f.Func().Id("New"+name).Params(jen.Id("drv").Qual(dialectPkg, "Driver")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id("Table"): jen.Qual(sqlPkg, "NewTable").Call(
				jen.Id("drv"), jen.Lit(t.TableName()), jen.Lit(t.PrimaryKey()), jen.Id(name+"Fillable").Op("..."),
			),
		})),
	)
	a.Methods = append(a.Methods, "New"+name)

	for _, rel := range t.BelongsTo {
		method := gen.RelationMethod(rel.Name)
		f.Commentf("%s returns the %s row referenced by %s, or nil when %s is NULL.", method, rel.Table, rel.ForeignKey, rel.ForeignKey)
		f.Func().Params(jen.Id("m").Op("*").Id(name)).Id(method).Params(ctxParam(), jen.Id("id").Int64()).Params(record(), jen.Error()).Block(
			jen.List(jen.Id("row"), jen.Err()).Op(":=").Id("m").Dot("Find").Call(jen.Id("ctx"), jen.Id("id")),
			ifErr(jen.Return(jen.Nil(), jen.Err())),
			jen.If(jen.Id("row").Index(jen.Lit(rel.ForeignKey)).Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.Nil()),
			),
			jen.Return(jen.Qual(sqlPkg, "NewTable").Call(
				jen.Id("m").Dot("Driver").Call(), jen.Lit(rel.Table), jen.Lit(rel.OwnerKey),
			).Dot("Find").Call(jen.Id("ctx"), jen.Id("row").Index(jen.Lit(rel.ForeignKey)))),
		)
		a.Methods = append(a.Methods, method)
	}

	for _, rel := range t.HasMany {
		method := gen.RelationMethod(rel.Name)
		related := jen.Qual(sqlPkg, "NewTable").Call(jen.Id("m").Dot("Driver").Call(), jen.Lit(rel.Table), jen.Lit(e.relatedPK(rel.Table)))
		var body []jen.Code
		if rel.LocalKey == t.PrimaryKey() {
			body = append(body, jen.Return(related.Dot("Where").Call(jen.Id("ctx"), jen.Lit(rel.ForeignKey), jen.Id("id"))))
		} else {
			body = append(body,
				jen.List(jen.Id("row"), jen.Err()).Op(":=").Id("m").Dot("Find").Call(jen.Id("ctx"), jen.Id("id")),
				ifErr(jen.Return(jen.Nil(), jen.Err())),
				jen.Return(related.Dot("Where").Call(jen.Id("ctx"), jen.Lit(rel.ForeignKey), jen.Id("row").Index(jen.Lit(rel.LocalKey)))),
			)
		}
		f.Commentf("%s returns the %s rows whose %s references this %s.", method, rel.Table, rel.ForeignKey, t.TableName())
		f.Func().Params(jen.Id("m").Op("*").Id(name)).Id(method).Params(ctxParam(), jen.Id("id").Int64()).Params(records(), jen.Error()).Block(body...)
		a.Methods = append(a.Methods, method)
	}
	return a
}
