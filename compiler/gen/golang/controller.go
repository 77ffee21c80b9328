package golang

import (
	"net/http"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/dbmlgen/compiler/gen"
)

// route is one endpoint registered by the generated Routes method.
type route struct {
	method, path, handler string
}

// GenController implements gen.Emitter. Handlers have the
// http.HandlerFunc shape and are registered on a ServeMux by Routes.
func (e *Emitter) GenController(t *gen.Type) *gen.Artifact {
	name := t.ControllerName()
	base := t.Route()
	f := e.newFile("controllers")
	a := &gen.Artifact{
		Kind:   gen.KindController,
		Type:   t,
		Path:   gen.ControllerDir + "/" + name + ".go",
		Name:   name,
		Fields: []string{"service"},
		File:   f,
	}
	routes := []route{
		{http.MethodGet, base, "GetIndex"},
		{http.MethodPost, base + "/store", "PostStore"},
		{http.MethodGet, base + "/show/{id}", "GetShow"},
		{http.MethodPut, base + "/update/{id}", "PutUpdate"},
		{http.MethodDelete, base + "/destroy/{id}", "DeleteDestroy"},
	}
	relations := make([]string, 0, len(t.BelongsTo)+len(t.HasMany))
	for _, rel := range t.BelongsTo {
		relations = append(relations, rel.Name)
	}
	for _, rel := range t.HasMany {
		relations = append(relations, rel.Name)
	}
	for _, rel := range relations {
		routes = append(routes, route{http.MethodGet, base + "/" + rel + "/{id}", "Get" + gen.RelationMethod(rel)})
	}

	svc := jen.Id("c").Dot("service")
	handler := func(m string) *jen.Statement {
		a.Methods = append(a.Methods, m)
		return jen.Func().Params(jen.Id("c").Op("*").Id(name)).Id(m).Params(
			jen.Id("w").Qual(httpPkg, "ResponseWriter"),
			jen.Id("r").Op("*").Qual(httpPkg, "Request"),
		)
	}
	notFound := t.Name + " not found"

	f.Commentf("%s serves the %s endpoints.", name, t.TableName())
	f.Type().Id(name).Struct(
		jen.Id("service").Op("*").Qual(e.graph.ServicesPkg(), t.ServiceName()),
	)

	f.Commentf("New%s returns a controller delegating to svc.", name)
	f.Func().Id("New"+name).Params(jen.Id("svc").Op("*").Qual(e.graph.ServicesPkg(), t.ServiceName())).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("service"): jen.Id("svc")})),
	)
	a.Methods = append(a.Methods, "New"+name)

	f.Comment("Routes registers the endpoints on mux:")
	f.Comment("")
	for _, rt := range routes {
		f.Commentf("\t%s", rt)
	}
	a.Methods = append(a.Methods, "Routes")
	f.Func().Params(jen.Id("c").Op("*").Id(name)).Id("Routes").Params(jen.Id("mux").Op("*").Qual(httpPkg, "ServeMux")).BlockFunc(func(g *jen.Group) {
		for _, rt := range routes {
			g.Id("mux").Dot("HandleFunc").Call(jen.Lit(rt.String()), jen.Id("c").Dot(rt.handler))
		}
	})

	f.Commentf("GetIndex lists all %s.", t.TableName())
	f.Add(handler("GetIndex").Block(
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Add(svc.Clone()).Dot("GetAll").Call(reqCtx()),
		failOnErr(),
		jen.Qual(restPkg, "JSON").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusOK"), jen.Id("rows")),
	))

	f.Commentf("PostStore creates a %s from the JSON body.", t.Name)
	f.Add(handler("PostStore").Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Qual(restPkg, "Decode").Call(jen.Id("r")),
		badRequestOnErr(),
		jen.List(jen.Id("row"), jen.Err()).Op(":=").Add(svc.Clone()).Dot("Create").Call(reqCtx(), jen.Id("data")),
		failOnErr(),
		jen.Qual(restPkg, "JSON").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusCreated"), jen.Id("row")),
	))

	f.Commentf("GetShow returns a single %s.", t.Name)
	f.Add(handler("GetShow").Block(withID(
		jen.List(jen.Id("row"), jen.Err()).Op(":=").Add(svc.Clone()).Dot("FindByID").Call(reqCtx(), jen.Id("id")),
		jen.If(jen.Qual(gen.RuntimePkg, "IsNotFound").Call(jen.Err())).Block(
			restError("StatusNotFound", notFound),
			jen.Return(),
		),
		failOnErr(),
		jen.Qual(restPkg, "JSON").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusOK"), jen.Id("row")),
	)...))

	f.Commentf("PutUpdate updates a %s from the JSON body.", t.Name)
	f.Add(handler("PutUpdate").Block(withID(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Qual(restPkg, "Decode").Call(jen.Id("r")),
		badRequestOnErr(),
		jen.List(jen.Id("affected"), jen.Err()).Op(":=").Add(svc.Clone()).Dot("Update").Call(reqCtx(), jen.Id("id"), jen.Id("data")),
		failOnErr(),
		jen.If(jen.Id("affected").Op("==").Lit(0)).Block(
			restError("StatusNotFound", notFound+" or no changes made"),
			jen.Return(),
		),
		jen.Qual(restPkg, "JSON").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusOK"), jen.Map(jen.String()).String().Values(jen.Dict{
			jen.Lit("message"): jen.Lit(t.Name + " updated successfully"),
		})),
	)...))

	f.Commentf("DeleteDestroy deletes a %s.", t.Name)
	f.Add(handler("DeleteDestroy").Block(withID(
		jen.List(jen.Id("affected"), jen.Err()).Op(":=").Add(svc.Clone()).Dot("Delete").Call(reqCtx(), jen.Id("id")),
		failOnErr(),
		jen.If(jen.Id("affected").Op("==").Lit(0)).Block(
			restError("StatusNotFound", notFound),
			jen.Return(),
		),
		jen.Qual(restPkg, "NoContent").Call(jen.Id("w")),
	)...))

	for _, rel := range relations {
		m := "Get" + gen.RelationMethod(rel)
		f.Commentf("%s returns the related %s.", m, rel)
		f.Add(handler(m).Block(withID(
			jen.List(jen.Id("rel"), jen.Err()).Op(":=").Add(svc.Clone()).Dot(m).Call(reqCtx(), jen.Id("id")),
			failOnErr(),
			jen.Qual(restPkg, "JSON").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusOK"), jen.Id("rel")),
		)...))
	}
	return a
}

func reqCtx() jen.Code {
	return jen.Id("r").Dot("Context").Call()
}

// withID prefixes body with the parsing of the {id} path value, answering
// 400 when it is malformed.
func withID(body ...jen.Code) []jen.Code {
	return append([]jen.Code{
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual(restPkg, "ID").Call(jen.Id("r")),
		badRequestOnErr(),
	}, body...)
}

func badRequestOnErr() jen.Code {
	return ifErr(
		jen.Qual(restPkg, "Error").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusBadRequest"), jen.Err().Dot("Error").Call()),
		jen.Return(),
	)
}

func failOnErr() jen.Code {
	return ifErr(
		jen.Qual(restPkg, "Fail").Call(jen.Id("w"), jen.Id("r"), jen.Err()),
		jen.Return(),
	)
}

func restError(status, msg string) jen.Code {
	return jen.Qual(restPkg, "Error").Call(jen.Id("w"), jen.Qual(httpPkg, status), jen.Lit(msg))
}

// String returns the ServeMux pattern of rt.
func (rt route) String() string {
	return rt.method + " " + rt.path
}
