package golang

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbmlgen/compiler/gen"
	"github.com/syssam/dbmlgen/compiler/load"
	"github.com/syssam/dbmlgen/dbml"
)

func init() {
	color.NoColor = true
}

const blog = `
Table users {
  id int [pk, increment]
  email varchar [unique, not null]
}
Table posts {
  id int [pk, increment]
  uuid varchar [note: 'auto:server:uuid']
  user_id int [ref: > users.id, note: 'auto:server:auth.id']
  title varchar [note: 'input:required|max:255']
  slug varchar [note: 'auto:server:from=title']
  deleted_at timestamp [null]
}
`

func newGraph(t *testing.T, input string, opts ...gen.Option) *gen.Graph {
	t.Helper()
	s, err := dbml.Parse(input)
	require.NoError(t, err)
	opts = append([]gen.Option{
		gen.WithTarget(t.TempDir()),
		gen.WithQuiet(true),
		gen.WithClock(func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }),
	}, opts...)
	g, err := gen.NewGraph(gen.MustNewConfig(opts...), s)
	require.NoError(t, err)
	return g
}

func render(t *testing.T, a *gen.Artifact) string {
	t.Helper()
	require.NotNil(t, a)
	return fmt.Sprintf("%#v", a.File)
}

func TestEmitter_GenMigration(t *testing.T) {
	g := newGraph(t, blog)
	e := NewEmitter(g)
	assert.Equal(t, "golang", e.Name())

	a := e.GenMigration(g.Type("posts"), "2026_10_19_120000_000000000_0002")
	assert.Equal(t, gen.KindMigration, a.Kind)
	assert.Equal(t, "database/migrations/2026_10_19_120000_000000000_0002_CreatePostsTable.go", a.Path)
	assert.Equal(t, []string{"Version", "Up", "Down"}, a.Methods)
	require.Len(t, a.Fields, 2)
	assert.Contains(t, a.Fields[1], "FOREIGN KEY (user_id) REFERENCES users(id)")

	src := render(t, a)
	assert.Contains(t, src, "// Code generated by dbmlgen. DO NOT EDIT.")
	assert.Contains(t, src, "package migrations")
	assert.Contains(t, src, "type CreatePostsTable struct{}")
	assert.Contains(t, src, "var _ sql.Migration = CreatePostsTable{}")
	assert.Contains(t, src, `return "2026_10_19_120000_000000000_0002"`)
	assert.Contains(t, src, "func (CreatePostsTable) Up(ctx context.Context, ex dialect.ExecQuerier) error {")
	assert.Contains(t, src, "return sql.ExecAll(\n\t\tctx,\n\t\tex,")
	assert.Contains(t, src, `"ALTER TABLE posts ADD CONSTRAINT fk_posts_user_id FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",`)
	assert.Contains(t, src, `return sql.ExecAll(ctx, ex, "DROP TABLE IF EXISTS posts")`)
}

func TestEmitter_GenModel(t *testing.T) {
	g := newGraph(t, blog)
	e := NewEmitter(g)

	a := e.GenModel(g.Type("posts"))
	assert.Equal(t, "app/models/Post.go", a.Path)
	assert.Equal(t, []string{"NewPost", "User"}, a.Methods)
	assert.Equal(t, []string{"id", "title", "deleted_at"}, a.Fields)
	src := render(t, a)
	assert.Contains(t, src, "package models")
	assert.Contains(t, src, `var PostFillable = []string{"id", "title", "deleted_at"}`)
	assert.Contains(t, src, "*sql.Table")
	assert.Contains(t, src, `Table: sql.NewTable(drv, "posts", "id", PostFillable...)`)
	assert.Contains(t, src, "func (m *Post) User(ctx context.Context, id int64) (sql.Record, error) {")
	assert.Contains(t, src, `if row["user_id"] == nil {`)
	assert.Contains(t, src, `return sql.NewTable(m.Driver(), "users", "id").Find(ctx, row["user_id"])`)

	a = e.GenModel(g.Type("users"))
	assert.Equal(t, []string{"NewUser", "Posts"}, a.Methods)
	src = render(t, a)
	assert.Contains(t, src, "func (m *User) Posts(ctx context.Context, id int64) ([]sql.Record, error) {")
	assert.Contains(t, src, `return sql.NewTable(m.Driver(), "posts", "id").Where(ctx, "user_id", id)`)
}

func TestEmitter_GenModel_LocalKey(t *testing.T) {
	g := newGraph(t, `
Table accounts { id int [pk] code varchar [unique] }
Table invoices { id int [pk] account_code varchar [ref: > accounts.code] }
`)
	src := render(t, NewEmitter(g).GenModel(g.Type("accounts")))
	assert.Contains(t, src, "row, err := m.Find(ctx, id)")
	assert.Contains(t, src, `return sql.NewTable(m.Driver(), "invoices", "id").Where(ctx, "account_code", row["code"])`)
}

func TestEmitter_GenModel_ReservedRelation(t *testing.T) {
	g := newGraph(t, `
Table drivers { id int [pk] }
Table trips { id int [pk] driver_id int [ref: > drivers.id] }
`)
	e := NewEmitter(g)
	a := e.GenModel(g.Type("trips"))
	assert.Equal(t, []string{"NewTrip", "DriverByDriverID"}, a.Methods)
	src := render(t, a)
	assert.Contains(t, src, "func (m *Trip) DriverByDriverID(ctx context.Context, id int64) (sql.Record, error) {")
	assert.Contains(t, src, `return sql.NewTable(m.Driver(), "drivers", "id").Find(ctx, row["driver_id"])`)
	assert.NotContains(t, src, "func (m *Trip) Driver(")

	svc := e.GenService(g.Type("trips"))
	assert.True(t, svc.HasMethod("GetDriverByDriverID"))
}

func TestEmitter_GenService(t *testing.T) {
	g := newGraph(t, blog)
	e := NewEmitter(g)

	a := e.GenService(g.Type("posts"))
	assert.Equal(t, "app/services/PostService.go", a.Path)
	assert.Equal(t, []string{"model"}, a.Fields)
	assert.Equal(t, []string{"NewPostService", "GetAll", "FindByID", "Create", "Update", "Delete", "ForceDelete", "GetUser"}, a.Methods)
	src := render(t, a)
	assert.Contains(t, src, "package services")
	assert.Contains(t, src, "model *models.Post")
	assert.Contains(t, src, "return &PostService{model: models.NewPost(drv)}")
	assert.Contains(t, src, `if err := data.Require("title"); err != nil {`)
	assert.Contains(t, src, "row := s.model.Fill(data)")
	assert.Contains(t, src, `row["uuid"] = uuid.NewString()`)
	assert.Contains(t, src, "// TODO: set user_id from the authenticated user (auth.id).")
	assert.Contains(t, src, `row["slug"] = slug.Make(data.String("title"))`)
	assert.Contains(t, src, `return s.model.Update(ctx, id, sql.Record{"deleted_at": time.Now()})`)
	assert.Contains(t, src, "func (s *PostService) ForceDelete(ctx context.Context, id int64) (int64, error) {")
	assert.Contains(t, src, "return s.model.User(ctx, id)")

	a = e.GenService(g.Type("users"))
	assert.False(t, a.HasMethod("ForceDelete"))
	src = render(t, a)
	assert.Contains(t, src, "return s.model.Delete(ctx, id)")
	assert.Contains(t, src, "func (s *UserService) GetPosts(ctx context.Context, id int64) ([]sql.Record, error) {")
	assert.NotContains(t, src, "uuid")
	assert.NotContains(t, src, "Require(")
}

func TestEmitter_GenController(t *testing.T) {
	g := newGraph(t, blog)
	e := NewEmitter(g)

	a := e.GenController(g.Type("posts"))
	assert.Equal(t, "app/controllers/PostController.go", a.Path)
	assert.Equal(t, []string{"service"}, a.Fields)
	assert.Equal(t, []string{"NewPostController", "Routes", "GetIndex", "PostStore", "GetShow", "PutUpdate", "DeleteDestroy", "GetUser"}, a.Methods)
	src := render(t, a)
	assert.Contains(t, src, "package controllers")
	assert.Contains(t, src, "service *services.PostService")
	for _, pattern := range []string{
		`mux.HandleFunc("GET /api/post", c.GetIndex)`,
		`mux.HandleFunc("POST /api/post/store", c.PostStore)`,
		`mux.HandleFunc("GET /api/post/show/{id}", c.GetShow)`,
		`mux.HandleFunc("PUT /api/post/update/{id}", c.PutUpdate)`,
		`mux.HandleFunc("DELETE /api/post/destroy/{id}", c.DeleteDestroy)`,
		`mux.HandleFunc("GET /api/post/user/{id}", c.GetUser)`,
	} {
		assert.Contains(t, src, pattern)
	}
	assert.Contains(t, src, "func (c *PostController) GetShow(w http.ResponseWriter, r *http.Request) {")
	assert.Contains(t, src, "id, err := rest.ID(r)")
	assert.Contains(t, src, "if dbmlgen.IsNotFound(err) {")
	assert.Contains(t, src, `rest.Error(w, http.StatusNotFound, "Post not found")`)
	assert.Contains(t, src, `rest.Error(w, http.StatusNotFound, "Post not found or no changes made")`)
	assert.Contains(t, src, `rest.JSON(w, http.StatusOK, map[string]string{"message": "Post updated successfully"})`)
	assert.Contains(t, src, "return &PostController{service: svc}")
	assert.Contains(t, src, "rest.JSON(w, http.StatusCreated, row)")
	assert.Contains(t, src, "rest.NoContent(w)")
	assert.Contains(t, src, "rel, err := c.service.GetUser(r.Context(), id)")
}

func TestGenerate(t *testing.T) {
	g := newGraph(t, `
Table users { id int [pk, increment] email varchar }
Table posts { id int [pk, increment] user_id int [ref: > users.id] }
`)
	written, err := Generate(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, written, 8)

	var paths []string
	for _, a := range written {
		paths = append(paths, a.Path)
		_, err := os.Stat(filepath.Join(g.Target, a.Path))
		assert.NoError(t, err, a.Path)
	}
	assert.Equal(t, []string{
		"database/migrations/2026_10_19_120000_000000000_0001_CreateUsersTable.go",
		"app/models/User.go",
		"app/services/UserService.go",
		"app/controllers/UserController.go",
		"database/migrations/2026_10_19_120000_000000000_0002_CreatePostsTable.go",
		"app/models/Post.go",
		"app/services/PostService.go",
		"app/controllers/PostController.go",
	}, paths)

	controller, err := os.ReadFile(filepath.Join(g.Target, "app/controllers/PostController.go"))
	require.NoError(t, err)
	assert.Contains(t, string(controller), "c.service.GetUser(r.Context(), id)")
	service, err := os.ReadFile(filepath.Join(g.Target, "app/services/PostService.go"))
	require.NoError(t, err)
	assert.Contains(t, string(service), "return s.model.User(ctx, id)")
	assert.Contains(t, string(service), `"app/app/models"`)
}

func TestGenerate_Package(t *testing.T) {
	g := newGraph(t, "Table users { id int [pk] }", gen.WithPackage("example.com/shop"), gen.WithHeader(""))
	written, err := Generate(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, written, 4)

	src := render(t, written[3])
	assert.Contains(t, src, `"example.com/shop/app/services"`)
	assert.NotContains(t, src, "DO NOT EDIT")
}

func TestGenerate_BlogExample(t *testing.T) {
	s, err := load.Load("../../../examples/blog/schema.dbml", dbml.Strict())
	require.NoError(t, err)
	cfg := gen.MustNewConfig(
		gen.WithTarget(t.TempDir()),
		gen.WithQuiet(true),
		gen.WithStrict(true),
		gen.WithInflectorName("rules"),
		gen.WithPackage("example.com/blog"),
	)
	g, err := gen.NewGraph(cfg, s)
	require.NoError(t, err)

	written, err := Generate(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, written, 12)

	comments := g.Type("comments")
	require.NotNil(t, comments)
	assert.Equal(t, "Comment", comments.Name)
	model := NewEmitter(g).GenModel(comments)
	assert.Equal(t, []string{"NewComment", "Post", "Comment", "Children"}, model.Methods)
}
