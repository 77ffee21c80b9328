package gen

import (
	"context"
)

// Generator writes the artifacts of every type of a graph, one table at a
// time in declaration order. Migration versions share the clock reading
// taken when Generate starts and are ordered by a per-run counter.
//
// Example:
//
//	g, err := gen.NewGraph(cfg, schema)
//	if err != nil {
//	    return err
//	}
//	err = gen.NewGenerator(g, golang.NewEmitter(g)).Generate(ctx)
type Generator struct {
	graph   *Graph
	emitter Emitter
	written []*Artifact
}

// NewGenerator creates a generator rendering g with e.
func NewGenerator(g *Graph, e Emitter) *Generator {
	return &Generator{graph: g, emitter: e}
}

// Generate renders and writes all artifacts. It stops at the first write
// failure or when ctx is done; files already written stay on disk.
func (g *Generator) Generate(ctx context.Context) error {
	if g.graph == nil || g.graph.Config == nil {
		return NewConfigError("Graph", nil, "missing graph or config")
	}
	if g.emitter == nil {
		return NewConfigError("Emitter", nil, "no emitter set")
	}
	cfg := g.graph.Config
	cfg.defaults()
	g.written = nil
	now := cfg.Clock()
	p := newPrinter(cfg)
	cfg.Logger.Debug("generating", "emitter", g.emitter.Name(), "tables", len(g.graph.Nodes), "target", cfg.Target)
	for i, t := range g.graph.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.table(t)
		version := MigrationVersion(now, i+1)
		artifacts := []*Artifact{
			g.emitter.GenMigration(t, version),
			g.emitter.GenModel(t),
			g.emitter.GenService(t),
			g.emitter.GenController(t),
		}
		for _, a := range artifacts {
			if a == nil {
				continue
			}
			if err := g.writeFile(a); err != nil {
				return err
			}
			g.written = append(g.written, a)
			p.artifact(a)
			cfg.Logger.Debug("wrote artifact", "table", t.TableName(), "kind", a.Kind, "file", a.Path, "version", version)
		}
		p.done(t)
	}
	p.finish()
	return nil
}

// Written returns the artifacts written by the last Generate call.
func (g *Generator) Written() []*Artifact {
	return g.written
}
