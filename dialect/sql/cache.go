package sql

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/dbmlgen"
)

// WithCache makes Find read rows through c. Rows are stored for ttl and
// evicted by Update and Delete. Cache failures are logged and fall back
// to the database.
//
//	posts := models.NewPost(drv)
//	posts.WithCache(dbmlgen.NewMemoryCache(), time.Minute)
func (t *Table) WithCache(c dbmlgen.Cache, ttl time.Duration) *Table {
	t.cache, t.ttl = c, ttl
	return t
}

func (t *Table) cacheKey(id any) string {
	return dbmlgen.CacheKey{Table: t.name, ID: id}.String()
}

// cached returns the stored row of id, if any.
func (t *Table) cached(ctx context.Context, id any) (Record, bool) {
	if t.cache == nil {
		return nil, false
	}
	b, err := t.cache.Get(ctx, t.cacheKey(id))
	if err != nil {
		slog.WarnContext(ctx, "cache get failed", "table", t.name, "id", id, "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	rec, err := decodeRecord(b)
	if err != nil {
		slog.WarnContext(ctx, "cache decode failed", "table", t.name, "id", id, "error", err)
		return nil, false
	}
	return rec, true
}

func (t *Table) store(ctx context.Context, id any, rec Record) {
	if t.cache == nil {
		return
	}
	b, err := msgpack.Marshal(rec)
	if err == nil {
		err = t.cache.Set(ctx, t.cacheKey(id), b, t.ttl)
	}
	if err != nil {
		slog.WarnContext(ctx, "cache set failed", "table", t.name, "id", id, "error", err)
	}
}

func (t *Table) evict(ctx context.Context, id any) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Delete(ctx, t.cacheKey(id)); err != nil {
		slog.WarnContext(ctx, "cache delete failed", "table", t.name, "id", id, "error", err)
	}
}

// decodeRecord restores integers as int64 and floats as float64, the types
// database/sql scans them into.
func decodeRecord(b []byte) (Record, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}
