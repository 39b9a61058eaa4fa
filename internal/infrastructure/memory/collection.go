package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

var _ repository.Collection = (*Collection)(nil)

type record struct {
	id  string
	seq int64
	raw []byte
	doc map[string]any
}

// Collection partición en memoria. Solo se accede con el mutex del motor tomado.
type Collection struct {
	engine *Engine
	name   string
	def    schema.Definition
	seq    int64
	docs   map[string]*record
}

func newCollection(e *Engine, spec repository.PartitionSpec) *Collection {
	return &Collection{engine: e, name: spec.Name, def: spec.Definition, docs: make(map[string]*record)}
}

// Name nombre de la partición.
func (c *Collection) Name() string { return c.name }

func decode(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("memory: documento inválido: %w", err)
	}
	return doc, nil
}

func clone(raw []byte) []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// Insert agrega el documento; respeta índices únicos y referencias.
func (c *Collection) Insert(ctx context.Context, id string, raw []byte) error {
	doc, err := decode(raw)
	if err != nil {
		return err
	}
	return c.engine.run(ctx, func(t *tx) error {
		if _, ok := c.docs[id]; ok {
			return fmt.Errorf("insert %s: %w", c.name, domain.ErrDuplicate)
		}
		if err := c.checkUnique(id, doc); err != nil {
			return err
		}
		if err := c.checkReferences(doc); err != nil {
			return err
		}
		c.seq++
		c.docs[id] = &record{id: id, seq: c.seq, raw: clone(raw), doc: doc}
		if t != nil {
			t.record(func() { delete(c.docs, id) })
		}
		return nil
	})
}

func (c *Collection) checkUnique(id string, doc map[string]any) error {
	for _, idx := range c.def.Indexes {
		if !idx.Unique {
			continue
		}
		key, ok := indexKey(doc, idx.Paths)
		if !ok {
			continue
		}
		for otherID, r := range c.docs {
			if otherID == id {
				continue
			}
			if other, ok := indexKey(r.doc, idx.Paths); ok && other == key {
				return fmt.Errorf("%s (%s): %w", c.name, idx.Name, domain.ErrDuplicate)
			}
		}
	}
	return nil
}

func indexKey(doc map[string]any, paths []string) (string, bool) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		v, ok := lookup(doc, p)
		if !ok || v == nil {
			return "", false
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "\x00"), true
}

func (c *Collection) checkReferences(doc map[string]any) error {
	for _, ref := range c.def.References {
		v, ok := lookup(doc, ref.Path)
		if !ok || v == nil || v == "" {
			continue
		}
		id, _ := v.(string)
		target := c.engine.lookup(ref.Partition)
		if target == nil {
			return fmt.Errorf("memory: %s.%s apunta a la partición no aprovisionada %s", c.name, ref.Path, ref.Partition)
		}
		if _, exists := target.docs[id]; !exists {
			return fmt.Errorf("memory: %s.%s referencia inexistente %s", c.name, ref.Path, id)
		}
	}
	return nil
}

// FindOne primer documento (por orden de inserción) que cumple f, o nil.
func (c *Collection) FindOne(ctx context.Context, f repository.Filter) ([]byte, error) {
	var out []byte
	err := c.engine.run(ctx, func(*tx) error {
		if r := c.first(f); r != nil {
			out = clone(r.raw)
		}
		return nil
	})
	return out, err
}

func (c *Collection) first(f repository.Filter) *record {
	var best *record
	for _, r := range c.docs {
		if matches(r.id, r.doc, f) && (best == nil || r.seq < best.seq) {
			best = r
		}
	}
	return best
}

// Find documentos que cumplen f, ordenados y paginados.
func (c *Collection) Find(ctx context.Context, f repository.Filter, opts repository.FindOptions) ([][]byte, error) {
	var out [][]byte
	err := c.engine.run(ctx, func(*tx) error {
		sel := make([]*record, 0)
		for _, r := range c.docs {
			if matches(r.id, r.doc, f) {
				sel = append(sel, r)
			}
		}
		if err := c.sort(sel, opts); err != nil {
			return err
		}
		if opts.Offset > 0 {
			if opts.Offset >= len(sel) {
				sel = nil
			} else {
				sel = sel[opts.Offset:]
			}
		}
		if opts.Limit > 0 && len(sel) > opts.Limit {
			sel = sel[:opts.Limit]
		}
		out = make([][]byte, 0, len(sel))
		for _, r := range sel {
			out = append(out, clone(r.raw))
		}
		return nil
	})
	return out, err
}

func (c *Collection) sort(sel []*record, opts repository.FindOptions) error {
	if opts.SortPath == "" {
		sort.Slice(sel, func(i, j int) bool {
			if opts.Desc {
				return sel[i].seq > sel[j].seq
			}
			return sel[i].seq < sel[j].seq
		})
		return nil
	}
	ft, ok := c.def.Sortable[opts.SortPath]
	if !ok {
		return fmt.Errorf("memory: %s no admite ordenar por %q", c.name, opts.SortPath)
	}
	sort.SliceStable(sel, func(i, j int) bool {
		cmp := compareField(ft, sel[i].doc, sel[j].doc, opts.SortPath)
		if cmp == 0 {
			return sel[i].seq < sel[j].seq
		}
		if opts.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return nil
}

// Count cantidad de documentos que cumplen f.
func (c *Collection) Count(ctx context.Context, f repository.Filter) (int64, error) {
	var n int64
	err := c.engine.run(ctx, func(*tx) error {
		for _, r := range c.docs {
			if matches(r.id, r.doc, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// UpdateOne reemplaza el documento id si existe y cumple f.
func (c *Collection) UpdateOne(ctx context.Context, id string, f repository.Filter, raw []byte) (bool, error) {
	doc, err := decode(raw)
	if err != nil {
		return false, err
	}
	var applied bool
	err = c.engine.run(ctx, func(t *tx) error {
		prev, ok := c.docs[id]
		if !ok || !matches(prev.id, prev.doc, f) {
			return nil
		}
		if err := c.checkUnique(id, doc); err != nil {
			return err
		}
		if err := c.checkReferences(doc); err != nil {
			return err
		}
		c.docs[id] = &record{id: id, seq: prev.seq, raw: clone(raw), doc: doc}
		if t != nil {
			t.record(func() { c.docs[id] = prev })
		}
		applied = true
		return nil
	})
	return applied, err
}

// FindOneAndDelete borra y devuelve el primer documento que cumple f.
func (c *Collection) FindOneAndDelete(ctx context.Context, f repository.Filter) ([]byte, error) {
	var out []byte
	err := c.engine.run(ctx, func(t *tx) error {
		r := c.first(f)
		if r == nil {
			return nil
		}
		delete(c.docs, r.id)
		if t != nil {
			t.record(func() { c.docs[r.id] = r })
		}
		out = clone(r.raw)
		return nil
	})
	return out, err
}

// Sum suma el campo numérico path de los documentos que cumplen f; ignora valores no numéricos.
func (c *Collection) Sum(ctx context.Context, f repository.Filter, path string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := c.engine.run(ctx, func(*tx) error {
		for _, r := range c.docs {
			if !matches(r.id, r.doc, f) {
				continue
			}
			v, ok := lookup(r.doc, path)
			if !ok {
				continue
			}
			if d, ok := asDecimal(v); ok {
				total = total.Add(d)
			}
		}
		return nil
	})
	return total, err
}

// Lock no hace nada más que exigir una transacción: el motor ya la serializa completa.
func (c *Collection) Lock(ctx context.Context, keys ...string) error {
	if c.engine.txFrom(ctx) == nil {
		return domain.ErrLockOutsideTx
	}
	return nil
}
