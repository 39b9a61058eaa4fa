// Package memory implementa el motor de almacenamiento en proceso. Todas las operaciones se
// serializan con un único mutex: una transacción lo retiene de principio a fin, así que el
// aislamiento es serializable. Se usa con STORAGE_DRIVER=memory y en las pruebas.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.Engine = (*Engine)(nil)

// Engine motor en memoria.
type Engine struct {
	// mu serializa transacciones y operaciones sueltas.
	mu sync.Mutex

	regMu       sync.RWMutex
	collections map[string]*Collection
}

// NewEngine construye un motor vacío.
func NewEngine() *Engine {
	return &Engine{collections: make(map[string]*Collection)}
}

type txKey struct{}

type tx struct {
	engine *Engine
	undo   []func()
}

func (t *tx) record(fn func()) { t.undo = append(t.undo, fn) }

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (e *Engine) txFrom(ctx context.Context) *tx {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.engine != e {
		return nil
	}
	return t
}

// WithTx retiene el mutex del motor durante fn. Si fn falla (o entra en pánico) se deshacen
// sus escrituras en orden inverso.
func (e *Engine) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if e.txFrom(ctx) != nil {
		return fn(ctx)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := &tx{engine: e}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
		if err != nil {
			t.rollback()
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, t))
}

// run ejecuta op dentro de la transacción del ctx o, si no hay, tomando el mutex.
func (e *Engine) run(ctx context.Context, op func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t := e.txFrom(ctx); t != nil {
		return op(t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return op(nil)
}

// Provision registra la partición si no existe. Es idempotente por nombre.
func (e *Engine) Provision(_ context.Context, spec repository.PartitionSpec) (repository.Collection, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("memory: partición sin nombre")
	}
	e.regMu.Lock()
	defer e.regMu.Unlock()

	if c, ok := e.collections[spec.Name]; ok {
		if c.def.Kind != spec.Definition.Kind {
			return nil, fmt.Errorf("memory: la partición %s ya existe con otro tipo", spec.Name)
		}
		return c, nil
	}
	c := newCollection(e, spec)
	e.collections[spec.Name] = c
	return c, nil
}

func (e *Engine) lookup(name string) *Collection {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return e.collections[name]
}

// Partitions nombres de las particiones aprovisionadas, ordenados.
func (e *Engine) Partitions() []string {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	out := make([]string, 0, len(e.collections))
	for name := range e.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
