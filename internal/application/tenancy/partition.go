package tenancy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

type softDeletable interface {
	MarkDeleted(at time.Time, by string) bool
}

// Partition vista tipada sobre un handle. En tipos con borrado lógico, toda lectura
// excluye los registros eliminados salvo en los métodos *WithDeleted.
type Partition[T any] struct {
	h *Handle
}

// Name nombre de la partición subyacente.
func (p *Partition[T]) Name() string { return p.h.Name }

// Handle handle compartido; dos vistas del mismo (tenant, tipo) devuelven el mismo puntero.
func (p *Partition[T]) Handle() *Handle { return p.h }

func (p *Partition[T]) scope(f repository.Filter, includeDeleted bool) repository.Filter {
	if !p.h.Definition.SoftDelete || includeDeleted {
		return f
	}
	return f.And(schema.DeletedPath, repository.OpEq, false)
}

func (p *Partition[T]) decode(raw []byte) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", p.h.Name, err)
	}
	return &rec, nil
}

func (p *Partition[T]) decodeAll(raws [][]byte) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		rec, err := p.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Partition[T]) encode(rec *T) ([]byte, error) {
	if err := validator.Struct(rec); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("codificar %s: %w", p.h.Name, err)
	}
	return raw, nil
}

// FindOne primer registro vivo que cumple f; (nil, nil) si no hay.
func (p *Partition[T]) FindOne(ctx context.Context, f repository.Filter) (*T, error) {
	raw, err := p.h.Collection.FindOne(ctx, p.scope(f, false))
	if err != nil {
		return nil, err
	}
	return p.decode(raw)
}

// FindOneWithDeleted como FindOne pero incluye registros eliminados.
func (p *Partition[T]) FindOneWithDeleted(ctx context.Context, f repository.Filter) (*T, error) {
	raw, err := p.h.Collection.FindOne(ctx, p.scope(f, true))
	if err != nil {
		return nil, err
	}
	return p.decode(raw)
}

// FindByID atajo para FindOne por identificador.
func (p *Partition[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return p.FindOne(ctx, repository.ByID(id))
}

func (p *Partition[T]) Find(ctx context.Context, f repository.Filter, opts repository.FindOptions) ([]*T, error) {
	raws, err := p.h.Collection.Find(ctx, p.scope(f, false), opts)
	if err != nil {
		return nil, err
	}
	return p.decodeAll(raws)
}

func (p *Partition[T]) FindWithDeleted(ctx context.Context, f repository.Filter, opts repository.FindOptions) ([]*T, error) {
	raws, err := p.h.Collection.Find(ctx, p.scope(f, true), opts)
	if err != nil {
		return nil, err
	}
	return p.decodeAll(raws)
}

func (p *Partition[T]) Count(ctx context.Context, f repository.Filter) (int64, error) {
	return p.h.Collection.Count(ctx, p.scope(f, false))
}

// Insert valida el registro y lo persiste.
func (p *Partition[T]) Insert(ctx context.Context, id string, rec *T) error {
	raw, err := p.encode(rec)
	if err != nil {
		return err
	}
	return p.h.Collection.Insert(ctx, id, raw)
}

// Replace sobrescribe un registro vivo. Devuelve false si no existe o ya fue eliminado.
func (p *Partition[T]) Replace(ctx context.Context, id string, rec *T) (bool, error) {
	raw, err := p.encode(rec)
	if err != nil {
		return false, err
	}
	return p.h.Collection.UpdateOne(ctx, id, p.scope(repository.Filter{}, false), raw)
}

// SoftDelete marca el registro como eliminado por actor. La marca nunca se revierte:
// eliminar algo ya eliminado devuelve ErrNotFound.
func (p *Partition[T]) SoftDelete(ctx context.Context, id, actor string) error {
	if !p.h.Definition.SoftDelete {
		return fmt.Errorf("%s no admite borrado lógico", p.h.Name)
	}
	rec, err := p.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	d, ok := any(rec).(softDeletable)
	if !ok {
		return fmt.Errorf("%s: el registro no tiene marca de borrado", p.h.Name)
	}
	if !d.MarkDeleted(time.Now().UTC(), actor) {
		return domain.ErrNotFound
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("codificar %s: %w", p.h.Name, err)
	}
	applied, err := p.h.Collection.UpdateOne(ctx, id, p.scope(repository.Filter{}, false), raw)
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrNotFound
	}
	return nil
}

// FindOneAndDelete elimina físicamente y devuelve el primer registro que cumple f.
func (p *Partition[T]) FindOneAndDelete(ctx context.Context, f repository.Filter) (*T, error) {
	raw, err := p.h.Collection.FindOneAndDelete(ctx, p.scope(f, false))
	if err != nil {
		return nil, err
	}
	return p.decode(raw)
}

// Sum suma path sobre los registros vivos que cumplen f.
func (p *Partition[T]) Sum(ctx context.Context, f repository.Filter, path string) (decimal.Decimal, error) {
	return p.h.Collection.Sum(ctx, p.scope(f, false), path)
}

// Lock bloquea claves lógicas hasta el fin de la transacción del ctx.
func (p *Partition[T]) Lock(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = p.h.Name + ":" + k
	}
	return p.h.Collection.Lock(ctx, scoped...)
}
