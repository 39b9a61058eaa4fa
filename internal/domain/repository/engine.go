package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

// PartitionSpec describe la partición a aprovisionar: nombre lógico, espacio físico y esquema.
type PartitionSpec struct {
	Name       string
	Namespace  string
	Definition schema.Definition
}

// Engine puerto del motor de almacenamiento (DIP). Las implementaciones viven en infrastructure.
type Engine interface {
	// Provision crea (si no existe) la partición con sus índices y devuelve un handle.
	// Debe ser idempotente: aprovisionar dos veces la misma partición no falla.
	Provision(ctx context.Context, spec PartitionSpec) (Collection, error)
	// WithTx ejecuta fn dentro de una transacción; todas las colecciones usadas con el ctx
	// recibido participan en ella. Si fn devuelve error no queda ningún efecto.
	// Un WithTx anidado reutiliza la transacción externa.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Collection puerto de una partición concreta. Los documentos viajan como JSON.
type Collection interface {
	Name() string
	// Insert devuelve ErrDuplicate si viola un índice único.
	Insert(ctx context.Context, id string, doc []byte) error
	// FindOne devuelve (nil, nil) cuando no hay coincidencia.
	FindOne(ctx context.Context, f Filter) ([]byte, error)
	Find(ctx context.Context, f Filter, opts FindOptions) ([][]byte, error)
	Count(ctx context.Context, f Filter) (int64, error)
	// UpdateOne reemplaza el documento id solo si además cumple f. Devuelve false si no aplicó.
	UpdateOne(ctx context.Context, id string, f Filter, doc []byte) (bool, error)
	// FindOneAndDelete borra atómicamente el primer documento que cumple f y lo devuelve.
	FindOneAndDelete(ctx context.Context, f Filter) ([]byte, error)
	// Sum suma el campo numérico path de los documentos que cumplen f.
	Sum(ctx context.Context, f Filter, path string) (decimal.Decimal, error)
	// Lock toma bloqueos exclusivos sobre las claves hasta el fin de la transacción del ctx.
	Lock(ctx context.Context, keys ...string) error
}
