package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

var (
	_ repository.Engine     = (*Engine)(nil)
	_ repository.Collection = (*Collection)(nil)
)

// Engine motor PostgreSQL: un esquema por tenant, una tabla JSONB por tipo.
type Engine struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewEngine construye el motor sobre el pool.
func NewEngine(pool *pgxpool.Pool, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{pool: pool, log: log.Named("postgres")}
}

// Provision ejecuta el DDL idempotente de la partición. Corre siempre en su propia transacción
// sobre el pool (nunca en la del llamador) y serializado por esquema con un advisory lock.
func (e *Engine) Provision(ctx context.Context, spec repository.PartitionSpec) (repository.Collection, error) {
	stmts, err := ddlStatements(spec)
	if err != nil {
		return nil, err
	}
	table := qualified(spec.Namespace, spec.Definition.Table)
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ddl: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", "ddl:"+spec.Namespace); err != nil {
		return nil, fmt.Errorf("lock ddl %s: %w", spec.Namespace, err)
	}
	// El DDL es transaccional: si la tabla existe, sus índices y FKs también.
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
		return nil, fmt.Errorf("ddl %s: %w", spec.Name, err)
	}
	if !exists {
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return nil, fmt.Errorf("ddl %s: %w", spec.Name, err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ddl: %w", err)
	}
	e.log.Debug().Str("partition", spec.Name).Bool("created", !exists).Msg("partición lista")

	return &Collection{
		engine: e,
		name:   spec.Name,
		table:  table,
		def:    spec.Definition,
	}, nil
}

// Collection partición respaldada por una tabla.
type Collection struct {
	engine *Engine
	name   string
	table  string
	def    schema.Definition
}

// Name nombre lógico de la partición.
func (c *Collection) Name() string { return c.name }

func (c *Collection) builder() *sqlBuilder { return &sqlBuilder{def: c.def} }

func (c *Collection) mapWriteErr(op string, err error) error {
	switch sqlState(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s %s: %w", op, c.name, domain.ErrDuplicate)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s %s: referencia inexistente: %w", op, c.name, err)
	}
	return fmt.Errorf("%s %s: %w", op, c.name, err)
}

// Insert inserta el documento.
func (c *Collection) Insert(ctx context.Context, id string, doc []byte) error {
	q := fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1::uuid, $2::jsonb)", c.table)
	if _, err := c.engine.querier(ctx).Exec(ctx, q, id, string(doc)); err != nil {
		return c.mapWriteErr("insert", err)
	}
	return nil
}

// FindOne primer documento por orden de inserción; (nil, nil) si no hay.
func (c *Collection) FindOne(ctx context.Context, f repository.Filter) ([]byte, error) {
	b := c.builder()
	where, err := b.where(f)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT doc FROM %s WHERE %s ORDER BY seq LIMIT 1", c.table, where)
	var doc []byte
	if err := c.engine.querier(ctx).QueryRow(ctx, q, b.args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find one %s: %w", c.name, err)
	}
	return doc, nil
}

// Find documentos ordenados y paginados.
func (c *Collection) Find(ctx context.Context, f repository.Filter, opts repository.FindOptions) ([][]byte, error) {
	b := c.builder()
	where, err := b.where(f)
	if err != nil {
		return nil, err
	}
	order, err := b.orderBy(opts)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT doc FROM %s WHERE %s ORDER BY %s", c.table, where, order)
	if opts.Limit > 0 {
		q += " LIMIT " + b.arg(opts.Limit)
	}
	if opts.Offset > 0 {
		q += " OFFSET " + b.arg(opts.Offset)
	}
	rows, err := c.engine.querier(ctx).Query(ctx, q, b.args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Count cantidad de documentos que cumplen f.
func (c *Collection) Count(ctx context.Context, f repository.Filter) (int64, error) {
	b := c.builder()
	where, err := b.where(f)
	if err != nil {
		return 0, err
	}
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", c.table, where)
	if err := c.engine.querier(ctx).QueryRow(ctx, q, b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return n, nil
}

// UpdateOne reemplaza el documento id si además cumple f.
func (c *Collection) UpdateOne(ctx context.Context, id string, f repository.Filter, doc []byte) (bool, error) {
	b := c.builder()
	where, err := b.where(f.And("id", repository.OpEq, id))
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf("UPDATE %s SET doc = %s::jsonb, updated_at = now() WHERE %s", c.table, b.arg(string(doc)), where)
	tag, err := c.engine.querier(ctx).Exec(ctx, q, b.args...)
	if err != nil {
		return false, c.mapWriteErr("update", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindOneAndDelete borra y devuelve en una sola sentencia el primer documento que cumple f.
// Con dos llamadas concurrentes, la segunda espera el lock de fila y luego no encuentra nada.
func (c *Collection) FindOneAndDelete(ctx context.Context, f repository.Filter) ([]byte, error) {
	b := c.builder()
	where, err := b.where(f)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`DELETE FROM %[1]s WHERE id = (
		SELECT id FROM %[1]s WHERE %[2]s ORDER BY seq LIMIT 1 FOR UPDATE
	) RETURNING doc`, c.table, where)
	var doc []byte
	if err := c.engine.querier(ctx).QueryRow(ctx, q, b.args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find and delete %s: %w", c.name, err)
	}
	return doc, nil
}

// Sum suma el campo numérico path.
func (c *Collection) Sum(ctx context.Context, f repository.Filter, path string) (decimal.Decimal, error) {
	if !validPath(path) {
		return decimal.Zero, fmt.Errorf("postgres: ruta inválida %q", path)
	}
	b := c.builder()
	where, err := b.where(f)
	if err != nil {
		return decimal.Zero, err
	}
	q := fmt.Sprintf("SELECT COALESCE(SUM((doc #>> %s)::numeric), 0) FROM %s WHERE %s", jsonPath(path), c.table, where)
	var total decimal.Decimal
	if err := c.engine.querier(ctx).QueryRow(ctx, q, b.args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", c.name, err)
	}
	return total, nil
}

// Lock toma advisory locks de transacción en orden para no provocar deadlocks.
func (c *Collection) Lock(ctx context.Context, keys ...string) error {
	tx := txFrom(ctx)
	if tx == nil {
		return domain.ErrLockOutsideTx
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, k := range sorted {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", k); err != nil {
			return fmt.Errorf("lock %s: %w", k, err)
		}
	}
	return nil
}
