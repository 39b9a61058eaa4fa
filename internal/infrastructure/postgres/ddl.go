package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

func qualified(namespace, table string) string {
	return pgx.Identifier{namespace, table}.Sanitize()
}

// jsonPath literal de ruta para #>>; la ruta ya pasó validPath.
func jsonPath(path string) string {
	return "'{" + strings.ReplaceAll(path, ".", ",") + "}'"
}

func refColumn(path string) string {
	return pgx.Identifier{strings.ReplaceAll(path, ".", "_") + "_ref"}.Sanitize()
}

// ddlStatements sentencias idempotentes que crean el esquema, la tabla y sus índices.
func ddlStatements(spec repository.PartitionSpec) ([]string, error) {
	def := spec.Definition
	if def.Table == "" {
		return nil, fmt.Errorf("postgres: %s sin tabla", spec.Name)
	}
	table := qualified(spec.Namespace, def.Table)

	cols := []string{
		"id uuid PRIMARY KEY",
		"seq bigint GENERATED ALWAYS AS IDENTITY",
		"doc jsonb NOT NULL",
	}
	if def.SoftDelete {
		cols = append(cols, "is_deleted boolean GENERATED ALWAYS AS (COALESCE((doc #>> '{deleted,isDeleted}')::boolean, false)) STORED")
	}
	for _, ref := range def.References {
		if !validPath(ref.Path) {
			return nil, fmt.Errorf("postgres: ruta de referencia inválida %q", ref.Path)
		}
		target := qualified(spec.Namespace, schema.Table(ref.Kind))
		cols = append(cols, fmt.Sprintf(
			"%s uuid GENERATED ALWAYS AS (NULLIF(doc #>> %s, '')::uuid) STORED REFERENCES %s (id)",
			refColumn(ref.Path), jsonPath(ref.Path), target,
		))
	}
	cols = append(cols,
		"created_at timestamptz NOT NULL DEFAULT now()",
		"updated_at timestamptz NOT NULL DEFAULT now()",
	)

	stmts := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{spec.Namespace}.Sanitize()),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t")),
	}

	for _, idx := range def.Indexes {
		exprs := make([]string, 0, len(idx.Paths)+1)
		for _, p := range idx.Paths {
			if !validPath(p) {
				return nil, fmt.Errorf("postgres: ruta de índice inválida %q", p)
			}
			exprs = append(exprs, fmt.Sprintf("(doc #>> %s)", jsonPath(p)))
		}
		if idx.WithDeleted && def.SoftDelete {
			exprs = append(exprs, "is_deleted")
		}
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
			unique, pgx.Identifier{idx.Name}.Sanitize(), table, strings.Join(exprs, ", ")))
	}
	return stmts, nil
}
