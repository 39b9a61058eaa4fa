package postgres

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

var pathPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

func validPath(p string) bool { return pathPattern.MatchString(p) }

// sqlBuilder traduce filtros a SQL. Las rutas se incrustan como literales (ya validadas)
// para que coincidan con las expresiones de los índices; los valores van como parámetros.
type sqlBuilder struct {
	def  schema.Definition
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) where(f repository.Filter) (string, error) {
	parts := make([]string, 0, len(f.All)+1)
	for _, c := range f.All {
		s, err := b.cond(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(f.Any) > 0 {
		alts := make([]string, 0, len(f.Any))
		for _, c := range f.Any {
			s, err := b.cond(c)
			if err != nil {
				return "", err
			}
			alts = append(alts, s)
		}
		parts = append(parts, "("+strings.Join(alts, " OR ")+")")
	}
	if len(parts) == 0 {
		return "TRUE", nil
	}
	return strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) cond(c repository.Cond) (string, error) {
	if !validPath(c.Path) {
		return "", fmt.Errorf("postgres: ruta inválida %q", c.Path)
	}
	if c.Path == "id" {
		return b.idCond(c)
	}
	if c.Path == schema.DeletedPath && b.def.SoftDelete {
		v, ok := c.Value.(bool)
		if !ok || c.Op != repository.OpEq {
			return "", fmt.Errorf("postgres: %s solo admite igualdad booleana", c.Path)
		}
		return "is_deleted = " + b.arg(v), nil
	}

	expr := "(doc #>> " + jsonPath(c.Path) + ")"
	if c.Value == nil {
		return expr + " IS NULL", nil
	}

	switch c.Op {
	case repository.OpIn:
		vals, ok := c.Value.([]string)
		if !ok {
			return "", fmt.Errorf("postgres: In sobre %s requiere []string", c.Path)
		}
		return expr + " = ANY(" + b.arg(vals) + "::text[])", nil
	case repository.OpContains:
		s, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("postgres: Contains sobre %s requiere string", c.Path)
		}
		return expr + " ILIKE " + b.arg("%"+escapeLike(s)+"%"), nil
	}

	var op string
	switch c.Op {
	case repository.OpEq:
		op = "="
	case repository.OpGte:
		op = ">="
	case repository.OpLt:
		op = "<"
	default:
		return "", fmt.Errorf("postgres: operador desconocido %d", c.Op)
	}

	switch v := c.Value.(type) {
	case string:
		return expr + " " + op + " " + b.arg(v), nil
	case bool:
		return expr + "::boolean " + op + " " + b.arg(v), nil
	case time.Time:
		return expr + "::timestamptz " + op + " " + b.arg(v), nil
	}
	d, ok := toDecimal(c.Value)
	if !ok {
		return "", fmt.Errorf("postgres: valor no soportado %T en %s", c.Value, c.Path)
	}
	return expr + "::numeric " + op + " " + b.arg(d), nil
}

func (b *sqlBuilder) idCond(c repository.Cond) (string, error) {
	switch c.Op {
	case repository.OpEq:
		s, _ := c.Value.(string)
		id, err := uuid.Parse(s)
		if err != nil {
			return "FALSE", nil
		}
		return "id = " + b.arg(id.String()) + "::uuid", nil
	case repository.OpIn:
		vals, _ := c.Value.([]string)
		ids := make([]string, 0, len(vals))
		for _, s := range vals {
			if id, err := uuid.Parse(s); err == nil {
				ids = append(ids, id.String())
			}
		}
		if len(ids) == 0 {
			return "FALSE", nil
		}
		return "id = ANY(" + b.arg(ids) + "::uuid[])", nil
	}
	return "", fmt.Errorf("postgres: id solo admite Eq o In")
}

// orderBy expresión de orden; los valores ausentes van primero en ascendente.
func (b *sqlBuilder) orderBy(opts repository.FindOptions) (string, error) {
	dir := "ASC NULLS FIRST"
	seqDir := "ASC"
	if opts.Desc {
		dir = "DESC NULLS LAST"
		seqDir = "DESC"
	}
	if opts.SortPath == "" {
		return "seq " + seqDir, nil
	}
	ft, ok := b.def.Sortable[opts.SortPath]
	if !ok || !validPath(opts.SortPath) {
		return "", fmt.Errorf("postgres: no se puede ordenar por %q", opts.SortPath)
	}
	expr := "(doc #>> " + jsonPath(opts.SortPath) + ")"
	switch ft {
	case schema.Number:
		expr += "::numeric"
	case schema.Time:
		expr += "::timestamptz"
	}
	return expr + " " + dir + ", seq ASC", nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	}
	return decimal.Decimal{}, false
}
