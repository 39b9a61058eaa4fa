package repository

import "time"

// Op operador de comparación sobre una ruta del documento.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGte
	OpLt
	// OpContains búsqueda de subcadena sin distinguir mayúsculas.
	OpContains
)

// Cond condición sobre una ruta con puntos ("phone.number"). Value admite string, bool,
// números, time.Time, []string (para OpIn) y nil (campo ausente o nulo).
type Cond struct {
	Path  string
	Op    Op
	Value any
}

// Filter conjunción de All y, si Any no está vacío, al menos una de Any.
type Filter struct {
	All []Cond
	Any []Cond
}

// FindOptions orden y paginación. SortPath vacío ordena por inserción.
type FindOptions struct {
	SortPath string
	Desc     bool
	Limit    int
	Offset   int
}

// Eq filtro de igualdad simple.
func Eq(path string, value any) Filter {
	return Filter{All: []Cond{{Path: path, Op: OpEq, Value: value}}}
}

// Where filtro con una condición arbitraria.
func Where(path string, op Op, value any) Filter {
	return Filter{All: []Cond{{Path: path, Op: op, Value: value}}}
}

// ByID filtro por identificador.
func ByID(id string) Filter { return Eq("id", id) }

// And agrega una condición obligatoria.
func (f Filter) And(path string, op Op, value any) Filter {
	all := make([]Cond, 0, len(f.All)+1)
	all = append(all, f.All...)
	f.All = append(all, Cond{Path: path, Op: op, Value: value})
	return f
}

// OrAny agrega una alternativa al grupo Any.
func (f Filter) OrAny(path string, op Op, value any) Filter {
	anyc := make([]Cond, 0, len(f.Any)+1)
	anyc = append(anyc, f.Any...)
	f.Any = append(anyc, Cond{Path: path, Op: op, Value: value})
	return f
}

// Merge combina dos filtros: une sus condiciones obligatorias y sus alternativas.
func (f Filter) Merge(o Filter) Filter {
	out := Filter{}
	out.All = append(append(out.All, f.All...), o.All...)
	out.Any = append(append(out.Any, f.Any...), o.Any...)
	return out
}

// Range filtro de rango semiabierto [from, to) sobre una ruta temporal.
func Range(path string, from, to time.Time) Filter {
	return Filter{All: []Cond{
		{Path: path, Op: OpGte, Value: from},
		{Path: path, Op: OpLt, Value: to},
	}}
}
