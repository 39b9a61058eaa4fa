package memory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func matches(id string, doc map[string]any, f repository.Filter) bool {
	for _, c := range f.All {
		if !matchCond(id, doc, c) {
			return false
		}
	}
	if len(f.Any) == 0 {
		return true
	}
	for _, c := range f.Any {
		if matchCond(id, doc, c) {
			return true
		}
	}
	return false
}

func matchCond(id string, doc map[string]any, c repository.Cond) bool {
	var v any
	var ok bool
	switch c.Path {
	case "id":
		v, ok = id, true
	case schema.DeletedPath:
		// Un documento sin marca se considera vivo.
		v, ok = lookup(doc, c.Path)
		if !ok || v == nil {
			v, ok = false, true
		}
	default:
		v, ok = lookup(doc, c.Path)
	}

	if c.Value == nil {
		return !ok || v == nil
	}
	if !ok || v == nil {
		return false
	}

	switch c.Op {
	case repository.OpEq:
		cmp, ok := compare(v, c.Value)
		return ok && cmp == 0
	case repository.OpIn:
		s, isStr := v.(string)
		if !isStr {
			return false
		}
		vals, _ := c.Value.([]string)
		for _, want := range vals {
			if s == want {
				return true
			}
		}
		return false
	case repository.OpGte:
		cmp, ok := compare(v, c.Value)
		return ok && cmp >= 0
	case repository.OpLt:
		cmp, ok := compare(v, c.Value)
		return ok && cmp < 0
	case repository.OpContains:
		s, isStr := v.(string)
		needle, _ := c.Value.(string)
		return isStr && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	}
	return false
}

// compare ordena el valor del documento contra el valor del filtro según el tipo de este último.
func compare(docVal, want any) (int, bool) {
	switch w := want.(type) {
	case string:
		s, ok := docVal.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(s, w), true
	case bool:
		b, ok := docVal.(bool)
		if !ok {
			return 0, false
		}
		if b == w {
			return 0, true
		}
		if !b {
			return -1, true
		}
		return 1, true
	case time.Time:
		t, ok := asTime(docVal)
		if !ok {
			return 0, false
		}
		return t.Compare(w), true
	}
	wd, ok := asDecimal(want)
	if !ok {
		return 0, false
	}
	dd, ok := asDecimal(docVal)
	if !ok {
		return 0, false
	}
	return dd.Cmp(wd), true
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	}
	return decimal.Decimal{}, false
}

// compareField compara dos documentos por path; los valores ausentes van primero.
func compareField(ft schema.FieldType, a, b map[string]any, path string) int {
	va, okA := lookup(a, path)
	vb, okB := lookup(b, path)
	okA = okA && va != nil
	okB = okB && vb != nil
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	switch ft {
	case schema.Number:
		da, _ := asDecimal(va)
		db, _ := asDecimal(vb)
		return da.Cmp(db)
	case schema.Time:
		ta, _ := asTime(va)
		tb, _ := asTime(vb)
		return ta.Compare(tb)
	}
	sa, _ := va.(string)
	sb, _ := vb.(string)
	return strings.Compare(sa, sb)
}
