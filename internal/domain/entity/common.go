package entity

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Phone teléfono con extensión opcional (+57) y número solo dígitos.
type Phone struct {
	Extension string `json:"extension,omitempty" validate:"omitempty,max=5,phoneext"`
	Number    string `json:"number,omitempty" validate:"omitempty,min=8,max=15,digits"`
}

// SoftDelete marcador de borrado lógico {isDeleted, at, by}.
// La transición isDeleted es solo false -> true.
type SoftDelete struct {
	IsDeleted bool       `json:"isDeleted"`
	At        *time.Time `json:"at,omitempty"`
	By        string     `json:"by,omitempty"`
}

// Deletable se embebe en las entidades que declaran borrado lógico.
type Deletable struct {
	Deleted SoftDelete `json:"deleted"`
}

// MarkDeleted marca el registro como eliminado. Devuelve false si ya lo estaba.
func (d *Deletable) MarkDeleted(at time.Time, by string) bool {
	if d.Deleted.IsDeleted {
		return false
	}
	d.Deleted = SoftDelete{IsDeleted: true, At: &at, By: by}
	return true
}

// IsDeleted informa si el registro tiene el marcador activo.
func (d *Deletable) IsDeleted() bool { return d.Deleted.IsDeleted }

var keyFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NaturalKey normaliza un texto para detección de duplicados: ignora mayúsculas,
// diacríticos y espacios repetidos ("  Acmé  S.A." == "acme s.a.").
func NaturalKey(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	out, _, err := transform.String(keyFolder, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// NormalizeEmail minúsculas y sin espacios.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
