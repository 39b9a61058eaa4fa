package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phone struct {
	Extension string `json:"extension" validate:"omitempty,phoneext"`
	Number    string `json:"number" validate:"omitempty,min=8,max=15,digits"`
}

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone phone  `json:"phone"`
}

func TestStruct_Valido(t *testing.T) {
	err := Struct(sample{Name: "Acme", Email: "a@acme.com", Phone: phone{Extension: "+57", Number: "3001234567"}})
	assert.NoError(t, err)
}

func TestStruct_MensajeUsaNombreJSON(t *testing.T) {
	err := Struct(sample{Name: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestStruct_TagsPropios(t *testing.T) {
	err := Struct(sample{Name: "Acme", Phone: phone{Extension: "57"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone.extension")

	err = Struct(sample{Name: "Acme", Phone: phone{Number: "300-123-4567"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone.number")
}
