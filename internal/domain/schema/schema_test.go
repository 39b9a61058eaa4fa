package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

func TestFor_ReferenciasApuntanAlMismoTenant(t *testing.T) {
	def, err := schema.For(schema.KindLead, "acme-com")
	require.NoError(t, err)

	require.NotEmpty(t, def.References)
	for _, ref := range def.References {
		assert.Equal(t, schema.PartitionName("acme-com", ref.Kind), ref.Partition)
	}
	assert.True(t, def.SoftDelete)
}

func TestFor_TodosLosTiposDeTenantTienenDefinicion(t *testing.T) {
	for _, kind := range schema.TenantKinds() {
		def, err := schema.For(kind, "acme-com")
		require.NoError(t, err, kind)
		assert.Equal(t, kind, def.Kind)
		assert.False(t, def.Global)
		assert.Contains(t, def.Sortable, "createdAt")
	}
}

func TestFor_TipoDesconocido(t *testing.T) {
	_, err := schema.For(schema.Kind("nope"), "acme-com")
	assert.Error(t, err)
}

func TestValidTenantID(t *testing.T) {
	assert.True(t, schema.ValidTenantID("acme-com"))
	assert.True(t, schema.ValidTenantID("a1"))
	assert.False(t, schema.ValidTenantID(""))
	assert.False(t, schema.ValidTenantID("_platform"))
	assert.False(t, schema.ValidTenantID("Acme"))
	assert.False(t, schema.ValidTenantID("acme;drop"))
}

func TestPartitionName_Determinista(t *testing.T) {
	assert.Equal(t, "acme-com_companyLeads", schema.PartitionName("acme-com", schema.KindCompanyLead))
	assert.Equal(t, schema.PartitionName("x", schema.KindLead), schema.PartitionName("x", schema.KindLead))
}
