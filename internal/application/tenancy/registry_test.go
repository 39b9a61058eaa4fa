package tenancy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
)

// countingEngine cuenta cuántas veces se aprovisiona cada partición.
type countingEngine struct {
	*memory.Engine
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
}

func newCountingEngine() *countingEngine {
	return &countingEngine{Engine: memory.NewEngine(), calls: map[string]int{}, delay: 5 * time.Millisecond}
}

func (e *countingEngine) Provision(ctx context.Context, spec repository.PartitionSpec) (repository.Collection, error) {
	e.mu.Lock()
	e.calls[spec.Name]++
	e.mu.Unlock()
	time.Sleep(e.delay)
	return e.Engine.Provision(ctx, spec)
}

func newCompany(name string) *entity.CompanyLead {
	now := time.Now().UTC()
	return &entity.CompanyLead{
		ID:        uuid.NewString(),
		Name:      name,
		NameKey:   entity.NaturalKey(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro idempotente
// ──────────────────────────────────────────────────────────────────────────────

func TestGetPartition_ConcurrenteConvergeEnUnHandle(t *testing.T) {
	engine := newCountingEngine()
	reg := NewRegistry(engine, nil)
	ctx := context.Background()

	const workers = 32
	handles := make([]*Handle, workers)
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := reg.GetPartition(ctx, "acme-com", schema.KindLead)
			if err != nil {
				failures.Add(1)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	for _, h := range handles {
		assert.Same(t, handles[0], h, "todos los accesos deben compartir el handle")
	}
	assert.Equal(t, 1, engine.calls["acme-com_leads"], "la partición se aprovisiona una sola vez")
}

func TestGetPartition_EscriturasMutuamenteVisibles(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	ctx := context.Background()

	a, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)
	b, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)

	c := newCompany("Acme")
	require.NoError(t, a.Insert(ctx, c.ID, c))

	got, err := b.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)
}

func TestGetPartition_AprovisionaReferenciasPrimero(t *testing.T) {
	engine := memory.NewEngine()
	reg := NewRegistry(engine, nil)

	_, err := reg.GetPartition(context.Background(), "acme-com", schema.KindPipeline)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"acme-com_users",
		"acme-com_companyLeads",
		"acme-com_contactLeads",
		"acme-com_leads",
		"acme-com_pipelines",
	}, engine.Partitions())
}

func TestGetPartition_TenantInvalido(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)

	for _, tenant := range []string{"", "Acme", "acme;drop", "a b"} {
		_, err := reg.GetPartition(context.Background(), tenant, schema.KindUser)
		assert.True(t, errors.Is(err, domain.ErrInvalidTenant), "tenant %q", tenant)
	}
}

func TestGetPartition_GlobalesIgnoranTenant(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)

	orgs, err := reg.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "platform_organizations", orgs.Name())
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre tenants
// ──────────────────────────────────────────────────────────────────────────────

func TestPartition_AisladaPorTenant(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	ctx := context.Background()

	acme, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)
	other, err := reg.CompanyLeads(ctx, "other-com")
	require.NoError(t, err)

	c := newCompany("Acme")
	require.NoError(t, acme.Insert(ctx, c.ID, c))

	got, err := other.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "un tenant nunca ve registros de otro")

	n, err := other.Count(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado lógico
// ──────────────────────────────────────────────────────────────────────────────

func TestSoftDelete_OcultaEnLecturasYEsIrreversible(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	ctx := context.Background()
	companies, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)

	c := newCompany("Acme")
	require.NoError(t, companies.Insert(ctx, c.ID, c))
	actor := uuid.NewString()

	require.NoError(t, companies.SoftDelete(ctx, c.ID, actor))

	got, err := companies.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := companies.Find(ctx, repository.Filter{}, repository.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)

	withDeleted, err := companies.FindOneWithDeleted(ctx, repository.ByID(c.ID))
	require.NoError(t, err)
	require.NotNil(t, withDeleted)
	assert.True(t, withDeleted.Deleted.IsDeleted)
	assert.Equal(t, actor, withDeleted.Deleted.By)
	require.NotNil(t, withDeleted.Deleted.At)

	err = companies.SoftDelete(ctx, c.ID, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound, "eliminar dos veces no revierte ni repite la marca")

	c.Name = "Acme Revivida"
	applied, err := companies.Replace(ctx, c.ID, c)
	require.NoError(t, err)
	assert.False(t, applied, "un registro eliminado no se puede sobrescribir")
}

func TestSoftDelete_TipoSinMarca(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	users, err := reg.Users(context.Background(), "acme-com")
	require.NoError(t, err)

	assert.Error(t, users.SoftDelete(context.Background(), uuid.NewString(), "x"))
}

func TestInsert_ValidaElRegistro(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	ctx := context.Background()
	companies, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)

	c := newCompany("A")
	err = companies.Insert(ctx, c.ID, c)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.TypeValidation, de.Type)
}

func TestLock_PrefijaConLaParticion(t *testing.T) {
	reg := NewRegistry(memory.NewEngine(), nil)
	ctx := context.Background()
	companies, err := reg.CompanyLeads(ctx, "acme-com")
	require.NoError(t, err)

	assert.ErrorIs(t, companies.Lock(ctx, "acme"), domain.ErrLockOutsideTx)
	assert.NoError(t, reg.WithTx(ctx, func(ctx context.Context) error {
		return companies.Lock(ctx, "acme")
	}))
}
