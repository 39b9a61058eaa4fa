package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func provision(t *testing.T, e *Engine, tenant string, kind schema.Kind) repository.Collection {
	t.Helper()
	def, err := schema.For(kind, tenant)
	require.NoError(t, err)
	c, err := e.Provision(context.Background(), repository.PartitionSpec{
		Name:       schema.PartitionName(tenant, kind),
		Namespace:  schema.Namespace(tenant),
		Definition: def,
	})
	require.NoError(t, err)
	return c
}

func insert(t *testing.T, ctx context.Context, c repository.Collection, doc map[string]any) string {
	t.Helper()
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, c.Insert(ctx, id, raw))
	return id
}

func decodeDoc(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprovisionamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestProvision_Idempotente(t *testing.T) {
	e := NewEngine()
	a := provision(t, e, "acme-com", schema.KindUser)
	b := provision(t, e, "acme-com", schema.KindUser)

	assert.Same(t, a, b)
	assert.Equal(t, []string{"acme-com_users"}, e.Partitions())
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtros y orden
// ──────────────────────────────────────────────────────────────────────────────

func TestFind_FiltrosOrdenYPaginacion(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	provision(t, e, "acme-com", schema.KindUser)
	c := provision(t, e, "acme-com", schema.KindCompanyLead)

	insert(t, ctx, c, map[string]any{"name": "Beta", "nameKey": "beta", "phone": map[string]any{"number": "30000001"}})
	insert(t, ctx, c, map[string]any{"name": "Alfa", "nameKey": "alfa", "phone": map[string]any{"number": "30000002"}})
	insert(t, ctx, c, map[string]any{"name": "Gama", "nameKey": "gama", "deleted": map[string]any{"isDeleted": true}})

	live := repository.Eq(schema.DeletedPath, false)
	n, err := c.Count(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "sin marca de borrado cuenta como vivo")

	docs, err := c.Find(ctx, live, repository.FindOptions{SortPath: "name"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Alfa", decodeDoc(t, docs[0])["name"])

	docs, err = c.Find(ctx, repository.Filter{}, repository.FindOptions{SortPath: "name", Desc: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Beta", decodeDoc(t, docs[0])["name"])

	raw, err := c.FindOne(ctx, repository.Filter{}.
		OrAny("nameKey", repository.OpEq, "zeta").
		OrAny("phone.number", repository.OpEq, "30000002"))
	require.NoError(t, err)
	assert.Equal(t, "Alfa", decodeDoc(t, raw)["name"])

	raw, err = c.FindOne(ctx, repository.Where("name", repository.OpContains, "ALF"))
	require.NoError(t, err)
	assert.NotNil(t, raw)

	_, err = c.Find(ctx, repository.Filter{}, repository.FindOptions{SortPath: "website"})
	assert.Error(t, err, "campo no ordenable")
}

func TestFind_RangoTemporalYSum(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	provision(t, e, "acme-com", schema.KindUser)
	provision(t, e, "acme-com", schema.KindCompanyLead)
	provision(t, e, "acme-com", schema.KindContactLead)
	provision(t, e, "acme-com", schema.KindLead)
	c := provision(t, e, "acme-com", schema.KindPipeline)
	companies := provision(t, e, "acme-com", schema.KindCompanyLead)
	company := insert(t, ctx, companies, map[string]any{"name": "Acme", "nameKey": "acme"})

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	insert(t, ctx, c, map[string]any{"company": company, "expectedRevenue": "100.50", "followUp": day.Add(3 * time.Hour)})
	insert(t, ctx, c, map[string]any{"company": company, "expectedRevenue": "20", "followUp": day.AddDate(0, 0, 1)})

	n, err := c.Count(ctx, repository.Range("followUp", day, day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sum, err := c.Sum(ctx, repository.Filter{}, "expectedRevenue")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("120.50")), sum.String())
}

func TestFilter_IDNoParseableNoCoincide(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	c := provision(t, e, "acme-com", schema.KindUser)
	id := insert(t, ctx, c, map[string]any{"email": "a@acme.com"})

	raw, err := c.FindOne(ctx, repository.ByID(id))
	require.NoError(t, err)
	assert.NotNil(t, raw)

	raw, err = c.FindOne(ctx, repository.ByID("nope"))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Integridad
// ──────────────────────────────────────────────────────────────────────────────

func TestInsert_IndiceUnico(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	c := provision(t, e, "acme-com", schema.KindUser)
	insert(t, ctx, c, map[string]any{"email": "a@acme.com"})

	raw, _ := json.Marshal(map[string]any{"email": "a@acme.com"})
	err := c.Insert(ctx, uuid.NewString(), raw)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestInsert_ReferenciaDelMismoTenant(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	provision(t, e, "acme-com", schema.KindUser)
	other := provision(t, e, "other-com", schema.KindCompanyLead)
	provision(t, e, "other-com", schema.KindUser)
	foreign := insert(t, ctx, other, map[string]any{"name": "Ajena", "nameKey": "ajena"})

	provision(t, e, "acme-com", schema.KindCompanyLead)
	contacts := provision(t, e, "acme-com", schema.KindContactLead)

	raw, _ := json.Marshal(map[string]any{"company": foreign, "name": "Ana"})
	err := contacts.Insert(ctx, uuid.NewString(), raw)
	assert.Error(t, err, "una referencia a otro tenant no resuelve")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestWithTx_RollbackDeshaceTodo(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	c := provision(t, e, "acme-com", schema.KindUser)
	keep := insert(t, ctx, c, map[string]any{"email": "keep@acme.com", "firstName": "Ana"})

	boom := errors.New("boom")
	err := e.WithTx(ctx, func(ctx context.Context) error {
		insert(t, ctx, c, map[string]any{"email": "new@acme.com"})
		raw, _ := json.Marshal(map[string]any{"id": keep, "email": "keep@acme.com", "firstName": "Eva"})
		ok, err := c.UpdateOne(ctx, keep, repository.Filter{}, raw)
		require.NoError(t, err)
		require.True(t, ok)
		deleted, err := c.FindOneAndDelete(ctx, repository.ByID(keep))
		require.NoError(t, err)
		require.NotNil(t, deleted)
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := c.Count(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	raw, err := c.FindOne(ctx, repository.ByID(keep))
	require.NoError(t, err)
	assert.Equal(t, "Ana", decodeDoc(t, raw)["firstName"])
}

func TestWithTx_AnidadaReutilizaLaExterna(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	c := provision(t, e, "acme-com", schema.KindUser)

	err := e.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, e.WithTx(ctx, func(ctx context.Context) error {
			insert(t, ctx, c, map[string]any{"email": "inner@acme.com"})
			return nil
		}))
		return errors.New("falla externa")
	})
	require.Error(t, err)

	n, _ := c.Count(ctx, repository.Filter{})
	assert.Zero(t, n, "la escritura interna se deshace con la externa")
}

func TestLock_RequiereTransaccion(t *testing.T) {
	e := NewEngine()
	c := provision(t, e, "acme-com", schema.KindUser)

	assert.ErrorIs(t, c.Lock(context.Background(), "k"), domain.ErrLockOutsideTx)
	assert.NoError(t, e.WithTx(context.Background(), func(ctx context.Context) error {
		return c.Lock(ctx, "k")
	}))
}

func TestFindOneAndDelete_ConcurrenteSoloUnoGana(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	provision(t, e, "acme-com", schema.KindUser)
	c := provision(t, e, "acme-com", schema.KindRefreshToken)
	insert(t, ctx, c, map[string]any{"tokenHash": "h1"})

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, err := c.FindOneAndDelete(ctx, repository.Eq("tokenHash", "h1"))
			if err == nil && raw != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
