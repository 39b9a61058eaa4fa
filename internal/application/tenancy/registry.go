// Package tenancy mantiene el mapa (tenant, tipo) -> partición viva. Cada partición se
// aprovisiona una sola vez por proceso aunque lleguen accesos concurrentes.
package tenancy

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// Handle partición aprovisionada junto con el esquema con el que se creó.
type Handle struct {
	Name       string
	TenantID   string
	Definition schema.Definition
	Collection repository.Collection
}

// Registry fuente única de handles de partición.
type Registry struct {
	engine repository.Engine
	log    *logger.Logger

	mu      sync.RWMutex
	handles map[string]*Handle
	group   singleflight.Group
}

// NewRegistry construye el registro sobre un motor de almacenamiento.
func NewRegistry(engine repository.Engine, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{engine: engine, log: log.Named("tenancy"), handles: make(map[string]*Handle)}
}

// WithTx delega en el motor: todas las particiones usadas con el ctx de fn comparten la transacción.
func (r *Registry) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.engine.WithTx(ctx, fn)
}

// GetPartition devuelve el handle de (tenantID, kind), aprovisionándolo la primera vez.
// Los tipos globales ignoran tenantID.
func (r *Registry) GetPartition(ctx context.Context, tenantID string, kind schema.Kind) (*Handle, error) {
	var name, namespace string
	if schema.IsGlobal(kind) {
		tenantID = ""
		name = schema.PartitionName(schema.PlatformNamespace, kind)
		namespace = schema.PlatformNamespace
	} else {
		if !schema.ValidTenantID(tenantID) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTenant, tenantID)
		}
		name = schema.PartitionName(tenantID, kind)
		namespace = schema.Namespace(tenantID)
	}

	if h := r.cached(name); h != nil {
		return h, nil
	}

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		if h := r.cached(name); h != nil {
			return h, nil
		}
		def, err := schema.For(kind, tenantID)
		if err != nil {
			return nil, err
		}
		// Las particiones referenciadas deben existir antes que las claves foráneas que apuntan a ellas.
		for _, ref := range def.References {
			if ref.Kind == kind {
				continue
			}
			if _, err := r.GetPartition(ctx, tenantID, ref.Kind); err != nil {
				return nil, err
			}
		}
		// Un cliente que cancela no debe dejar a los demás esperando una partición a medio crear.
		coll, err := r.engine.Provision(context.WithoutCancel(ctx), repository.PartitionSpec{
			Name:       name,
			Namespace:  namespace,
			Definition: def,
		})
		if err != nil {
			return nil, fmt.Errorf("aprovisionar %s: %w", name, err)
		}
		h := &Handle{Name: name, TenantID: tenantID, Definition: def, Collection: coll}

		r.mu.Lock()
		r.handles[name] = h
		r.mu.Unlock()

		r.log.Info().Str("partition", name).Str("namespace", namespace).Msg("partición registrada")
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

func (r *Registry) cached(name string) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[name]
}

// ProvisionTenant aprovisiona todas las particiones de un tenant.
func (r *Registry) ProvisionTenant(ctx context.Context, tenantID string) error {
	for _, kind := range schema.TenantKinds() {
		if _, err := r.GetPartition(ctx, tenantID, kind); err != nil {
			return err
		}
	}
	return nil
}

func open[T any](ctx context.Context, r *Registry, tenantID string, kind schema.Kind) (*Partition[T], error) {
	h, err := r.GetPartition(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}
	return &Partition[T]{h: h}, nil
}

// Users partición de usuarios del tenant.
func (r *Registry) Users(ctx context.Context, tenantID string) (*Partition[entity.User], error) {
	return open[entity.User](ctx, r, tenantID, schema.KindUser)
}

func (r *Registry) CompanyLeads(ctx context.Context, tenantID string) (*Partition[entity.CompanyLead], error) {
	return open[entity.CompanyLead](ctx, r, tenantID, schema.KindCompanyLead)
}

func (r *Registry) ContactLeads(ctx context.Context, tenantID string) (*Partition[entity.ContactLead], error) {
	return open[entity.ContactLead](ctx, r, tenantID, schema.KindContactLead)
}

func (r *Registry) Leads(ctx context.Context, tenantID string) (*Partition[entity.Lead], error) {
	return open[entity.Lead](ctx, r, tenantID, schema.KindLead)
}

func (r *Registry) CallLogs(ctx context.Context, tenantID string) (*Partition[entity.CallLog], error) {
	return open[entity.CallLog](ctx, r, tenantID, schema.KindCallLog)
}

func (r *Registry) Pipelines(ctx context.Context, tenantID string) (*Partition[entity.Pipeline], error) {
	return open[entity.Pipeline](ctx, r, tenantID, schema.KindPipeline)
}

func (r *Registry) RefreshTokens(ctx context.Context, tenantID string) (*Partition[entity.RefreshToken], error) {
	return open[entity.RefreshToken](ctx, r, tenantID, schema.KindRefreshToken)
}

// Organizations registros globales de organización (uno por dominio).
func (r *Registry) Organizations(ctx context.Context) (*Partition[entity.Organization], error) {
	return open[entity.Organization](ctx, r, "", schema.KindOrganization)
}

// Invites invitaciones pendientes, globales.
func (r *Registry) Invites(ctx context.Context) (*Partition[entity.OrganizationInvite], error) {
	return open[entity.OrganizationInvite](ctx, r, "", schema.KindInvite)
}
