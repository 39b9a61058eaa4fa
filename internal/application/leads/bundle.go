package leads

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

// Partitions particiones que toca la creación de un bundle, resueltas antes de abrir la transacción.
type Partitions struct {
	TenantID  string
	Companies *tenancy.Partition[entity.CompanyLead]
	Contacts  *tenancy.Partition[entity.ContactLead]
	Leads     *tenancy.Partition[entity.Lead]
}

// OpenPartitions resuelve (y aprovisiona si hace falta) las particiones del tenant.
func OpenPartitions(ctx context.Context, reg *tenancy.Registry, tenantID string) (*Partitions, error) {
	companies, err := reg.CompanyLeads(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	contacts, err := reg.ContactLeads(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	leads, err := reg.Leads(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &Partitions{TenantID: tenantID, Companies: companies, Contacts: contacts, Leads: leads}, nil
}

// Bundle resultado de la creación compuesta.
type Bundle struct {
	Company  *entity.CompanyLead
	Contacts []*entity.ContactLead
	Leads    []*entity.Lead
}

// lockKeys claves lógicas de detección de duplicados de la empresa y sus contactos.
func lockKeys(in dto.CreateLeadBundleRequest) []string {
	keys := []string{"company:name:" + entity.NaturalKey(in.Company.Name)}
	if in.Company.Phone.Number != "" {
		keys = append(keys, "company:phone:"+in.Company.Phone.Number)
	}
	return append(keys, contactKeys(in.Contacts)...)
}

func contactKeys(contacts []dto.ContactInput) []string {
	keys := make([]string, 0, 2*len(contacts))
	for _, c := range contacts {
		if email := entity.NormalizeEmail(c.Email); email != "" {
			keys = append(keys, "contact:email:"+email)
		}
		if c.Phone.Number != "" {
			keys = append(keys, "contact:phone:"+c.Phone.Number)
		}
	}
	return keys
}

// CompanyExists busca una empresa viva con el mismo nombre normalizado o el mismo teléfono.
func CompanyExists(ctx context.Context, p *Partitions, name, phone string) (bool, error) {
	f := repository.Filter{}.OrAny("nameKey", repository.OpEq, entity.NaturalKey(name))
	if phone != "" {
		f = f.OrAny("phone.number", repository.OpEq, phone)
	}
	n, err := p.Companies.Count(ctx, f)
	return n > 0, err
}

func contactExists(ctx context.Context, p *Partitions, email, phone string) (bool, error) {
	if email == "" && phone == "" {
		return false, nil
	}
	f := repository.Filter{}
	if email != "" {
		f = f.OrAny("email", repository.OpEq, email)
	}
	if phone != "" {
		f = f.OrAny("phone.number", repository.OpEq, phone)
	}
	n, err := p.Contacts.Count(ctx, f)
	return n > 0, err
}

// CreateBundleInTx crea empresa, contactos y leads. Debe llamarse con el ctx de una
// transacción abierta: cualquier error deja que el llamador revierta todo el bundle.
func CreateBundleInTx(ctx context.Context, p *Partitions, actorID string, in dto.CreateLeadBundleRequest) (*Bundle, error) {
	// 1. Bloqueo de claves naturales: dos bundles con la misma empresa se serializan
	if err := p.Companies.Lock(ctx, lockKeys(in)...); err != nil {
		return nil, err
	}

	// 2. Duplicados de la empresa
	exists, err := CompanyExists(ctx, p, in.Company.Name, in.Company.Phone.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrCompanyExists
	}

	now := time.Now().UTC()
	company := &entity.CompanyLead{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Company.Name),
		NameKey:       entity.NaturalKey(in.Company.Name),
		Phone:         entity.Phone{Extension: in.Company.Phone.Extension, Number: in.Company.Phone.Number},
		Website:       in.Company.Website,
		Email:         entity.NormalizeEmail(in.Company.Email),
		SocialProfile: in.Company.SocialProfile,
		Owner:         actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.Companies.Insert(ctx, company.ID, company); err != nil {
		return nil, err
	}
	out := &Bundle{Company: company}

	// 3. Sin contactos: un único lead apuntando solo a la empresa
	if len(in.Contacts) == 0 {
		lead := &entity.Lead{
			ID:        uuid.NewString(),
			Company:   company.ID,
			Status:    entity.LeadStatusNew,
			Priority:  entity.PriorityMedium,
			Owner:     actorID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := p.Leads.Insert(ctx, lead.ID, lead); err != nil {
			return nil, err
		}
		out.Leads = append(out.Leads, lead)
		return out, nil
	}

	// 4. Un contacto y un lead por cada entrada; los contactos ya insertados en esta misma
	// llamada cuentan como duplicados
	for _, c := range in.Contacts {
		contact, lead, err := insertContactLead(ctx, p, actorID, company.ID, c, now)
		if err != nil {
			return nil, err
		}
		out.Contacts = append(out.Contacts, contact)
		out.Leads = append(out.Leads, lead)
	}
	return out, nil
}

func insertContactLead(ctx context.Context, p *Partitions, actorID, companyID string, c dto.ContactInput, now time.Time) (*entity.ContactLead, *entity.Lead, error) {
	email := entity.NormalizeEmail(c.Email)
	exists, err := contactExists(ctx, p, email, c.Phone.Number)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, domain.ErrContactExists
	}
	contact := &entity.ContactLead{
		ID:        uuid.NewString(),
		Company:   companyID,
		Name:      strings.TrimSpace(c.Name),
		Phone:     entity.Phone{Extension: c.Phone.Extension, Number: c.Phone.Number},
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Contacts.Insert(ctx, contact.ID, contact); err != nil {
		return nil, nil, err
	}

	status := c.Status
	if status == "" {
		status = entity.LeadStatusNew
	}
	priority := c.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	contactID := contact.ID
	lead := &entity.Lead{
		ID:        uuid.NewString(),
		Company:   companyID,
		Contact:   &contactID,
		Status:    status,
		Source:    c.Source,
		FollowUp:  c.FollowUp,
		Priority:  priority,
		Owner:     actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Leads.Insert(ctx, lead.ID, lead); err != nil {
		return nil, nil, err
	}
	return contact, lead, nil
}

// AddLeadInTx agrega un contacto con su lead a una empresa viva. Igual que CreateBundleInTx,
// requiere el ctx de una transacción abierta.
func AddLeadInTx(ctx context.Context, p *Partitions, actorID, companyID string, c dto.ContactInput) (*Bundle, error) {
	if err := p.Companies.Lock(ctx, contactKeys([]dto.ContactInput{c})...); err != nil {
		return nil, err
	}
	company, err := p.Companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}
	contact, lead, err := insertContactLead(ctx, p, actorID, company.ID, c, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &Bundle{Company: company, Contacts: []*entity.ContactLead{contact}, Leads: []*entity.Lead{lead}}, nil
}

// Response proyección agregada del bundle.
func (b *Bundle) Response() *dto.LeadBundleResponse {
	res := &dto.LeadBundleResponse{Company: ToCompanyResponse(b.Company), Leads: make([]dto.LeadResponse, 0, len(b.Leads))}
	for i, l := range b.Leads {
		var contact *entity.ContactLead
		if i < len(b.Contacts) {
			contact = b.Contacts[i]
		}
		res.Leads = append(res.Leads, ToLeadResponse(l, b.Company, contact))
	}
	return res
}

// CreateBundle crea la empresa con sus contactos y leads en una sola transacción.
func (uc *LeadUseCase) CreateBundle(ctx context.Context, tenantID, actorID string, in dto.CreateLeadBundleRequest) (*dto.LeadBundleResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	p, err := OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}

	var bundle *Bundle
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		bundle, txErr = CreateBundleInTx(ctx, p, actorID, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("company_id", bundle.Company.ID).
		Int("leads", len(bundle.Leads)).
		Msg("bundle de lead creado")
	return bundle.Response(), nil
}
