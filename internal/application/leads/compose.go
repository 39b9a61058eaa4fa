package leads

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

// ToCompanyResponse proyección de la empresa sin marca de borrado.
func ToCompanyResponse(c *entity.CompanyLead) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         dto.PhoneDTO{Extension: c.Phone.Extension, Number: c.Phone.Number},
		Website:       c.Website,
		Email:         c.Email,
		SocialProfile: c.SocialProfile,
		Owner:         c.Owner,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToLeadResponse proyección del lead; company y contact pueden ser nil.
func ToLeadResponse(l *entity.Lead, company *entity.CompanyLead, contact *entity.ContactLead) dto.LeadResponse {
	out := dto.LeadResponse{
		ID:        l.ID,
		Company:   l.Company,
		Contact:   l.Contact,
		Status:    l.Status,
		Source:    l.Source,
		FollowUp:  l.FollowUp,
		Priority:  l.Priority,
		Owner:     l.Owner,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	if company != nil {
		out.CompanyName = company.Name
	}
	if contact != nil {
		out.Name = contact.Name
		out.Email = contact.Email
		if contact.Phone.Number != "" || contact.Phone.Extension != "" {
			out.Phone = &dto.PhoneDTO{Extension: contact.Phone.Extension, Number: contact.Phone.Number}
		}
	}
	return out
}

// compose arma las proyecciones de una página de leads. Lee primero las empresas y luego los
// contactos referenciados, una consulta por partición.
func compose(ctx context.Context, p *Partitions, leads []*entity.Lead) ([]dto.LeadResponse, error) {
	companyIDs := make([]string, 0, len(leads))
	contactIDs := make([]string, 0, len(leads))
	for _, l := range leads {
		companyIDs = append(companyIDs, l.Company)
		if l.Contact != nil {
			contactIDs = append(contactIDs, *l.Contact)
		}
	}

	companies := map[string]*entity.CompanyLead{}
	if len(companyIDs) > 0 {
		rows, err := p.Companies.Find(ctx, repository.Where("id", repository.OpIn, companyIDs), repository.FindOptions{})
		if err != nil {
			return nil, err
		}
		for _, c := range rows {
			companies[c.ID] = c
		}
	}
	contacts := map[string]*entity.ContactLead{}
	if len(contactIDs) > 0 {
		rows, err := p.Contacts.Find(ctx, repository.Where("id", repository.OpIn, contactIDs), repository.FindOptions{})
		if err != nil {
			return nil, err
		}
		for _, c := range rows {
			contacts[c.ID] = c
		}
	}

	out := make([]dto.LeadResponse, 0, len(leads))
	for _, l := range leads {
		var contact *entity.ContactLead
		if l.Contact != nil {
			contact = contacts[*l.Contact]
		}
		out = append(out, ToLeadResponse(l, companies[l.Company], contact))
	}
	return out, nil
}
