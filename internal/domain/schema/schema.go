// Package schema describe cada tipo de registro de forma independiente del motor de almacenamiento:
// tabla, borrado lógico, índices de clave natural y referencias a otras particiones del mismo tenant.
package schema

import (
	"fmt"
	"regexp"
)

// Kind tipo de entidad; también es el sufijo del nombre de la partición.
type Kind string

const (
	KindUser         Kind = "users"
	KindCompanyLead  Kind = "companyLeads"
	KindContactLead  Kind = "contactLeads"
	KindLead         Kind = "leads"
	KindCallLog      Kind = "callLogs"
	KindPipeline     Kind = "pipelines"
	KindRefreshToken Kind = "refreshTokens"
	KindOrganization Kind = "organizations"
	KindInvite       Kind = "organizationInvites"
)

// DeletedPath ruta del flag de borrado lógico dentro del documento.
const DeletedPath = "deleted.isDeleted"

// PlatformNamespace espacio reservado para los registros globales (organizaciones, invitaciones).
const PlatformNamespace = "platform"

// FieldType tipo de un campo ordenable; decide cómo se compara.
type FieldType int

const (
	Text FieldType = iota
	Number
	Time
)

// Index índice lógico sobre rutas del documento. WithDeleted agrega el flag de borrado
// como segunda columna: (clave natural, isDeleted).
type Index struct {
	Name        string
	Paths       []string
	Unique      bool
	WithDeleted bool
}

// Reference campo que apunta a otra partición. Partition siempre es del mismo tenant.
type Reference struct {
	Path      string
	Kind      Kind
	Partition string
}

// Definition esquema de una entidad para un tenant concreto.
type Definition struct {
	Kind       Kind
	Table      string
	Global     bool
	SoftDelete bool
	Indexes    []Index
	References []Reference
	Sortable   map[string]FieldType
}

// 48 caracteres: "tenant_" + id cabe en el límite de 63 bytes de los identificadores de Postgres.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,47}$`)

// ValidTenantID informa si el identificador es aceptable como nombre de partición.
func ValidTenantID(tenantID string) bool {
	return tenantIDPattern.MatchString(tenantID)
}

// PartitionName nombre determinista de la partición: "<tenant>_<kind>".
func PartitionName(tenantID string, kind Kind) string {
	return tenantID + "_" + string(kind)
}

// Namespace espacio físico (esquema) donde viven las particiones del tenant.
func Namespace(tenantID string) string {
	return "tenant_" + tenantID
}

// TenantKinds tipos que viven en particiones por tenant, en orden de dependencia.
func TenantKinds() []Kind {
	return []Kind{KindUser, KindCompanyLead, KindContactLead, KindLead, KindCallLog, KindPipeline, KindRefreshToken}
}

// IsGlobal informa si el tipo vive en el espacio de plataforma.
func IsGlobal(kind Kind) bool {
	return kind == KindOrganization || kind == KindInvite
}

// For construye la definición del tipo parametrizada por tenant: las referencias apuntan
// a las particiones del mismo tenant. Para tipos globales tenantID se ignora.
func For(kind Kind, tenantID string) (Definition, error) {
	ref := func(path string, k Kind) Reference {
		return Reference{Path: path, Kind: k, Partition: PartitionName(tenantID, k)}
	}
	base := map[string]FieldType{"createdAt": Time, "updatedAt": Time}
	sortable := func(extra map[string]FieldType) map[string]FieldType {
		out := make(map[string]FieldType, len(base)+len(extra))
		for k, v := range base {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	switch kind {
	case KindUser:
		return Definition{
			Kind:  kind,
			Table: "users",
			Indexes: []Index{
				{Name: "users_email_uq", Paths: []string{"email"}, Unique: true},
			},
			Sortable: sortable(map[string]FieldType{"firstName": Text, "lastName": Text, "email": Text}),
		}, nil
	case KindCompanyLead:
		return Definition{
			Kind:       kind,
			Table:      "company_leads",
			SoftDelete: true,
			Indexes: []Index{
				{Name: "company_leads_name_idx", Paths: []string{"nameKey"}, WithDeleted: true},
				{Name: "company_leads_phone_idx", Paths: []string{"phone.number"}, WithDeleted: true},
			},
			References: []Reference{ref("owner", KindUser)},
			Sortable:   sortable(map[string]FieldType{"name": Text}),
		}, nil
	case KindContactLead:
		return Definition{
			Kind:       kind,
			Table:      "contact_leads",
			SoftDelete: true,
			Indexes: []Index{
				{Name: "contact_leads_email_idx", Paths: []string{"email"}, WithDeleted: true},
				{Name: "contact_leads_phone_idx", Paths: []string{"phone.number"}, WithDeleted: true},
			},
			References: []Reference{ref("company", KindCompanyLead)},
			Sortable:   sortable(map[string]FieldType{"name": Text}),
		}, nil
	case KindLead:
		return Definition{
			Kind:       kind,
			Table:      "leads",
			SoftDelete: true,
			Indexes: []Index{
				{Name: "leads_company_idx", Paths: []string{"company"}, WithDeleted: true},
			},
			References: []Reference{
				ref("company", KindCompanyLead),
				ref("contact", KindContactLead),
				ref("owner", KindUser),
			},
			Sortable: sortable(map[string]FieldType{"status": Text, "source": Text, "followUp": Time, "priority": Text}),
		}, nil
	case KindCallLog:
		return Definition{
			Kind:       kind,
			Table:      "call_logs",
			SoftDelete: true,
			Indexes: []Index{
				{Name: "call_logs_lead_idx", Paths: []string{"lead"}, WithDeleted: true},
			},
			References: []Reference{ref("lead", KindLead), ref("owner", KindUser)},
			Sortable:   sortable(map[string]FieldType{"followUp": Time, "callStartTime": Time, "callDuration": Number, "outcome": Text}),
		}, nil
	case KindPipeline:
		return Definition{
			Kind:       kind,
			Table:      "pipelines",
			SoftDelete: true,
			Indexes: []Index{
				{Name: "pipelines_company_idx", Paths: []string{"company"}, WithDeleted: true},
				{Name: "pipelines_lead_idx", Paths: []string{"lead"}, WithDeleted: true},
			},
			References: []Reference{
				ref("company", KindCompanyLead),
				ref("lead", KindLead),
				ref("owner", KindUser),
			},
			Sortable: sortable(map[string]FieldType{
				"opportunityStage": Text, "estimatedValue": Number, "probability": Number,
				"expectedRevenue": Number, "followUp": Time,
			}),
		}, nil
	case KindRefreshToken:
		return Definition{
			Kind:  kind,
			Table: "refresh_tokens",
			Indexes: []Index{
				{Name: "refresh_tokens_hash_uq", Paths: []string{"tokenHash"}, Unique: true},
				{Name: "refresh_tokens_user_idx", Paths: []string{"user"}},
			},
			References: []Reference{ref("user", KindUser)},
			Sortable:   sortable(map[string]FieldType{"expiresAt": Time}),
		}, nil
	case KindOrganization:
		return Definition{
			Kind:   kind,
			Table:  "organizations",
			Global: true,
			Indexes: []Index{
				{Name: "organizations_domain_uq", Paths: []string{"domain"}, Unique: true},
				{Name: "organizations_tenant_uq", Paths: []string{"tenantId"}, Unique: true},
			},
			Sortable: sortable(map[string]FieldType{"title": Text}),
		}, nil
	case KindInvite:
		return Definition{
			Kind:   kind,
			Table:  "organization_invites",
			Global: true,
			Indexes: []Index{
				{Name: "organization_invites_email_uq", Paths: []string{"email"}, Unique: true},
				{Name: "organization_invites_status_idx", Paths: []string{"status"}},
			},
			Sortable: sortable(map[string]FieldType{"lastTried": Time, "retryCount": Number}),
		}, nil
	}
	return Definition{}, fmt.Errorf("schema: tipo desconocido %q", kind)
}

// Table nombre físico de la tabla del tipo; no depende del tenant.
func Table(kind Kind) string {
	def, err := For(kind, "")
	if err != nil {
		return ""
	}
	return def.Table
}
