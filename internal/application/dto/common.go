package dto

// Envelope cuerpo de toda respuesta: {message, errorCode, error, data}.
// En respuestas exitosas errorCode y error son null.
type Envelope struct {
	Message   string  `json:"message"`
	ErrorCode *string `json:"errorCode"`
	Error     *string `json:"error"`
	Data      any     `json:"data"`
}

// OK envoltorio de éxito.
func OK(message string, data any) Envelope {
	return Envelope{Message: message, Data: data}
}

// Fail envoltorio de error con código y tipo.
func Fail(message, code, errType string) Envelope {
	return Envelope{Message: message, ErrorCode: &code, Error: &errType}
}

// MaxPage límite de página aceptado; mantiene Offset lejos del desbordamiento.
const MaxPage = 10000

// PageRequest paginación y orden para listados (page empieza en 1).
type PageRequest struct {
	Page  int    `query:"page" validate:"min=0,max=10000"`
	Limit int    `query:"limit" validate:"min=0,max=100"`
	Sort  string `query:"sort" validate:"omitempty,max=50"`
	Order string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// DefaultPage aplica valores por defecto si Page/Limit son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Sort == "" {
		p.Sort = "createdAt"
	}
	if p.Order == "" {
		p.Order = "desc"
	}
}

// Offset desplazamiento correspondiente a Page.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// PageInfo metadatos de página en respuestas de listado.
type PageInfo struct {
	Total          int64 `json:"total"`
	Page           int   `json:"page"`
	Limit          int   `json:"limit"`
	TotalPages     int64 `json:"totalPages"`
	HasMoreRecords bool  `json:"hasMoreRecords"`
}

// NewPageInfo calcula totalPages y hasMoreRecords.
func NewPageInfo(total int64, p PageRequest) PageInfo {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return PageInfo{
		Total:          total,
		Page:           p.Page,
		Limit:          p.Limit,
		TotalPages:     pages,
		HasMoreRecords: int64(p.Page) < pages,
	}
}

// PhoneDTO teléfono en entradas y salidas.
type PhoneDTO struct {
	Extension string `json:"extension,omitempty" validate:"omitempty,max=5,phoneext"`
	Number    string `json:"number,omitempty" validate:"omitempty,min=8,max=15,digits"`
}
