package dto

import "github.com/shopspring/decimal"

// Card tarjeta del tablero.
type Card struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DashboardStats cifras del tenant.
type DashboardStats struct {
	Leads             int64            `json:"leads"`
	LeadsByStatus     map[string]int64 `json:"leadsByStatus"`
	Companies         int64            `json:"companies"`
	CallLogs          int64            `json:"callLogs"`
	OpenPipelines     int64            `json:"openPipelines"`
	OpenPipelineValue decimal.Decimal  `json:"openPipelineValue"`
	Users             int64            `json:"users,omitempty"`
}

// DashboardResponse tarjetas según el rol y estadísticas.
type DashboardResponse struct {
	Cards []Card         `json:"cards"`
	Stats DashboardStats `json:"stats"`
}
