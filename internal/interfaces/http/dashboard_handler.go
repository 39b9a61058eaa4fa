package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Tier devuelve el handler del nivel indicado; el acceso por rol lo decide el router.
//
// GET /api/v1/dashboard              → TierEmployee
// GET /api/v1/dashboard/admin        → TierAdmin
// GET /api/v1/dashboard/super-admin  → TierSuperAdmin
func (h *DashboardHandler) Tier(tier analytics.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := h.uc.Get(c.UserContext(), GetTenantID(c), tier)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
	}
}
