package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/leads"
)

// LeadHandler endpoints de leads; la creación arma el bundle empresa + contactos + leads.
type LeadHandler struct {
	uc *leads.LeadUseCase
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *leads.LeadUseCase) *LeadHandler {
	return &LeadHandler{uc: uc}
}

// Create godoc
// @Summary      Crear bundle de leads
// @Description  Empresa, contactos y un lead por contacto en una sola transacción.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateLeadBundleRequest  true  "company y contacts"
// @Success      201   {object}  dto.Envelope{data=dto.LeadBundleResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/v1/leads [post]
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLeadBundleRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.CreateBundle(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Lead creado correctamente", res)
}

// List godoc
// @Summary      Listar leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        page      query  int     false  "página (desde 1)"
// @Param        limit     query  int     false  "tamaño de página"
// @Param        sort      query  string  false  "campo de orden"
// @Param        order     query  string  false  "asc | desc"
// @Param        status    query  string  false  "estado"
// @Param        source    query  string  false  "origen (contiene)"
// @Param        company   query  string  false  "id de empresa"
// @Param        followUp  query  string  false  "día YYYY-MM-DD"
// @Success      200   {object}  dto.Envelope{data=dto.LeadListResponse}
// @Router       /api/v1/leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	res, err := h.uc.List(c.UserContext(), GetTenantID(c), dto.LeadFilter{
		PageRequest: pageQuery(c),
		Status:      c.Query("status"),
		Source:      c.Query("source"),
		Company:     c.Query("company"),
		FollowUp:    c.Query("followUp"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// GetByID godoc
// @Summary      Obtener lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id del lead"
// @Success      200   {object}  dto.Envelope{data=dto.LeadResponse}
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/leads/{id} [get]
func (h *LeadHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// Update godoc
// @Summary      Actualizar lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "id del lead"
// @Param        body  body  dto.UpdateLeadRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.LeadResponse}
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/leads/{id} [put]
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLeadRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Update(c.UserContext(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Lead actualizado", res)
}

// Delete godoc
// @Summary      Eliminar lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id del lead"
// @Success      200   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/leads/{id} [delete]
func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Lead eliminado", nil)
}
