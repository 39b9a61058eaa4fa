package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/calllog"
	"github.com/jhoicas/CRM-api/internal/application/dto"
)

// CallLogHandler endpoints de registros de llamada.
type CallLogHandler struct {
	uc *calllog.CallLogUseCase
}

// NewCallLogHandler construye el handler.
func NewCallLogHandler(uc *calllog.CallLogUseCase) *CallLogHandler {
	return &CallLogHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar llamada
// @Description  Contra un lead existente, o con leadName + companyId|company crea el lead primero.
// @Tags         call-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateCallLogRequest  true  "llamada"
// @Success      201   {object}  dto.Envelope{data=dto.CreateCallLogResponse}
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/call-logs [post]
func (h *CallLogHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCallLogRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Llamada registrada correctamente", res)
}

// List godoc
// @Summary      Listar llamadas
// @Tags         call-logs
// @Produce      json
// @Security     BearerAuth
// @Param        lead      query  string  false  "id de lead"
// @Param        outcome   query  string  false  "resultado"
// @Param        remarks   query  string  false  "observaciones (contiene)"
// @Param        followUp  query  string  false  "día YYYY-MM-DD"
// @Success      200   {object}  dto.Envelope{data=dto.CallLogListResponse}
// @Router       /api/v1/call-logs [get]
func (h *CallLogHandler) List(c *fiber.Ctx) error {
	res, err := h.uc.List(c.UserContext(), GetTenantID(c), dto.CallLogFilter{
		PageRequest: pageQuery(c),
		Lead:        c.Query("lead"),
		Outcome:     c.Query("outcome"),
		Remarks:     c.Query("remarks"),
		FollowUp:    c.Query("followUp"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// GetByID godoc
// @Summary      Obtener llamada
// @Tags         call-logs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la llamada"
// @Success      200   {object}  dto.Envelope{data=dto.CallLogResponse}
// @Router       /api/v1/call-logs/{id} [get]
func (h *CallLogHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// Update godoc
// @Summary      Actualizar llamada
// @Tags         call-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "id de la llamada"
// @Param        body  body  dto.UpdateCallLogRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.CallLogResponse}
// @Router       /api/v1/call-logs/{id} [put]
func (h *CallLogHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCallLogRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Update(c.UserContext(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Llamada actualizada", res)
}

// Delete godoc
// @Summary      Eliminar llamada
// @Tags         call-logs
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la llamada"
// @Success      200   {object}  dto.Envelope
// @Router       /api/v1/call-logs/{id} [delete]
func (h *CallLogHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Llamada eliminada", nil)
}
