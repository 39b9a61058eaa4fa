package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/pipeline"
)

// PipelineHandler endpoints de oportunidades.
type PipelineHandler struct {
	uc *pipeline.PipelineUseCase
}

// NewPipelineHandler construye el handler.
func NewPipelineHandler(uc *pipeline.PipelineUseCase) *PipelineHandler {
	return &PipelineHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pipeline
// @Tags         pipelines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePipelineRequest  true  "lead o company"
// @Success      201   {object}  dto.Envelope{data=dto.PipelineResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/v1/pipelines [post]
func (h *PipelineHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePipelineRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Pipeline creado correctamente", res)
}

// List godoc
// @Summary      Listar pipelines
// @Tags         pipelines
// @Produce      json
// @Security     BearerAuth
// @Param        opportunityStage  query  string  false  "etapa"
// @Param        company           query  string  false  "id de empresa"
// @Param        lead              query  string  false  "id de lead"
// @Param        followUp          query  string  false  "día YYYY-MM-DD"
// @Success      200   {object}  dto.Envelope{data=dto.PipelineListResponse}
// @Router       /api/v1/pipelines [get]
func (h *PipelineHandler) List(c *fiber.Ctx) error {
	res, err := h.uc.List(c.UserContext(), GetTenantID(c), dto.PipelineFilter{
		PageRequest:      pageQuery(c),
		OpportunityStage: c.Query("opportunityStage"),
		Company:          c.Query("company"),
		Lead:             c.Query("lead"),
		FollowUp:         c.Query("followUp"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// GetByID godoc
// @Summary      Obtener pipeline
// @Tags         pipelines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id del pipeline"
// @Success      200   {object}  dto.Envelope{data=dto.PipelineResponse}
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/pipelines/{id} [get]
func (h *PipelineHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}

// Update godoc
// @Summary      Actualizar pipeline
// @Tags         pipelines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                     true  "id del pipeline"
// @Param        body  body  dto.UpdatePipelineRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.PipelineResponse}
// @Router       /api/v1/pipelines/{id} [put]
func (h *PipelineHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePipelineRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Update(c.UserContext(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Pipeline actualizado", res)
}

// Delete godoc
// @Summary      Eliminar pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Param        id   path  string  true  "id del pipeline"
// @Success      200   {object}  dto.Envelope
// @Router       /api/v1/pipelines/{id} [delete]
func (h *PipelineHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Pipeline eliminado", nil)
}
