package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/internal/domain"
)

// OrganizationHandler registro de organizaciones e invitaciones.
type OrganizationHandler struct {
	uc *organization.OrganizationUseCase
}

// NewOrganizationHandler construye el handler.
func NewOrganizationHandler(uc *organization.OrganizationUseCase) *OrganizationHandler {
	return &OrganizationHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar organización
// @Description  Crea la organización del dominio del email y su super_admin.
// @Tags         organization
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterOrganizationRequest  true  "title y administrador"
// @Success      201   {object}  dto.Envelope{data=dto.RegisterOrganizationResponse}
// @Failure      409   {object}  dto.Envelope
// @Router       /api/v1/organization [post]
func (h *OrganizationHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterOrganizationRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Organización registrada correctamente", res)
}

// Verify godoc
// @Summary      Disponibilidad del dominio
// @Description  409 con organizationExists=true si el dominio ya tiene organización.
// @Tags         organization
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyOrganizationRequest  true  "email"
// @Success      200   {object}  dto.Envelope{data=dto.VerifyOrganizationResponse}
// @Failure      409   {object}  dto.Envelope{data=dto.VerifyOrganizationResponse}
// @Router       /api/v1/organization/verify [post]
func (h *OrganizationHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyOrganizationRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Verify(c.UserContext(), in)
	if errors.Is(err, domain.ErrOrgExists) {
		env := dto.Fail(domain.ErrOrgExists.Message, domain.ErrOrgExists.Code, domain.ErrOrgExists.Type)
		env.Data = dto.VerifyOrganizationResponse{OrganizationExists: true}
		return c.Status(fiber.StatusConflict).JSON(env)
	}
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Dominio disponible", res)
}

// Invite godoc
// @Summary      Invitar usuarios
// @Tags         organization
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.InviteUsersRequest  true  "emails del dominio"
// @Success      201   {object}  dto.Envelope{data=[]dto.InviteResponse}
// @Failure      403   {object}  dto.Envelope
// @Router       /api/v1/organization/invites [post]
func (h *OrganizationHandler) Invite(c *fiber.Ctx) error {
	var in dto.InviteUsersRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Invite(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Invitaciones registradas", res)
}
