package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// ErrorHandler clasifica cualquier error devuelto por un handler y responde con el envoltorio.
// Los errores de servidor se registran con el request id; el cliente solo ve un mensaje genérico.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		de := classify(err)
		if de.Status >= fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error interno")
		}
		return c.Status(de.Status).JSON(dto.Fail(de.Message, de.Code, de.Type))
	}
}

func classify(err error) *domain.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusNotFound:
			return domain.NewNotFound(domain.CodeRouteNotFound, fe.Message)
		case fe.Code < fiber.StatusInternalServerError:
			return &domain.Error{Status: fe.Code, Code: domain.CodeValidation, Type: domain.TypeValidation, Message: fe.Message}
		default:
			return domain.NewServer(err)
		}
	}
	return domain.AsError(err)
}

// respond envoltorio de éxito con el status indicado.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.OK(message, data))
}

// parseBody decodifica el JSON del cuerpo; un cuerpo ilegible es error de validación.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidation("cuerpo inválido")
	}
	return nil
}
