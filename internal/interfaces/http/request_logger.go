package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/pkg/logger"
)

// RequestLogger registra método, ruta, status, request id y duración de cada petición.
// Los errores se resuelven aquí con el ErrorHandler de la app para registrar el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Float64("ms", float64(time.Since(start).Microseconds())/1000).
			Msg("petición")
		return nil
	}
}
