package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
)

// pageQuery lee page, limit, sort y order. Valores no numéricos quedan en cero y
// el caso de uso aplica los valores por defecto.
func pageQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{
		Page:  c.QueryInt("page"),
		Limit: c.QueryInt("limit"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	}
}
