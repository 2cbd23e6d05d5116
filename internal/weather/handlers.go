package weather

import (
	"backend-campbook/internal/booking"
	"backend-campbook/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, client *Client) {
	r.Get("/forecast/:zipCode", func(c *fiber.Ctx) error {
		res, err := client.FiveDay(c.Context(), c.Params("zipCode"))
		if err != nil {
			return apperr.ToFiber(client.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	})

	r.Get("/stay/:zipCode", func(c *fiber.Ctx) error {
		stay, err := booking.ParseStay(c.Query("start"), c.Query("end"))
		if err != nil {
			return apperr.ToFiber(client.log, err)
		}
		res, err := client.ForecastForStay(c.Context(), c.Params("zipCode"), stay.Start, stay.End)
		if err != nil {
			return apperr.ToFiber(client.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	})

	r.Get("/:zipCode", func(c *fiber.Ctx) error {
		res, err := client.Current(c.Context(), c.Params("zipCode"))
		if err != nil {
			return apperr.ToFiber(client.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": res})
	})
}
