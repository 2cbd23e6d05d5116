package campground

import (
	"backend-campbook/internal/auth"
	"backend-campbook/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	guard := auth.RequireRole(auth.RoleUser, auth.RoleAdmin)

	r.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.List(c.Context())
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "count": len(list), "data": list})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		cg, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": cg})
	})

	r.Post("/", authMiddleware, guard, func(c *fiber.Ctx) error {
		var req Input
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		cg, err := svc.Create(c.Context(), req)
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cg})
	})

	r.Put("/:id", authMiddleware, guard, func(c *fiber.Ctx) error {
		var req Patch
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		cg, err := svc.Update(c.Context(), c.Params("id"), req)
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": cg})
	})

	r.Delete("/:id", authMiddleware, guard, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	})
}
