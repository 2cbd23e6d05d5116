package booking

import (
	"backend-campbook/internal/auth"
	"backend-campbook/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware, auth.RequireRole(auth.RoleUser, auth.RoleAdmin))

	r.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.List(c.Context(), auth.PrincipalFrom(c))
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "count": len(list), "data": list})
	})

	r.Get("/all", auth.RequireRole(auth.RoleAdmin), func(c *fiber.Ctx) error {
		list, err := svc.List(c.Context(), auth.PrincipalFrom(c))
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "count": len(list), "data": list})
	})

	r.Get("/users/:userId", func(c *fiber.Ctx) error {
		list, err := svc.ListByOwner(c.Context(), auth.PrincipalFrom(c), c.Params("userId"))
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "count": len(list), "data": list})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		b, err := svc.Get(c.Context(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": b})
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		b, err := svc.Create(c.Context(), auth.PrincipalFrom(c), req)
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": b})
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req Patch
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		b, err := svc.Update(c.Context(), auth.PrincipalFrom(c), c.Params("id"), req)
		if err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": b})
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.PrincipalFrom(c), c.Params("id")); err != nil {
			return apperr.ToFiber(svc.log, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
	})
}
