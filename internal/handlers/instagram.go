package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
)

type InstagramHandler struct {
	service *services.Instagram
}

func NewInstagramHandler(service *services.Instagram) *InstagramHandler {
	return &InstagramHandler{service: service}
}

func SetupInstagramRoutes(router fiber.Router, service *services.Instagram) {
	h := NewInstagramHandler(service)

	router.Get("/exists", h.Exists)
}

// Exists godoc
// @Summary Check whether an Instagram handle is a public profile
// @Description Responds with exists true, false, or null when inconclusive
// @Tags instagram
// @Produce json
// @Param handle query string true "Instagram handle"
// @Success 200 {object} map[string]interface{}
// @Router /instagram/exists [get]
func (h *InstagramHandler) Exists(c *fiber.Ctx) error {
	handle := c.Query("handle")

	result, err := h.service.Exists(c.UserContext(), handle)
	if err != nil {
		return err
	}

	var exists interface{}
	switch result {
	case services.ExistencePublic:
		exists = true
	case services.ExistenceNotFound:
		exists = false
	default:
		exists = nil
	}

	return c.JSON(fiber.Map{"exists": exists})
}
