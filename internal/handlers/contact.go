package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
)

type ContactHandler struct {
	service *services.EncounterService
}

func NewContactHandler(service *services.EncounterService) *ContactHandler {
	return &ContactHandler{service: service}
}

func SetupContactRoutes(router fiber.Router, service *services.EncounterService) {
	h := NewContactHandler(service)

	router.Post("/", h.Create)
}

type attachContactRequest struct {
	EncounterSlug string `json:"encounter_slug"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Instagram     string `json:"instagram"`
}

// Create godoc
// @Summary Attach a contact to an encounter by slug
// @Tags contacts
// @Accept json
// @Produce json
// @Success 201 {object} models.Contact
// @Router /contacts [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req attachContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.EncounterSlug == "" {
		return apperr.Validation("encounter_slug is required")
	}

	contact, err := h.service.AttachContact(c.UserContext(), req.EncounterSlug, &services.ContactInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Instagram: req.Instagram,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}
