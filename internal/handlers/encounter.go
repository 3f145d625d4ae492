package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
	"github.com/nkoz18/photography-blog-sub000/internal/middleware"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
)

type EncounterHandler struct {
	service *services.EncounterService
}

func NewEncounterHandler(service *services.EncounterService) *EncounterHandler {
	return &EncounterHandler{service: service}
}

func SetupEncounterRoutes(router fiber.Router, service *services.EncounterService, cfg *config.Config) {
	h := NewEncounterHandler(service)

	router.Post("/coords", h.CreateFromCoords)
	router.Patch("/:slug/status", middleware.AdminRequired(cfg), h.UpdateStatus)
}

type createEncounterRequest struct {
	Lat           float64         `json:"lat"`
	Lng           float64         `json:"lng"`
	ManualAddress string          `json:"manual_address"`
	Contact       *contactRequest `json:"contact"`
}

type contactRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Instagram string `json:"instagram"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// CreateFromCoords godoc
// @Summary Create a photo encounter from coordinates
// @Tags encounters
// @Accept json
// @Produce json
// @Success 201 {object} models.Encounter
// @Router /photo-encounters/coords [post]
func (h *EncounterHandler) CreateFromCoords(c *fiber.Ctx) error {
	var req createEncounterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	in := &services.CreateEncounterInput{
		Lat:           req.Lat,
		Lng:           req.Lng,
		ManualAddress: req.ManualAddress,
	}
	if req.Contact != nil {
		in.Contact = &services.ContactInput{
			Name:      req.Contact.Name,
			Phone:     req.Contact.Phone,
			Email:     req.Contact.Email,
			Instagram: req.Contact.Instagram,
		}
	}

	enc, err := h.service.CreateFromCoords(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(enc)
}

// UpdateStatus godoc
// @Summary Update encounter status (admin)
// @Tags encounters
// @Accept json
// @Produce json
// @Param slug path string true "Encounter slug"
// @Success 200 {object} models.Encounter
// @Router /photo-encounters/{slug}/status [patch]
func (h *EncounterHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	enc, err := h.service.UpdateStatus(c.UserContext(), c.Params("slug"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(enc)
}
