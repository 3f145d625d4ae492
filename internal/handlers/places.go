package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
)

type PlacesHandler struct {
	service *services.Places
}

func NewPlacesHandler(service *services.Places) *PlacesHandler {
	return &PlacesHandler{service: service}
}

func SetupPlacesRoutes(router fiber.Router, service *services.Places) {
	h := NewPlacesHandler(service)

	router.Get("/autocomplete", h.Autocomplete)
	router.Get("/details", h.Details)
}

// Autocomplete godoc
// @Summary Place autocomplete predictions
// @Tags places
// @Produce json
// @Param input query string true "Partial place text"
// @Success 200 {array} services.Prediction
// @Router /places/autocomplete [get]
func (h *PlacesHandler) Autocomplete(c *fiber.Ctx) error {
	input := c.Query("input")
	if input == "" {
		return apperr.Validation("input is required")
	}

	predictions, err := h.service.Autocomplete(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(predictions)
}

// Details godoc
// @Summary Place details by place ID
// @Tags places
// @Produce json
// @Param place_id query string true "Place ID"
// @Success 200 {object} services.PlaceDetail
// @Router /places/details [get]
func (h *PlacesHandler) Details(c *fiber.Ctx) error {
	placeID := c.Query("place_id")
	if placeID == "" {
		return apperr.Validation("place_id is required")
	}

	detail, err := h.service.Details(c.UserContext(), placeID)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}
