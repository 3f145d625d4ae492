package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
	"github.com/nkoz18/photography-blog-sub000/internal/middleware"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func SetupReportRoutes(app fiber.Router, service *services.ReportService, cfg *config.Config) {
	h := NewReportHandler(service)

	app.Post("/report-image/:imageId", h.Create)

	reports := app.Group("/reports", middleware.AdminRequired(cfg))
	reports.Get("/", h.List)
	reports.Post("/:id/update-status", h.UpdateStatus)
}

type createReportRequest struct {
	Reason           string `json:"reason"`
	OtherReason      string `json:"other_reason"`
	IsSubjectInImage *bool  `json:"is_subject_in_image"`
}

type updateReportStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type reportListResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// Create godoc
// @Summary Report an image
// @Description Public, rate-limited; one report per image per address
// @Tags reports
// @Accept json
// @Produce json
// @Param imageId path int true "Image ID"
// @Success 201 {object} map[string]interface{}
// @Router /report-image/{imageId} [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	imageID, err := strconv.Atoi(c.Params("imageId"))
	if err != nil {
		return apperr.Validation("invalid image id")
	}

	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	report, err := h.service.Create(c.UserContext(), &services.CreateReportInput{
		ImageID:          uint(imageID),
		Reason:           req.Reason,
		OtherReason:      req.OtherReason,
		IsSubjectInImage: req.IsSubjectInImage,
		IP:               c.IP(),
		UserAgent:        c.Get("User-Agent"),
	})
	if err != nil {
		// The public endpoint answers with an explicit success flag;
		// rate limits keep their 429 status with no state change.
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind != apperr.KindRateLimited {
			return c.Status(statusForKind(appErr.Kind)).JSON(fiber.Map{
				"success": false,
				"message": appErr.Message,
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Thank you, your report has been received and will be reviewed.",
		"report_id": report.ID,
	})
}

// List godoc
// @Summary List reports (admin)
// @Tags reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} reportListResponse
// @Router /reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	reports, total, err := h.service.List(c.UserContext(), c.Query("status"), page, limit)
	if err != nil {
		return err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return c.JSON(reportListResponse{
		Items:      reports,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

// UpdateStatus godoc
// @Summary Update report review status (admin)
// @Tags reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Router /reports/{id}/update-status [post]
func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperr.Validation("invalid report id")
	}

	var req updateReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	reviewer, _ := c.Locals("reviewer").(string)
	report, err := h.service.UpdateStatus(c.UserContext(), uint(id), req.Status, req.Notes, reviewer)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
