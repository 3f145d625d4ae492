package services

import (
	"context"
	"time"

	"github.com/mileusna/useragent"
	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"github.com/nkoz18/photography-blog-sub000/internal/ratelimit"
)

// ReportService gates public image reports: required-field validation,
// per-IP rate limiting, and one report per (image, ip) pair.
type ReportService struct {
	store   ReportStore
	limiter *ratelimit.Limiter
	now     func() time.Time
}

func NewReportService(store ReportStore, limiter *ratelimit.Limiter) *ReportService {
	return &ReportService{
		store:   store,
		limiter: limiter,
		now:     time.Now,
	}
}

type CreateReportInput struct {
	ImageID          uint
	Reason           string
	OtherReason      string
	IsSubjectInImage *bool
	IP               string
	UserAgent        string
}

// Create validates and persists a pending report.
func (s *ReportService) Create(ctx context.Context, in *CreateReportInput) (*models.Report, error) {
	if in.ImageID == 0 {
		return nil, apperr.Validation("reported image id is required")
	}
	if in.Reason == "" {
		return nil, apperr.Validation("reason is required")
	}
	if in.IsSubjectInImage == nil {
		return nil, apperr.Validation("is_subject_in_image is required")
	}

	if !s.limiter.Allow(in.IP) {
		return nil, apperr.RateLimited("too many reports from this address, try again later")
	}

	exists, err := s.store.Exists(ctx, in.ImageID, in.IP)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Duplicate("this image has already been reported from this address")
	}

	imageExists, err := s.store.ImageExists(ctx, in.ImageID)
	if err != nil {
		return nil, err
	}
	if !imageExists {
		return nil, apperr.NotFound("image %d not found", in.ImageID)
	}

	ua := useragent.Parse(in.UserAgent)
	report := &models.Report{
		ReportedImageID:  in.ImageID,
		IP:               in.IP,
		Reason:           in.Reason,
		OtherReason:      in.OtherReason,
		IsSubjectInImage: *in.IsSubjectInImage,
		Status:           models.ReportStatusPending,
		UserAgent:        in.UserAgent,
		Browser:          ua.Name,
		OS:               ua.OS,
		Device:           deviceType(ua),
		ReportedAt:       s.now(),
	}

	if err := s.store.Create(ctx, report); err != nil {
		return nil, err
	}

	log := logger.GetLogger("service.reports")
	log.Infow("Image report created", "report_id", report.ID, "image_id", in.ImageID)

	return report, nil
}

// UpdateStatus moves a report through the review workflow. Privileged
// callers only; routing enforces that.
func (s *ReportService) UpdateStatus(ctx context.Context, id uint, status, notes, reviewer string) (*models.Report, error) {
	if !models.ReportStatuses[status] {
		return nil, apperr.Validation("invalid report status %q", status)
	}

	report, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperr.NotFound("report %d not found", id)
	}

	reviewedAt := s.now()
	report.Status = status
	report.ReviewNotes = notes
	report.ReviewedAt = &reviewedAt
	report.ReviewedBy = reviewer

	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns reports filtered by status, newest first.
func (s *ReportService) List(ctx context.Context, status string, page, limit int) ([]models.Report, int64, error) {
	if status != "" && !models.ReportStatuses[status] {
		return nil, 0, apperr.Validation("invalid report status %q", status)
	}
	return s.store.List(ctx, status, page, limit)
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	case ua.Bot:
		return "bot"
	default:
		return "unknown"
	}
}
