package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"github.com/nkoz18/photography-blog-sub000/internal/ratelimit"
)

type fakeReportStore struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]*models.Report
	images  map[uint]bool
}

func newFakeReportStore(imageIDs ...uint) *fakeReportStore {
	images := make(map[uint]bool)
	for _, id := range imageIDs {
		images[id] = true
	}
	return &fakeReportStore{reports: make(map[uint]*models.Report), images: images}
}

func (f *fakeReportStore) Create(_ context.Context, report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	report.ID = f.nextID
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeReportStore) Get(_ context.Context, id uint) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reports[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeReportStore) Update(_ context.Context, report *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeReportStore) Exists(_ context.Context, imageID uint, ip string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ReportedImageID == imageID && r.IP == ip {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReportStore) ImageExists(_ context.Context, imageID uint) (bool, error) {
	return f.images[imageID], nil
}

func (f *fakeReportStore) List(_ context.Context, status string, page, limit int) ([]models.Report, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, r := range f.reports {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func boolPtr(b bool) *bool { return &b }

func validReportInput(imageID uint, ip string) *CreateReportInput {
	return &CreateReportInput{
		ImageID:          imageID,
		Reason:           "no_consent",
		IsSubjectInImage: boolPtr(true),
		IP:               ip,
		UserAgent:        "Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1",
	}
}

func TestCreateReportValidation(t *testing.T) {
	svc := NewReportService(newFakeReportStore(1), ratelimit.New(time.Minute, 5))
	ctx := context.Background()

	tests := []struct {
		name string
		in   *CreateReportInput
	}{
		{"missing image", &CreateReportInput{Reason: "spam", IsSubjectInImage: boolPtr(false), IP: "1.1.1.1"}},
		{"missing reason", &CreateReportInput{ImageID: 1, IsSubjectInImage: boolPtr(false), IP: "1.1.1.1"}},
		{"missing subject flag", &CreateReportInput{ImageID: 1, Reason: "spam", IP: "1.1.1.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.in); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateReportSuccess(t *testing.T) {
	store := newFakeReportStore(7)
	svc := NewReportService(store, ratelimit.New(time.Minute, 5))

	report, err := svc.Create(context.Background(), validReportInput(7, "203.0.113.9"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if report.Status != models.ReportStatusPending {
		t.Errorf("Expected pending status, got %s", report.Status)
	}
	if report.ReportedAt.IsZero() {
		t.Error("Expected ReportedAt to be set")
	}
	if report.Device != "mobile" {
		t.Errorf("Expected parsed mobile device, got %q", report.Device)
	}
}

func TestCreateReportDuplicate(t *testing.T) {
	store := newFakeReportStore(7)
	svc := NewReportService(store, ratelimit.New(time.Minute, 5))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validReportInput(7, "203.0.113.9")); err != nil {
		t.Fatalf("First report failed: %v", err)
	}

	_, err := svc.Create(ctx, validReportInput(7, "203.0.113.9"))
	if !apperr.Is(err, apperr.KindDuplicate) {
		t.Fatalf("Expected duplicate error, got %v", err)
	}

	if len(store.reports) != 1 {
		t.Errorf("Duplicate must not create a second record, have %d", len(store.reports))
	}

	// A different address may still report the same image.
	if _, err := svc.Create(ctx, validReportInput(7, "198.51.100.4")); err != nil {
		t.Errorf("Different IP should be allowed: %v", err)
	}
}

func TestCreateReportMissingImage(t *testing.T) {
	svc := NewReportService(newFakeReportStore(), ratelimit.New(time.Minute, 5))

	_, err := svc.Create(context.Background(), validReportInput(99, "203.0.113.9"))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestCreateReportRateLimited(t *testing.T) {
	// Six distinct images so only the limiter can reject.
	store := newFakeReportStore(1, 2, 3, 4, 5, 6)
	svc := NewReportService(store, ratelimit.New(time.Minute, 5))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if _, err := svc.Create(ctx, validReportInput(uint(i), "203.0.113.9")); err != nil {
			t.Fatalf("Report %d should succeed: %v", i, err)
		}
	}

	_, err := svc.Create(ctx, validReportInput(6, "203.0.113.9"))
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("6th report within the window should be rate limited, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := newFakeReportStore(7)
	svc := NewReportService(store, ratelimit.New(time.Minute, 5))
	ctx := context.Background()

	report, err := svc.Create(ctx, validReportInput(7, "203.0.113.9"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateStatus(ctx, report.ID, "escalated", "", "admin"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error for unknown status, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, report.ID, models.ReportStatusApproved, "confirmed", "admin")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.ReportStatusApproved {
		t.Errorf("Expected approved, got %s", updated.Status)
	}
	if updated.ReviewedAt == nil || updated.ReviewedBy != "admin" {
		t.Errorf("Expected review metadata, got %+v", updated)
	}

	if _, err := svc.UpdateStatus(ctx, 12345, models.ReportStatusRejected, "", "admin"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not found for unknown report, got %v", err)
	}
}

func TestSixSubmissionsScenario(t *testing.T) {
	// Spec-level walk: 6 submissions from one IP inside 60 seconds,
	// each targeting a distinct image; the first 5 land, the 6th 429s.
	store := newFakeReportStore(10, 11, 12, 13, 14, 15)
	svc := NewReportService(store, ratelimit.New(time.Minute, 5))
	ctx := context.Background()

	var results []error
	for i := 0; i < 6; i++ {
		_, err := svc.Create(ctx, validReportInput(uint(10+i), "192.0.2.1"))
		results = append(results, err)
	}

	for i := 0; i < 5; i++ {
		if results[i] != nil {
			t.Errorf("Submission %d should succeed: %v", i+1, results[i])
		}
	}
	if !apperr.Is(results[5], apperr.KindRateLimited) {
		t.Errorf("Submission 6 should be rate limited, got %v", results[5])
	}
	if got := len(store.reports); got != 5 {
		t.Errorf("Expected 5 stored reports, got %d", got)
	}
}
