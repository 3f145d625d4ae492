package services

import (
	"context"

	"github.com/nkoz18/photography-blog-sub000/internal/models"
)

// GeoCacheStore persists durable reverse-geocoding results.
type GeoCacheStore interface {
	// Get returns the row for key, or nil when absent.
	Get(ctx context.Context, key string) (*models.GeocodeCache, error)
	// Upsert inserts or refreshes the row for rec.CacheKey.
	Upsert(ctx context.Context, rec *models.GeocodeCache) error
}

// EncounterStore is the slice of the entity store the lifecycle needs.
type EncounterStore interface {
	Create(ctx context.Context, enc *models.Encounter) error
	GetBySlug(ctx context.Context, slug string) (*models.Encounter, error)
	// GetWithContacts loads an encounter with its linked contacts, in
	// contact query order.
	GetWithContacts(ctx context.Context, id uint) (*models.Encounter, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// ContactStore persists encounter contacts.
type ContactStore interface {
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	// SetSMSOptOut latches the opt-out flag for a contact.
	SetSMSOptOut(ctx context.Context, contactID uint) error
}

// ReportStore persists image reports.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	Get(ctx context.Context, id uint) (*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	// Exists reports whether a report exists for the (image, ip) pair.
	Exists(ctx context.Context, imageID uint, ip string) (bool, error)
	ImageExists(ctx context.Context, imageID uint) (bool, error)
	List(ctx context.Context, status string, page, limit int) ([]models.Report, int64, error)
}
