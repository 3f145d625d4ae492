package database

import (
	"context"
	"errors"
	"sync"

	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeoCacheStore is the durable reverse-geocoding cache. The table is
// created lazily on first write.
type GeoCacheStore struct {
	db      *DB
	ensure  sync.Once
	tableOK bool
}

func NewGeoCacheStore(db *DB) *GeoCacheStore {
	return &GeoCacheStore{db: db}
}

func (s *GeoCacheStore) Get(ctx context.Context, key string) (*models.GeocodeCache, error) {
	var rec models.GeocodeCache
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GeoCacheStore) Upsert(ctx context.Context, rec *models.GeocodeCache) error {
	s.ensure.Do(func() {
		s.tableOK = s.db.AutoMigrate(&models.GeocodeCache{}) == nil
	})
	if !s.tableOK {
		return errors.New("geocode cache table unavailable")
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "place_name", "created_at"}),
	}).Create(rec).Error
}

// EncounterStore persists encounters through GORM.
type EncounterStore struct {
	db *DB
}

func NewEncounterStore(db *DB) *EncounterStore {
	return &EncounterStore{db: db}
}

func (s *EncounterStore) Create(ctx context.Context, enc *models.Encounter) error {
	return s.db.WithContext(ctx).Create(enc).Error
}

func (s *EncounterStore) GetBySlug(ctx context.Context, slug string) (*models.Encounter, error) {
	var enc models.Encounter
	err := s.db.WithContext(ctx).Preload("Contacts").Where("slug = ?", slug).First(&enc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func (s *EncounterStore) GetWithContacts(ctx context.Context, id uint) (*models.Encounter, error) {
	var enc models.Encounter
	err := s.db.WithContext(ctx).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("contacts.id") }).
		First(&enc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func (s *EncounterStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).Model(&models.Encounter{}).
		Where("id = ?", id).Update("status", status).Error
}

// ContactStore persists contacts through GORM.
type ContactStore struct {
	db *DB
}

func NewContactStore(db *DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) Create(ctx context.Context, contact *models.Contact) error {
	return s.db.WithContext(ctx).Create(contact).Error
}

func (s *ContactStore) Update(ctx context.Context, contact *models.Contact) error {
	return s.db.WithContext(ctx).Save(contact).Error
}

func (s *ContactStore) SetSMSOptOut(ctx context.Context, contactID uint) error {
	return s.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id = ?", contactID).Update("sms_opt_out", true).Error
}

// ReportStore persists image reports through GORM.
type ReportStore struct {
	db *DB
}

func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *ReportStore) Get(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) Update(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Save(report).Error
}

func (s *ReportStore) Exists(ctx context.Context, imageID uint, ip string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("reported_image_id = ? AND ip = ?", imageID, ip).Count(&count).Error
	return count > 0, err
}

func (s *ReportStore) ImageExists(ctx context.Context, imageID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", imageID).Count(&count).Error
	return count > 0, err
}

func (s *ReportStore) List(ctx context.Context, status string, page, limit int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Order("reported_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, total, err
}
