package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
	"github.com/nkoz18/photography-blog-sub000/internal/models"
)

// EncounterService creates encounters and drives the ready-notification
// lifecycle.
type EncounterService struct {
	store    EncounterStore
	contacts ContactStore
	geocoder *Geocoder
	notifier *Notifier
	// notifyOnReadyEdit re-fires notifications on every update of an
	// already-ready encounter instead of only the edge transition.
	notifyOnReadyEdit bool
}

func NewEncounterService(store EncounterStore, contacts ContactStore, geocoder *Geocoder, notifier *Notifier, notifyOnReadyEdit bool) *EncounterService {
	return &EncounterService{
		store:             store,
		contacts:          contacts,
		geocoder:          geocoder,
		notifier:          notifier,
		notifyOnReadyEdit: notifyOnReadyEdit,
	}
}

type CreateEncounterInput struct {
	Lat           float64
	Lng           float64
	ManualAddress string
	Contact       *ContactInput
}

type ContactInput struct {
	Name      string
	Phone     string
	Email     string
	Instagram string
}

// CreateFromCoords creates a pending encounter at the given coordinates,
// resolving the address through the geocoder unless a manual address is
// supplied. An inline contact may be attached in the same call.
func (s *EncounterService) CreateFromCoords(ctx context.Context, in *CreateEncounterInput) (*models.Encounter, error) {
	if in.Lat == 0 && in.Lng == 0 {
		return nil, apperr.Validation("coordinates are required")
	}

	enc := &models.Encounter{
		Slug:   newSlug(),
		Status: models.EncounterStatusPending,
		Lat:    in.Lat,
		Lng:    in.Lng,
	}

	if in.ManualAddress != "" {
		enc.Address = in.ManualAddress
	} else {
		loc, err := s.geocoder.Reverse(ctx, in.Lat, in.Lng)
		if err != nil {
			return nil, err
		}
		enc.Address = loc.Address
		enc.PlaceName = loc.PlaceName
	}

	if err := s.store.Create(ctx, enc); err != nil {
		return nil, err
	}

	if in.Contact != nil {
		contact := &models.Contact{
			EncounterID: enc.ID,
			Name:        in.Contact.Name,
			Phone:       in.Contact.Phone,
			Email:       in.Contact.Email,
			Instagram:   in.Contact.Instagram,
		}
		if err := s.contacts.Create(ctx, contact); err != nil {
			return nil, err
		}
		enc.Contacts = append(enc.Contacts, *contact)
	}

	return enc, nil
}

// AttachContact creates or merges a contact onto the encounter with the
// given slug. Merging fills empty fields and never clears existing ones;
// the SMS opt-out latch is never reset here.
func (s *EncounterService) AttachContact(ctx context.Context, slug string, in *ContactInput) (*models.Contact, error) {
	if in.Name == "" && in.Phone == "" && in.Email == "" && in.Instagram == "" {
		return nil, apperr.Validation("at least one contact field is required")
	}

	enc, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, apperr.NotFound("encounter %q not found", slug)
	}

	// Merge onto an existing contact when the phone or email matches.
	for i := range enc.Contacts {
		existing := &enc.Contacts[i]
		if (in.Phone != "" && existing.Phone == in.Phone) ||
			(in.Email != "" && existing.Email == in.Email) {
			mergeContact(existing, in)
			if err := s.contacts.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	contact := &models.Contact{
		EncounterID: enc.ID,
		Name:        in.Name,
		Phone:       in.Phone,
		Email:       in.Email,
		Instagram:   in.Instagram,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateStatus transitions an encounter and invokes the lifecycle hook
// with the previous and next states.
func (s *EncounterService) UpdateStatus(ctx context.Context, slug, status string) (*models.Encounter, error) {
	if status != models.EncounterStatusPending && status != models.EncounterStatusReady {
		return nil, apperr.Validation("invalid encounter status %q", status)
	}

	prev, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, apperr.NotFound("encounter %q not found", slug)
	}

	if err := s.store.UpdateStatus(ctx, prev.ID, status); err != nil {
		return nil, err
	}

	next, err := s.store.GetWithContacts(ctx, prev.ID)
	if err != nil {
		return nil, err
	}

	s.OnTransition(ctx, prev, next)
	return next, nil
}

// OnTransition is the lifecycle hook the entity store invokes on every
// encounter update. Notification fires only on the edge into ready;
// updates to an already-ready encounter re-fire only when configured.
func (s *EncounterService) OnTransition(ctx context.Context, prev, next *models.Encounter) {
	if next == nil || next.Status != models.EncounterStatusReady {
		return
	}

	wasReady := prev != nil && prev.Status == models.EncounterStatusReady
	if wasReady && !s.notifyOnReadyEdit {
		return
	}

	log := logger.GetLogger("service.encounters")
	log.Infow("Encounter ready, dispatching notifications", "slug", next.Slug, "contacts", len(next.Contacts))
	s.notifier.NotifyReady(ctx, next)
}

// mergeContact fills empty fields on an existing contact from the input.
// It never overwrites populated fields and never touches the opt-out
// latch.
func mergeContact(existing *models.Contact, in *ContactInput) {
	if existing.Name == "" {
		existing.Name = in.Name
	}
	if existing.Phone == "" {
		existing.Phone = in.Phone
	}
	if existing.Email == "" {
		existing.Email = in.Email
	}
	if existing.Instagram == "" {
		existing.Instagram = in.Instagram
	}
}

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newSlug() string {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteByte(slugAlphabet[rand.Intn(len(slugAlphabet))])
	}
	return fmt.Sprintf("enc-%d-%s", time.Now().Unix(), b.String())
}
