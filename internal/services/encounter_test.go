package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"github.com/nkoz18/photography-blog-sub000/pkg/sms"
)

type fakeGateway struct {
	mu       sync.Mutex
	sent     []string
	optedOut map[string]bool
	failNums map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{optedOut: make(map[string]bool), failNums: make(map[string]bool)}
}

func (g *fakeGateway) Send(_ context.Context, phone, message string) (*sms.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNums[phone] {
		return nil, errors.New("invalid number")
	}
	if g.optedOut[phone] {
		return &sms.Result{OptedOut: true}, nil
	}
	g.sent = append(g.sent, phone)
	return &sms.Result{Success: true, MessageID: "msg-1"}, nil
}

type fakeContactStore struct {
	mu       sync.Mutex
	contacts map[uint]*models.Contact
	optOuts  []uint
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[uint]*models.Contact)}
}

func (f *fakeContactStore) Create(_ context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact.ID = uint(len(f.contacts) + 1)
	clone := *contact
	f.contacts[contact.ID] = &clone
	return nil
}

func (f *fakeContactStore) Update(_ context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *contact
	f.contacts[contact.ID] = &clone
	return nil
}

func (f *fakeContactStore) SetSMSOptOut(_ context.Context, contactID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.contacts[contactID]; ok {
		c.SMSOptOut = true
	}
	f.optOuts = append(f.optOuts, contactID)
	return nil
}

func strPtr(s string) *string { return &s }

func readyEncounter(contacts ...models.Contact) *models.Encounter {
	return &models.Encounter{
		ID:       1,
		Slug:     "enc-test",
		Status:   models.EncounterStatusReady,
		Contacts: contacts,
	}
}

func TestNotifyReadySkipsOptedOutContacts(t *testing.T) {
	gateway := newFakeGateway()
	n := NewNotifier(gateway, newFakeContactStore(), "https://example.com")

	enc := readyEncounter(
		models.Contact{ID: 1, Phone: "+15035550100", SMSOptOut: true},
		models.Contact{ID: 2, Phone: "+15035550101"},
	)
	n.NotifyReady(context.Background(), enc)

	if len(gateway.sent) != 1 || gateway.sent[0] != "+15035550101" {
		t.Errorf("Expected exactly one message to the non-opted-out contact, got %v", gateway.sent)
	}
}

func TestNotifyReadyContinuesPastFailures(t *testing.T) {
	gateway := newFakeGateway()
	gateway.failNums["+15035550100"] = true
	n := NewNotifier(gateway, newFakeContactStore(), "https://example.com")

	enc := readyEncounter(
		models.Contact{ID: 1, Phone: "+15035550100"},
		models.Contact{ID: 2, Phone: "+15035550101"},
		models.Contact{ID: 3}, // no phone
	)
	n.NotifyReady(context.Background(), enc)

	if len(gateway.sent) != 1 || gateway.sent[0] != "+15035550101" {
		t.Errorf("One bad number must not block the rest, got %v", gateway.sent)
	}
}

func TestNotifyReadyLatchesProviderOptOut(t *testing.T) {
	gateway := newFakeGateway()
	gateway.optedOut["+15035550100"] = true

	contacts := newFakeContactStore()
	contacts.contacts[1] = &models.Contact{ID: 1, Phone: "+15035550100"}
	n := NewNotifier(gateway, contacts, "https://example.com")

	enc := readyEncounter(models.Contact{ID: 1, Phone: "+15035550100"})
	n.NotifyReady(context.Background(), enc)

	if !contacts.contacts[1].SMSOptOut {
		t.Error("Provider-reported opt-out must be persisted")
	}

	// The latch holds for later batches: the in-memory contact is now
	// flagged, so no further send attempts are made.
	n.NotifyReady(context.Background(), enc)
	if len(gateway.sent) != 0 {
		t.Errorf("Opted-out contact must never be messaged again, got %v", gateway.sent)
	}
}

func TestNotifyMessageTemplates(t *testing.T) {
	n := NewNotifier(newFakeGateway(), newFakeContactStore(), "https://example.com")

	withPlace := readyEncounter()
	withPlace.PlaceName = strPtr("Powell's City of Books")
	msg := n.message(withPlace)
	if want := "Powell's City of Books"; !strings.Contains(msg, want) {
		t.Errorf("Expected place name in message, got %q", msg)
	}
	if !strings.Contains(msg, "https://example.com/encounter/enc-test") {
		t.Errorf("Expected encounter link in message, got %q", msg)
	}

	noPlace := readyEncounter()
	msg = n.message(noPlace)
	if strings.Contains(msg, "at ") {
		t.Errorf("Expected generic template without place, got %q", msg)
	}
}

type fakeEncounterStore struct {
	mu         sync.Mutex
	nextID     uint
	bySlug     map[string]*models.Encounter
	transCalls int
}

func newFakeEncounterStore() *fakeEncounterStore {
	return &fakeEncounterStore{bySlug: make(map[string]*models.Encounter)}
}

func (f *fakeEncounterStore) Create(_ context.Context, enc *models.Encounter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	enc.ID = f.nextID
	clone := *enc
	f.bySlug[enc.Slug] = &clone
	return nil
}

func (f *fakeEncounterStore) GetBySlug(_ context.Context, slug string) (*models.Encounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if enc, ok := f.bySlug[slug]; ok {
		clone := *enc
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeEncounterStore) GetWithContacts(_ context.Context, id uint) (*models.Encounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, enc := range f.bySlug {
		if enc.ID == id {
			clone := *enc
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeEncounterStore) UpdateStatus(_ context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transCalls++
	for _, enc := range f.bySlug {
		if enc.ID == id {
			enc.Status = status
			return nil
		}
	}
	return errors.New("not found")
}

func newLifecycleService(gateway *fakeGateway, notifyOnReadyEdit bool) (*EncounterService, *fakeEncounterStore) {
	store := newFakeEncounterStore()
	contacts := newFakeContactStore()
	notifier := NewNotifier(gateway, contacts, "https://example.com")
	svc := NewEncounterService(store, contacts, nil, notifier, notifyOnReadyEdit)
	return svc, store
}

func TestOnTransitionFiresOnEdgeOnly(t *testing.T) {
	gateway := newFakeGateway()
	svc, _ := newLifecycleService(gateway, false)
	ctx := context.Background()

	pending := &models.Encounter{ID: 1, Slug: "e", Status: models.EncounterStatusPending}
	ready := readyEncounter(models.Contact{ID: 1, Phone: "+15035550100"})

	// pending -> ready fires.
	svc.OnTransition(ctx, pending, ready)
	if len(gateway.sent) != 1 {
		t.Fatalf("Expected 1 message on the pending->ready edge, got %d", len(gateway.sent))
	}

	// ready -> ready (an unrelated edit) must not re-fire.
	svc.OnTransition(ctx, ready, ready)
	if len(gateway.sent) != 1 {
		t.Errorf("Edits to an already-ready encounter must not re-notify, got %d messages", len(gateway.sent))
	}

	// Transitions that do not land on ready never fire.
	svc.OnTransition(ctx, ready, pending)
	svc.OnTransition(ctx, nil, pending)
	if len(gateway.sent) != 1 {
		t.Errorf("Non-ready transitions must not notify, got %d messages", len(gateway.sent))
	}
}

func TestOnTransitionReadyEditRefireWhenConfigured(t *testing.T) {
	gateway := newFakeGateway()
	svc, _ := newLifecycleService(gateway, true)
	ctx := context.Background()

	ready := readyEncounter(models.Contact{ID: 1, Phone: "+15035550100"})
	svc.OnTransition(ctx, ready, ready)

	if len(gateway.sent) != 1 {
		t.Errorf("Re-fire on ready edits is enabled, expected 1 message, got %d", len(gateway.sent))
	}
}

func TestOnTransitionNilPreviousFires(t *testing.T) {
	gateway := newFakeGateway()
	svc, _ := newLifecycleService(gateway, false)

	ready := readyEncounter(models.Contact{ID: 1, Phone: "+15035550100"})
	svc.OnTransition(context.Background(), nil, ready)

	if len(gateway.sent) != 1 {
		t.Errorf("Creation straight into ready should notify, got %d messages", len(gateway.sent))
	}
}

func TestUpdateStatusDrivesLifecycle(t *testing.T) {
	gateway := newFakeGateway()
	svc, store := newLifecycleService(gateway, false)
	ctx := context.Background()

	enc := &models.Encounter{
		Slug:     "enc-lifecycle",
		Status:   models.EncounterStatusPending,
		Contacts: []models.Contact{{ID: 1, Phone: "+15035550100"}},
	}
	if err := store.Create(ctx, enc); err != nil {
		t.Fatal(err)
	}

	next, err := svc.UpdateStatus(ctx, "enc-lifecycle", models.EncounterStatusReady)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if next.Status != models.EncounterStatusReady {
		t.Errorf("Expected ready, got %s", next.Status)
	}
	if len(gateway.sent) != 1 {
		t.Errorf("Expected notification on transition, got %d", len(gateway.sent))
	}

	// A second identical update is a ready edit, no re-notify.
	if _, err := svc.UpdateStatus(ctx, "enc-lifecycle", models.EncounterStatusReady); err != nil {
		t.Fatal(err)
	}
	if len(gateway.sent) != 1 {
		t.Errorf("Ready edit must not re-notify, got %d", len(gateway.sent))
	}
}

func TestAttachContactMerges(t *testing.T) {
	svc, store := newLifecycleService(newFakeGateway(), false)
	ctx := context.Background()

	enc := &models.Encounter{
		Slug:   "enc-merge",
		Status: models.EncounterStatusPending,
		Contacts: []models.Contact{
			{ID: 1, Phone: "+15035550100", SMSOptOut: true},
		},
	}
	if err := store.Create(ctx, enc); err != nil {
		t.Fatal(err)
	}

	merged, err := svc.AttachContact(ctx, "enc-merge", &ContactInput{
		Phone: "+15035550100",
		Name:  "Alex",
	})
	if err != nil {
		t.Fatalf("AttachContact failed: %v", err)
	}
	if merged.ID != 1 {
		t.Errorf("Expected merge onto the existing contact, got new ID %d", merged.ID)
	}
	if merged.Name != "Alex" {
		t.Errorf("Expected name filled in, got %q", merged.Name)
	}
	if !merged.SMSOptOut {
		t.Error("Merging must never reset the opt-out latch")
	}

	// A different phone creates a fresh contact.
	fresh, err := svc.AttachContact(ctx, "enc-merge", &ContactInput{Phone: "+15035550199"})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ID == 1 {
		t.Error("Expected a new contact for an unknown phone")
	}

	if _, err := svc.AttachContact(ctx, "enc-merge", &ContactInput{}); err == nil {
		t.Error("Expected validation error for an empty contact")
	}

	if _, err := svc.AttachContact(ctx, "no-such-slug", &ContactInput{Phone: "+15035550100"}); err == nil {
		t.Error("Expected not found for an unknown encounter")
	}
}
