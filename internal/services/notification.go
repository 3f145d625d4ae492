package services

import (
	"context"
	"fmt"

	"github.com/nkoz18/photography-blog-sub000/internal/logger"
	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"github.com/nkoz18/photography-blog-sub000/pkg/sms"
)

// Notifier sends one SMS per eligible contact when an encounter's photos
// become ready.
type Notifier struct {
	gateway  sms.Gateway
	contacts ContactStore
	baseURL  string
}

func NewNotifier(gateway sms.Gateway, contacts ContactStore, baseURL string) *Notifier {
	return &Notifier{
		gateway:  gateway,
		contacts: contacts,
		baseURL:  baseURL,
	}
}

// NotifyReady messages every contact with a phone number that has not
// opted out. Per-contact failures are logged and skipped so one bad
// number never blocks the rest of the batch. A provider-reported opt-out
// latches the contact's SMSOptOut flag before the batch continues.
func (n *Notifier) NotifyReady(ctx context.Context, enc *models.Encounter) {
	log := logger.GetLogger("service.notifier")

	message := n.message(enc)
	for i := range enc.Contacts {
		contact := &enc.Contacts[i]
		if contact.Phone == "" || contact.SMSOptOut {
			continue
		}

		result, err := n.gateway.Send(ctx, contact.Phone, message)
		if err != nil {
			log.Warnw("SMS send failed", "encounter", enc.Slug, "contact_id", contact.ID, "error", err)
			continue
		}

		if result.OptedOut {
			contact.SMSOptOut = true
			if err := n.contacts.SetSMSOptOut(ctx, contact.ID); err != nil {
				log.Warnw("Failed to persist opt-out", "contact_id", contact.ID, "error", err)
			}
			continue
		}

		log.Infow("Photo-ready SMS sent", "encounter", enc.Slug, "contact_id", contact.ID, "message_id", result.MessageID)
	}
}

func (n *Notifier) message(enc *models.Encounter) string {
	link := fmt.Sprintf("%s/encounter/%s", n.baseURL, enc.Slug)
	if enc.PlaceName != nil && *enc.PlaceName != "" {
		return fmt.Sprintf("Good news! The photos from our encounter at %s are ready. Check them out: %s", *enc.PlaceName, link)
	}
	return fmt.Sprintf("Good news! The photos from our encounter are ready. Check them out: %s", link)
}
