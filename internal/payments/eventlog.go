package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"marketplace-payments/internal/domain/billing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventLog records webhook deliveries in webhook_events and, when an archive
// is configured, copies the raw payload there. Both are best effort: a
// failure is logged and never changes how the delivery is answered.
type EventLog struct {
	db      *gorm.DB
	archive Archiver
	now     func() time.Time
}

func NewEventLog(db *gorm.DB, archive Archiver) *EventLog {
	return &EventLog{db: db, archive: archive, now: time.Now}
}

// Received stores the delivery and returns its event id.
func (l *EventLog) Received(ctx context.Context, method billing.Method, eventType, externalID string, payload []byte) string {
	ev := billing.WebhookEvent{
		ID:         uuid.NewString(),
		Gateway:    method,
		EventType:  eventType,
		ExternalID: externalID,
		Status:     billing.WebhookEventReceived,
		ReceivedAt: l.now().UTC(),
	}
	if json.Valid(payload) {
		ev.Payload = datatypes.JSON(payload)
	}

	if err := l.db.WithContext(ctx).Create(&ev).Error; err != nil {
		log.Printf("layer=service component=eventlog method=Received gateway=%s external_id=%s err=%v", method, externalID, err)
	}

	if l.archive != nil {
		key := ArchiveKey(method, ev.ReceivedAt, ev.ID)
		if err := l.archive.Put(ctx, key, payload); err != nil {
			log.Printf("layer=service component=eventlog method=Received gateway=%s key=%s err=%v", method, key, err)
		}
	}

	return ev.ID
}

// Finished stores the outcome of processing the delivery.
func (l *EventLog) Finished(ctx context.Context, eventID string, status billing.WebhookEventStatus, procErr error) {
	if eventID == "" {
		return
	}
	now := l.now().UTC()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": now,
	}
	if procErr != nil {
		msg := procErr.Error()
		updates["error"] = msg
	}

	if err := l.db.WithContext(ctx).Model(&billing.WebhookEvent{}).
		Where("id = ?", eventID).
		Updates(updates).Error; err != nil {
		log.Printf("layer=service component=eventlog method=Finished event_id=%s err=%v", eventID, err)
	}
}

func ArchiveKey(method billing.Method, at time.Time, eventID string) string {
	return fmt.Sprintf("%s/%s/%s.json", method, at.UTC().Format("2006/01/02"), eventID)
}
