package billing

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventStatus string

const (
	WebhookEventReceived  WebhookEventStatus = "received"
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// WebhookEvent logs one gateway delivery. Several rows may exist per payment.
type WebhookEvent struct {
	ID          string             `gorm:"type:uuid;primaryKey" json:"id"`
	Gateway     Method             `gorm:"type:varchar(20);not null;index" json:"gateway"`
	EventType   string             `gorm:"type:varchar(80)" json:"event_type"`
	ExternalID  string             `gorm:"type:varchar(128);index" json:"external_id"`
	Payload     datatypes.JSON     `gorm:"type:jsonb" json:"payload"`
	Status      WebhookEventStatus `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	Error       *string            `json:"error,omitempty"`
	ReceivedAt  time.Time          `gorm:"not null" json:"received_at"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
}
