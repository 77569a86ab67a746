package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
  gateway_events = raw log of every webhook/callback delivery.
  - many rows per transaction (the provider retries)
  - keeps raw payload + signature for debug / replay
*/

const (
	GatewayEventStatusReceived  = "received"
	GatewayEventStatusProcessed = "processed"
	GatewayEventStatusIgnored   = "ignored"
	GatewayEventStatusFailed    = "failed"
)

type GatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventTransactionID *uuid.UUID `gorm:"column:gateway_event_transaction_id;type:uuid;index:idx_gateway_events_transaction" json:"gateway_event_transaction_id,omitempty"`

	GatewayEventProvider  string  `gorm:"column:gateway_event_provider;type:varchar(16);not null" json:"gateway_event_provider"`
	GatewayEventType      *string `gorm:"column:gateway_event_type" json:"gateway_event_type,omitempty"`
	GatewayEventReference *string `gorm:"column:gateway_event_reference;index:idx_gateway_events_reference" json:"gateway_event_reference,omitempty"`

	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"gateway_event_signature,omitempty"`

	GatewayEventStatus string  `gorm:"column:gateway_event_status;type:varchar(16);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string `gorm:"column:gateway_event_error" json:"gateway_event_error,omitempty"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null;default:now()" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
