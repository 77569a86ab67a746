package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "kampusku_backend/internals/features/finance/payments/model"
)

type GatewayEventRepository struct {
	DB *gorm.DB
}

func NewGatewayEventRepository(db *gorm.DB) *GatewayEventRepository {
	return &GatewayEventRepository{DB: db}
}

// Log records one delivery. Failures here never block reconciliation; the
// caller logs and moves on.
func (r *GatewayEventRepository) Log(ctx context.Context, provider, eventType, reference string, payload []byte, signature string, txID *uuid.UUID) (*model.GatewayEvent, error) {
	ev := &model.GatewayEvent{
		GatewayEventProvider:      provider,
		GatewayEventTransactionID: txID,
		GatewayEventStatus:        model.GatewayEventStatusReceived,
		GatewayEventPayload:       datatypes.JSON(payload),
		GatewayEventReceivedAt:    time.Now(),
	}
	if eventType != "" {
		ev.GatewayEventType = &eventType
	}
	if reference != "" {
		ev.GatewayEventReference = &reference
	}
	if signature != "" {
		ev.GatewayEventSignature = &signature
	}
	if err := r.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *GatewayEventRepository) MarkStatus(ctx context.Context, id uuid.UUID, status string, errMsg string) error {
	updates := map[string]any{
		"gateway_event_status":       status,
		"gateway_event_processed_at": time.Now(),
	}
	if errMsg != "" {
		updates["gateway_event_error"] = errMsg
	}
	return r.DB.WithContext(ctx).Model(&model.GatewayEvent{}).
		Where("gateway_event_id = ?", id).
		Updates(updates).Error
}

func (r *GatewayEventRepository) ListByReference(ctx context.Context, reference string) ([]model.GatewayEvent, error) {
	var rows []model.GatewayEvent
	err := r.DB.WithContext(ctx).
		Where("gateway_event_reference = ?", reference).
		Order("gateway_event_received_at ASC").
		Find(&rows).Error
	return rows, err
}
