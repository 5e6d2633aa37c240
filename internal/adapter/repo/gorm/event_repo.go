package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"townsim/internal/adapter/repo/gorm/model"
	"townsim/internal/app/ports"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Append(ctx context.Context, sessionID string, events []ports.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)

	rows := make([]model.DomainEvent, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		rows = append(rows, model.DomainEvent{
			SessionID:  sessionID,
			Kind:       ev.Kind,
			OccurredAt: ev.OccurredAt.UTC(),
			Payload:    payload,
		})
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

func (r *EventRepo) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]ports.EventRecord, error) {
	db := getDBFromCtx(ctx, r.db)

	q := db.WithContext(ctx).Model(&model.DomainEvent{}).
		Where("session_id = ?", sessionID).
		Order("id ASC")

	var rows []model.DomainEvent
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	out := make([]ports.EventRecord, 0, len(rows))
	for _, m := range rows {
		var payload map[string]any
		if len(m.Payload) > 0 {
			if err := json.Unmarshal(m.Payload, &payload); err != nil {
				return nil, fmt.Errorf("unmarshal event payload: %w", err)
			}
		}
		out = append(out, ports.EventRecord{
			Kind:       m.Kind,
			OccurredAt: m.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
