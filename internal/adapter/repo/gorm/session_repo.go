package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"townsim/internal/adapter/repo/gorm/model"
	"townsim/internal/app/ports"
)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) GetByID(ctx context.Context, sessionID string) (ports.SessionRecord, error) {
	db := getDBFromCtx(ctx, r.db)

	var m model.Session
	err := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.SessionRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return ports.SessionRecord{
		SessionID: m.SessionID,
		Seed:      m.Seed,
		ClockAt:   m.ClockAt,
		StateBlob: m.StateBlob,
		Version:   m.Version,
	}, nil
}

func (r *SessionRepo) SaveWithVersion(ctx context.Context, rec ports.SessionRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)

	m := model.Session{
		SessionID: rec.SessionID,
		Seed:      rec.Seed,
		ClockAt:   rec.ClockAt,
		StateBlob: rec.StateBlob,
		Version:   rec.Version,
		UpdatedAt: time.Now().UTC(),
	}

	if expectedVersion == 0 {
		err := db.WithContext(ctx).Create(&m).Error
		if err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}

	res := db.WithContext(ctx).Model(&model.Session{}).
		Where("session_id = ? AND version = ?", rec.SessionID, expectedVersion).
		Updates(map[string]any{
			"seed":       m.Seed,
			"clock_at":   m.ClockAt,
			"state_blob": m.StateBlob,
			"version":    m.Version,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
