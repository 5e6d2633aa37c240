package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"townsim/internal/adapter/repo/gorm/model"
)

type SeenSceneRepo struct {
	db *gorm.DB
}

func NewSeenSceneRepo(db *gorm.DB) *SeenSceneRepo {
	return &SeenSceneRepo{db: db}
}

func (r *SeenSceneRepo) MarkSeen(ctx context.Context, sessionID, sceneID string, at time.Time) error {
	db := getDBFromCtx(ctx, r.db)

	m := model.SeenScene{SessionID: sessionID, SceneID: sceneID, SeenAt: at.UTC()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

func (r *SeenSceneRepo) ListSeen(ctx context.Context, sessionID string) ([]string, error) {
	db := getDBFromCtx(ctx, r.db)

	var ids []string
	err := db.WithContext(ctx).Model(&model.SeenScene{}).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Pluck("scene_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list seen: %w", err)
	}
	return ids, nil
}
