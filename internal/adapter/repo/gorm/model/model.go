package model

import "time"

type Session struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Seed      int64     `gorm:"column:seed"`
	ClockAt   time.Time `gorm:"column:clock_at"`
	StateBlob []byte    `gorm:"column:state_blob"`
	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Session) TableName() string { return "sessions" }

type SeenScene struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id;uniqueIndex:idx_seen_session_scene"`
	SceneID   string    `gorm:"column:scene_id;uniqueIndex:idx_seen_session_scene"`
	SeenAt    time.Time `gorm:"column:seen_at"`
}

func (SeenScene) TableName() string { return "seen_scenes" }

type DomainEvent struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID  string    `gorm:"column:session_id;index"`
	Kind       string    `gorm:"column:kind"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
	Payload    []byte    `gorm:"column:payload;type:jsonb"`
}

func (DomainEvent) TableName() string { return "domain_events" }
