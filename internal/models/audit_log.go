package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActorID uint    `json:"actor_id"`
	Actor   Account `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "account", "project", "issue"
	EntityID uint   `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "assign", "status_change" etc.
	Details  string `gorm:"type:text" json:"details"`
}
