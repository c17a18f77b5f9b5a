package models

import "time"

type Priority string
type Status string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	StatusPending Status = "pending"
	StatusWorking Status = "working"
	StatusFixed   Status = "fixed"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusWorking || s == StatusFixed
}

type Issue struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProjectID uint    `gorm:"not null;index" json:"project_id"`
	Project   Project `json:"project,omitempty"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Assignees  []Account  `gorm:"many2many:issue_assignees" json:"assignees"`
	AssignerID *uint      `json:"assigner_id"`
	Assigner   *Account   `gorm:"foreignKey:AssignerID" json:"assigner,omitempty"`
	AssignedAt *time.Time `json:"assigned_at"`

	Priority Priority `gorm:"type:varchar(16);not null;default:medium" json:"priority"`
	Status   Status   `gorm:"type:varchar(16);not null;default:pending" json:"status"`

	AttachmentFile string    `gorm:"size:255" json:"attachment_file"`
	Comments       []Comment `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
