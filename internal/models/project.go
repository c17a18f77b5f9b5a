package models

import "time"

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	RepoURL     string `gorm:"size:512" json:"repo_url"`
	ImageFile   string `gorm:"size:255" json:"image_file"` // stored filename under the upload dir

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
