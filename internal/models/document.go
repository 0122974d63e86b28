package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded resume file kept on local storage.
type Document struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	ContentType      string    `gorm:"type:text" json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	PageCount        int       `json:"page_count"`
	FilePath         string    `gorm:"type:text" json:"-"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
