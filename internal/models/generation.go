package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Generation is a persisted record of one successful pipeline run.
type Generation struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Task         string         `gorm:"type:text;not null;index" json:"task"`
	ClientKey    string         `gorm:"type:text" json:"-"`
	ProviderMode string         `gorm:"type:text" json:"provider_mode"`
	Request      datatypes.JSON `gorm:"type:jsonb" json:"request"`
	Response     datatypes.JSON `gorm:"type:jsonb" json:"response"`
	DocumentID   *uuid.UUID     `gorm:"type:uuid" json:"document_id,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Generation) TableName() string {
	return "generations"
}
