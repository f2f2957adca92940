package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for catalog and stock records
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
