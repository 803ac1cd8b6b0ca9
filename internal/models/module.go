package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// ModuleTypeAssignment marks modules holding an assignment document.
	ModuleTypeAssignment = "assignment"
	// ModuleTypeMaterial marks reading material.
	ModuleTypeMaterial = "material"
)

// Module is a class content item. Assignment modules keep the raw document written by
// teacher tooling in Payload; it is decoded and validated before use.
type Module struct {
	ID        string            `gorm:"primaryKey;size:64" json:"id"`
	ClassID   string            `gorm:"size:64;index;not null" json:"class_id"`
	Type      string            `gorm:"size:32;index" json:"type"`
	Status    string            `gorm:"size:32" json:"status"`
	Title     string            `gorm:"size:255" json:"title"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Chapter is the older nested layout: subchapters embed their assignments as JSON.
type Chapter struct {
	ID          string         `gorm:"primaryKey;size:64" json:"id"`
	ClassID     string         `gorm:"size:64;index;not null" json:"class_id"`
	Title       string         `gorm:"size:255" json:"title"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	Subchapters datatypes.JSON `gorm:"type:json" json:"subchapters"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
