package models

import "time"

// UploadRecord stores metadata about files pushed to the CDN.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;index" json:"owner_id"`
	Purpose   string    `gorm:"size:32" json:"purpose"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model migrated at startup.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Class{},
		&ClassMember{},
		&Module{},
		&Chapter{},
		&Submission{},
		&Announcement{},
		&ChatRoom{},
		&ChatMessage{},
		&UploadRecord{},
	}
}
