package dto

import "time"

// AnnouncementCreateRequest is posted by a teacher to one of their classes.
type AnnouncementCreateRequest struct {
	ClassID  string `json:"class_id" validate:"required,max=64"`
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Content  string `json:"content" validate:"required,min=3"`
	FileURL  string `json:"file_url" validate:"omitempty,url"`
	FileName string `json:"file_name" validate:"omitempty,max=255"`
}

// AnnouncementResponse is an announcement with its sanitized excerpt.
type AnnouncementResponse struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	ClassName string    `json:"class_name"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	FileURL   string    `json:"file_url,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
