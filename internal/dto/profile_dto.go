package dto

import "time"

// ProfileResponse is the public profile of a user.
type ProfileResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	BirthDate  *time.Time `json:"birth_date"`
	Role       string     `json:"role"`
	PhotoURL   string     `json:"photo_url"`
	GradeLevel string     `json:"grade_level"`
}
