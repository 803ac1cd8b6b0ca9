package dto

import "time"

// Dashboard section names reported in Failures.
const (
	SectionClasses       = "classes"
	SectionAnnouncements = "announcements"
	SectionAssignments   = "assignments"
	SectionAnalysis      = "analysis"
)

// DashboardQuery selects the calendar month and reminder day.
type DashboardQuery struct {
	Month string `query:"month" validate:"omitempty,datetime=2006-01"`
	Date  string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ClassChip is a short class label on the dashboard header.
type ClassChip struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReminderResponse is an on-going assignment due on the selected day.
type ReminderResponse struct {
	AssignmentID string     `json:"assignment_id"`
	Title        string     `json:"title"`
	ClassName    string     `json:"class_name"`
	Deadline     *time.Time `json:"deadline"`
	DueTime      string     `json:"due_time"`
}

// CalendarResponse carries marked days of one month and the selected day's reminders.
type CalendarResponse struct {
	Month        string             `json:"month"`
	Timezone     string             `json:"timezone"`
	MarkedDays   []string           `json:"marked_days"`
	SelectedDate string             `json:"selected_date"`
	Reminders    []ReminderResponse `json:"reminders"`
}

// StudentDashboardResponse aggregates every dashboard section. Failed sections are
// empty and listed in Failures.
type StudentDashboardResponse struct {
	Classes       []ClassChip             `json:"classes"`
	Announcements []AnnouncementResponse  `json:"announcements"`
	Assignments   AssignmentBoardResponse `json:"assignments"`
	Calendar      CalendarResponse        `json:"calendar"`
	Failures      []string                `json:"failures"`
	GeneratedAt   time.Time               `json:"generated_at"`
}
