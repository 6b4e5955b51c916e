package models

import "time"

const (
	SessionStatusPending     = "pending"
	SessionStatusUpcoming    = "upcoming"
	SessionStatusCompleted   = "completed"
	SessionStatusCancelled   = "cancelled"
	SessionStatusRescheduled = "rescheduled"
)

type Session struct {
	ID              int64     `json:"id"`
	ParentID        int64     `json:"parent_id"`
	TutorID         int64     `json:"tutor_id"`
	ChildID         int64     `json:"child_id"`
	SubjectID       int64     `json:"subject_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Location        *string   `json:"location"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
