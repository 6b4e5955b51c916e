package models

import "time"

const (
	RelationshipStatusActive   = "active"
	RelationshipStatusInactive = "inactive"
)

// Relationship is a standing parent-tutor association scoped to a subject,
// independent of any scheduled session.
type Relationship struct {
	ID        int64     `json:"id"`
	ParentID  int64     `json:"parent_id"`
	TutorID   int64     `json:"tutor_id"`
	SubjectID int64     `json:"subject_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
