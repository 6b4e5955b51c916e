package models

import "time"

const (
	RatingParentToTutor = "parent_to_tutor"
	RatingTutorToParent = "tutor_to_parent"
)

type Rating struct {
	ID        int64     `json:"id"`
	ParentID  int64     `json:"parent_id"`
	TutorID   int64     `json:"tutor_id"`
	Direction string    `json:"direction"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
