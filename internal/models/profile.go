package models

import "time"

type ParentProfile struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	FullName      *string   `json:"full_name"`
	ContactNumber *string   `json:"contact_number"`
	Location      *string   `json:"location"`
	Bio           *string   `json:"bio"`
	AvatarURL     *string   `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TutorProfile struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	FullName      *string   `json:"full_name"`
	ContactNumber *string   `json:"contact_number"`
	Location      *string   `json:"location"`
	Bio           *string   `json:"bio"`
	AvatarURL     *string   `json:"avatar_url"`
	CourseOfStudy *string   `json:"course_of_study"`
	HourlyRate    *float64  `json:"hourly_rate"`
	Rating        *float64  `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Child struct {
	ID         int64     `json:"id"`
	ParentID   int64     `json:"parent_id"`
	FullName   string    `json:"full_name"`
	GradeLevel *string   `json:"grade_level"`
	Age        *int      `json:"age"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TutorListing is the directory view of a tutor: profile fields joined with
// the account's verification state.
type TutorListing struct {
	TutorProfile
	Verified     bool `json:"verified"`
	TotalRatings int  `json:"total_ratings"`
}

type TutorWithScore struct {
	TutorListing
	MatchScore int `json:"match_score"`
}
