package models

import (
	"strings"
	"time"
)

// participationRatings maps participation statuses to their 1-5 scale.
var participationRatings = map[string]int{
	"excellent": 5,
	"good":      4,
	"average":   3,
	"poor":      2,
	"none":      1,
}

// RatingForStatus resolves a participation status to its numeric rating.
// Lookup is case-insensitive; unrecognised statuses return false.
func RatingForStatus(status string) (int, bool) {
	rating, ok := participationRatings[strings.ToLower(strings.TrimSpace(status))]
	return rating, ok
}

// Participation captures a logged classroom or event participation entry.
type Participation struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	Date         time.Time `db:"date" json:"date"`
	Subject      string    `db:"subject" json:"subject"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Description  string    `db:"description" json:"description"`
	Status       string    `db:"status" json:"status"`
	Remarks      string    `db:"remarks" json:"remarks"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ParticipationFilter scopes participation listing queries.
type ParticipationFilter struct {
	StudentID string
	ClassID   string
	Date      *time.Time
	Page      int
	PageSize  int
}

// ParticipationSummary reports the average rating over recognised statuses.
type ParticipationSummary struct {
	StudentID     string  `json:"student_id"`
	Entries       int     `json:"entries"`
	Rated         int     `json:"rated"`
	AverageRating float64 `json:"average_rating"`
}
