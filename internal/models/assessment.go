package models

import "time"

// Assessment records a graded piece of work for a student.
// Invariant: Score never exceeds MaxScore.
type Assessment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	Subject        string    `db:"subject" json:"subject"`
	AssessmentType string    `db:"assessment_type" json:"assessment_type"`
	Name           string    `db:"name" json:"name"`
	Score          float64   `db:"score" json:"score"`
	MaxScore       float64   `db:"max_score" json:"max_score"`
	Date           time.Time `db:"date" json:"date"`
	Term           string    `db:"term" json:"term"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Percentage returns the score as a percentage of the maximum, 0 when the
// maximum is zero.
func (a Assessment) Percentage() float64 {
	if a.MaxScore <= 0 {
		return 0
	}
	return a.Score / a.MaxScore * 100
}

// AssessmentFilter scopes assessment listing and statistics queries.
type AssessmentFilter struct {
	StudentID string
	Subject   string
	Term      string
	Page      int
	PageSize  int
}

// SubjectStatistics aggregates assessment results per subject.
type SubjectStatistics struct {
	Subject           string  `db:"subject" json:"subject"`
	Count             int     `db:"count" json:"count"`
	AveragePercentage float64 `db:"average_percentage" json:"average_percentage"`
}

// AssessmentStatistics is the aggregate returned by the statistics endpoint.
type AssessmentStatistics struct {
	Count             int                 `json:"count"`
	AveragePercentage float64             `json:"average_percentage"`
	MinPercentage     float64             `json:"min_percentage"`
	MaxPercentage     float64             `json:"max_percentage"`
	Subjects          []SubjectStatistics `json:"subjects"`
}
