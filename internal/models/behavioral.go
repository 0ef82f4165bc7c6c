package models

import "time"

// BehavioralType constrains the nature of a conduct record.
type BehavioralType string

const (
	BehavioralPositive BehavioralType = "positive"
	BehavioralNegative BehavioralType = "negative"
)

// Valid returns true when the type is a supported value.
func (t BehavioralType) Valid() bool {
	return t == BehavioralPositive || t == BehavioralNegative
}

// BehavioralRecord is a logged conduct incident for a student.
type BehavioralRecord struct {
	ID          string         `db:"id" json:"id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	Date        time.Time      `db:"date" json:"date"`
	Type        BehavioralType `db:"record_type" json:"type"`
	Category    string         `db:"category" json:"category"`
	Description string         `db:"description" json:"description"`
	Severity    string         `db:"severity" json:"severity"`
	ActionTaken string         `db:"action_taken" json:"action_taken"`
	ReportedBy  string         `db:"reported_by" json:"reported_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// BehavioralFilter allows listing conduct records.
type BehavioralFilter struct {
	StudentID string
	Type      *BehavioralType
	Category  string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
