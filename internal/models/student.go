package models

import "time"

// StudentIDPrefix is the prefix of enrollment-issued student identifiers.
const StudentIDPrefix = "RW-"

// Student represents a learner registered in the institution.
// IDs follow the RW-NNN sequence issued at enrollment time.
type Student struct {
	ID             string     `db:"id" json:"id"`
	FullName       string     `db:"full_name" json:"full_name"`
	Gender         string     `db:"gender" json:"gender"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	EnrollmentDate time.Time  `db:"enrollment_date" json:"enrollment_date"`
	ClassID        string     `db:"class_id" json:"class_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Guardian is a parent or guardian contact attached to a student.
// Rows are removed together with the owning student.
type Guardian struct {
	ID           string `db:"id" json:"id"`
	StudentID    string `db:"student_id" json:"student_id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	Relationship string `db:"relationship" json:"relationship"`
	Contact      string `db:"contact" json:"contact"`
}

// EmergencyContact mirrors Guardian for emergency reachability.
type EmergencyContact struct {
	ID           string `db:"id" json:"id"`
	StudentID    string `db:"student_id" json:"student_id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	Relationship string `db:"relationship" json:"relationship"`
	Contact      string `db:"contact" json:"contact"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentSummary is the roster view returned by list endpoints.
type StudentSummary struct {
	ID        string  `db:"id" json:"id"`
	FullName  string  `db:"full_name" json:"full_name"`
	Gender    string  `db:"gender" json:"gender"`
	ClassID   string  `db:"class_id" json:"class_id"`
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}

// StudentDetail contains the student row with its contact records.
type StudentDetail struct {
	Student
	ClassName         *string            `db:"class_name" json:"class_name,omitempty"`
	Guardians         []Guardian         `json:"guardians"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
}
