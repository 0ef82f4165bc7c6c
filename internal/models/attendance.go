package models

import "time"

// Attendance statuses are an open string vocabulary; "present" is the only
// value counted towards attendance rate and "Confirmed" is the terminal
// administratively-verified state.
const (
	AttendanceStatusPresent   = "present"
	AttendanceStatusAbsent    = "absent"
	AttendanceStatusLate      = "late"
	AttendanceStatusConfirmed = "Confirmed"
)

// Attendance represents a single attendance row.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Date      time.Time `db:"date" json:"date"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter defines query filters for listing attendance.
type AttendanceFilter struct {
	StudentID string
	ClassID   string
	Date      *time.Time
	Status    string
	Page      int
	PageSize  int
}

// AttendanceBatchResult reports the outcome of a batch log operation.
type AttendanceBatchResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// AttendanceConfirmResult reports the outcome of batch confirmation.
type AttendanceConfirmResult struct {
	Confirmed        int      `json:"confirmed"`
	AlreadyConfirmed int      `json:"already_confirmed"`
	NotFoundIDs      []string `json:"not_found_ids,omitempty"`
}
