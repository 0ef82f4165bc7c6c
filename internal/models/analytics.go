package models

// StudentAverage is a per-student mean assessment percentage row.
type StudentAverage struct {
	StudentID         string  `db:"student_id" json:"student_id"`
	FullName          string  `db:"full_name" json:"full_name"`
	AveragePercentage float64 `db:"average_percentage" json:"average_percentage"`
}

// StudentAttendanceCount carries per-student attendance tallies.
type StudentAttendanceCount struct {
	StudentID string `db:"student_id" json:"student_id"`
	Present   int    `db:"present" json:"present"`
	Total     int    `db:"total" json:"total"`
}

// Rate returns the attendance percentage, 0 when no rows exist.
func (c StudentAttendanceCount) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Present) / float64(c.Total) * 100
}

// StudentMisconductCount carries per-student negative conduct tallies.
type StudentMisconductCount struct {
	StudentID string `db:"student_id" json:"student_id"`
	Count     int    `db:"count" json:"count"`
}

// SubjectAggregate is a per-subject assessment aggregate row.
type SubjectAggregate struct {
	Subject           string  `db:"subject" json:"subject"`
	Students          int     `db:"students" json:"students"`
	Assessments       int     `db:"assessments" json:"assessments"`
	AveragePercentage float64 `db:"average_percentage" json:"average_percentage"`
}
