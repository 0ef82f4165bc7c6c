package dto

// DashboardSummary is the school-wide aggregate payload.
type DashboardSummary struct {
	TotalStudents  int     `json:"total_students"`
	AverageScore   float64 `json:"average_score"`
	AttendanceRate float64 `json:"attendance_rate"`
	HighPerformers int     `json:"high_performers"`
}

// StudentPerformance is the per-student aggregate payload.
type StudentPerformance struct {
	StudentID       string  `json:"student_id"`
	AverageScore    float64 `json:"average_score"`
	AttendanceRate  float64 `json:"attendance_rate"`
	IsHighPerformer bool    `json:"is_high_performer"`
}

// TopPerformer is one ranked entry of the top performers listing.
type TopPerformer struct {
	StudentID         string  `json:"student_id"`
	FullName          string  `json:"full_name"`
	AveragePercentage float64 `json:"average_percentage"`
	Rank              int     `json:"rank"`
}

// UnderperformanceAlert flags a student needing intervention together with
// the reasons that triggered the alert.
type UnderperformanceAlert struct {
	StudentID       string   `json:"student_id"`
	FullName        string   `json:"full_name"`
	AverageScore    float64  `json:"average_score"`
	AttendanceRate  float64  `json:"attendance_rate"`
	MisconductCount int      `json:"misconduct_count"`
	Reasons         []string `json:"reasons"`
}

// SubjectSummary aggregates assessment outcomes for one subject.
type SubjectSummary struct {
	Subject           string  `json:"subject"`
	Students          int     `json:"students"`
	Assessments       int     `json:"assessments"`
	AveragePercentage float64 `json:"average_percentage"`
}
