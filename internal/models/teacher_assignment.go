package models

import "time"

// TeacherClassSubject links a teacher to a class for one subject.
type TeacherClassSubject struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Subject   string    `db:"subject" json:"subject"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherClassSubjectDetail includes joined teacher and class names.
type TeacherClassSubjectDetail struct {
	TeacherClassSubject
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
}
