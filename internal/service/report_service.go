package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
	"github.com/urugendo/student-performance-api/pkg/export"
)

// ReportFormat selects the rendering of a student report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type reportStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type reportAssessmentRepository interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error)
}

// Report is a rendered student performance export.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders per-student assessment reports as CSV or PDF.
type ReportService struct {
	students    reportStudentRepository
	assessments reportAssessmentRepository
	analytics   analyticsRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(students reportStudentRepository, assessments reportAssessmentRepository, analytics analyticsRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:    students,
		assessments: assessments,
		analytics:   analytics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// StudentReport builds the assessment history of one student and renders it
// in the requested format.
func (s *ReportService) StudentReport(ctx context.Context, studentID string, format ReportFormat) (*Report, error) {
	format = ReportFormat(strings.ToLower(string(format)))
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	assessments, _, err := s.assessments.List(ctx, models.AssessmentFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessments")
	}
	average, err := s.analytics.StudentAverage(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute student average")
	}
	attendance, err := s.analytics.StudentAttendanceCount(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Subject", "Type", "Name", "Score", "Max Score", "Percentage", "Term"},
	}
	for _, a := range assessments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":       a.Date.Format("2006-01-02"),
			"Subject":    a.Subject,
			"Type":       a.AssessmentType,
			"Name":       a.Name,
			"Score":      strconv.FormatFloat(a.Score, 'f', 1, 64),
			"Max Score":  strconv.FormatFloat(a.MaxScore, 'f', 1, 64),
			"Percentage": strconv.FormatFloat(a.Percentage(), 'f', 1, 64),
			"Term":       a.Term,
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Date":       "Summary",
		"Subject":    fmt.Sprintf("average %.1f%%", average),
		"Type":       fmt.Sprintf("attendance %.1f%%", attendance.Rate()),
		"Name":       fmt.Sprintf("%d assessments", len(assessments)),
		"Score":      "",
		"Max Score":  "",
		"Percentage": "",
		"Term":       "",
	})

	title := fmt.Sprintf("Performance Report - %s (%s)", student.FullName, student.ID)
	switch format {
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{
			FileName:    fmt.Sprintf("report-%s.pdf", student.ID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{
			FileName:    fmt.Sprintf("report-%s.csv", student.ID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}
