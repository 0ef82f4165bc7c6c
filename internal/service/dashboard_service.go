package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/dto"
	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
)

const (
	dashboardSummaryCacheKey  = "dashboard:summary"
	dashboardSubjectsCacheKey = "dashboard:subjects"
	dashboardCachePattern     = "dashboard:*"
)

type analyticsRepository interface {
	CountStudents(ctx context.Context) (int, error)
	AverageScore(ctx context.Context) (float64, error)
	AttendanceCounts(ctx context.Context) (present, total int, err error)
	HighPerformerCount(ctx context.Context, threshold float64) (int, error)
	StudentAverages(ctx context.Context) ([]models.StudentAverage, error)
	StudentAverage(ctx context.Context, studentID string) (float64, error)
	StudentAttendanceCount(ctx context.Context, studentID string) (*models.StudentAttendanceCount, error)
	StudentAttendanceCounts(ctx context.Context) ([]models.StudentAttendanceCount, error)
	StudentMisconductCounts(ctx context.Context) ([]models.StudentMisconductCount, error)
	SubjectAggregates(ctx context.Context) ([]models.SubjectAggregate, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardConfig tunes the aggregation thresholds.
type DashboardConfig struct {
	CacheTTL               time.Duration
	HighPerformerThreshold float64
	UnderperformThreshold  float64
	LowAttendanceThreshold float64
	TopPerformersLimit     int
}

// DashboardService computes school-wide and per-student aggregates.
type DashboardService struct {
	analytics analyticsRepository
	cache     dashboardCache
	cfg       DashboardConfig
	logger    *zap.Logger
}

// NewDashboardService constructs the dashboard service. cache may be nil
// when Redis is not configured, in which case every read recomputes.
func NewDashboardService(analytics analyticsRepository, cache dashboardCache, cfg DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HighPerformerThreshold <= 0 {
		cfg.HighPerformerThreshold = 80
	}
	if cfg.UnderperformThreshold <= 0 {
		cfg.UnderperformThreshold = 50
	}
	if cfg.LowAttendanceThreshold <= 0 {
		cfg.LowAttendanceThreshold = 50
	}
	if cfg.TopPerformersLimit <= 0 {
		cfg.TopPerformersLimit = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{analytics: analytics, cache: cache, cfg: cfg, logger: logger}
}

// Summary returns school-wide totals. The second return value reports
// whether the payload was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	if s.cache != nil {
		var cached dto.DashboardSummary
		if err := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached); err == nil {
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard summary cache read failed", zap.Error(err))
		}
	}

	summary := &dto.DashboardSummary{}
	var err error
	if summary.TotalStudents, err = s.analytics.CountStudents(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if summary.AverageScore, err = s.analytics.AverageScore(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute average score")
	}
	present, total, err := s.analytics.AttendanceCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance rate")
	}
	if total > 0 {
		summary.AttendanceRate = float64(present) / float64(total) * 100
	}
	if summary.HighPerformers, err = s.analytics.HighPerformerCount(ctx, s.cfg.HighPerformerThreshold); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count high performers")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard summary cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

// StudentPerformance returns the aggregate view for one student.
func (s *DashboardService) StudentPerformance(ctx context.Context, studentID string) (*dto.StudentPerformance, error) {
	average, err := s.analytics.StudentAverage(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute student average")
	}
	attendance, err := s.analytics.StudentAttendanceCount(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute student attendance")
	}

	return &dto.StudentPerformance{
		StudentID:       studentID,
		AverageScore:    average,
		AttendanceRate:  attendance.Rate(),
		IsHighPerformer: average >= s.cfg.HighPerformerThreshold,
	}, nil
}

// TopPerformers returns the highest-averaging students, ranked from 1.
func (s *DashboardService) TopPerformers(ctx context.Context, limit int) ([]dto.TopPerformer, error) {
	if limit <= 0 {
		limit = s.cfg.TopPerformersLimit
	}
	averages, err := s.analytics.StudentAverages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank students")
	}
	if len(averages) > limit {
		averages = averages[:limit]
	}

	performers := make([]dto.TopPerformer, 0, len(averages))
	for i, avg := range averages {
		performers = append(performers, dto.TopPerformer{
			StudentID:         avg.StudentID,
			FullName:          avg.FullName,
			AveragePercentage: avg.AveragePercentage,
			Rank:              i + 1,
		})
	}
	return performers, nil
}

// Alerts flags assessed students whose average falls below the threshold,
// whose attendance rate is low, or who have negative conduct on file. Each
// alert carries the reasons that triggered it.
func (s *DashboardService) Alerts(ctx context.Context) ([]dto.UnderperformanceAlert, error) {
	averages, err := s.analytics.StudentAverages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student averages")
	}
	attendanceCounts, err := s.analytics.StudentAttendanceCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance counts")
	}
	misconductCounts, err := s.analytics.StudentMisconductCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load misconduct counts")
	}

	attendanceByStudent := make(map[string]models.StudentAttendanceCount, len(attendanceCounts))
	for _, c := range attendanceCounts {
		attendanceByStudent[c.StudentID] = c
	}
	misconductByStudent := make(map[string]int, len(misconductCounts))
	for _, c := range misconductCounts {
		misconductByStudent[c.StudentID] = c.Count
	}

	var alerts []dto.UnderperformanceAlert
	for _, avg := range averages {
		var reasons []string
		if avg.AveragePercentage < s.cfg.UnderperformThreshold {
			reasons = append(reasons, fmt.Sprintf("average score below %.0f%%", s.cfg.UnderperformThreshold))
		}
		attendance, hasAttendance := attendanceByStudent[avg.StudentID]
		if hasAttendance && attendance.Rate() < s.cfg.LowAttendanceThreshold {
			reasons = append(reasons, fmt.Sprintf("attendance rate below %.0f%%", s.cfg.LowAttendanceThreshold))
		}
		misconduct := misconductByStudent[avg.StudentID]
		if misconduct > 0 {
			reasons = append(reasons, "negative behavioral records on file")
		}
		if len(reasons) == 0 {
			continue
		}

		alerts = append(alerts, dto.UnderperformanceAlert{
			StudentID:       avg.StudentID,
			FullName:        avg.FullName,
			AverageScore:    avg.AveragePercentage,
			AttendanceRate:  attendance.Rate(),
			MisconductCount: misconduct,
			Reasons:         reasons,
		})
	}
	return alerts, nil
}

// SubjectSummaries aggregates assessment outcomes per subject.
func (s *DashboardService) SubjectSummaries(ctx context.Context) ([]dto.SubjectSummary, bool, error) {
	if s.cache != nil {
		var cached []dto.SubjectSummary
		if err := s.cache.Get(ctx, dashboardSubjectsCacheKey, &cached); err == nil {
			return cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard subjects cache read failed", zap.Error(err))
		}
	}

	aggregates, err := s.analytics.SubjectAggregates(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate subjects")
	}
	summaries := make([]dto.SubjectSummary, 0, len(aggregates))
	for _, agg := range aggregates {
		summaries = append(summaries, dto.SubjectSummary{
			Subject:           agg.Subject,
			Students:          agg.Students,
			Assessments:       agg.Assessments,
			AveragePercentage: agg.AveragePercentage,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardSubjectsCacheKey, summaries, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard subjects cache write failed", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// InvalidateCache drops every cached dashboard payload. Called after
// writes that change the aggregates.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
