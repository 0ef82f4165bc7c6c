package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/urugendo/student-performance-api/internal/middleware"
	"github.com/urugendo/student-performance-api/internal/models"
	"github.com/urugendo/student-performance-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Classes       *ClassHandler
	Attendance    *AttendanceHandler
	Assessments   *AssessmentHandler
	Participation *ParticipationHandler
	Behavioral    *BehavioralHandler
	Dashboard     *DashboardHandler
	Assignments   *TeacherAssignmentHandler
	Users         *UserHandler
}

// RegisterRoutes mounts the API under the given prefix. Everything except
// login and signup requires a valid token; admin routes additionally
// require the admin role.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/signup", h.Auth.Signup)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/password", h.Auth.ChangePassword)

	students := protected.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
		students.GET("/:id/report", h.Students.Report)
		students.GET("/:id/performance", h.Dashboard.StudentPerformance)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.POST("", h.Classes.Create)
		classes.GET("/:id", h.Classes.Get)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.GET("", h.Attendance.List)
		attendance.POST("", h.Attendance.Log)
		attendance.POST("/batch", h.Attendance.LogBatch)
		attendance.PUT("/confirm/batch", h.Attendance.ConfirmBatch)
		attendance.GET("/:id", h.Attendance.Get)
		attendance.PUT("/:id", h.Attendance.Update)
		attendance.DELETE("/:id", h.Attendance.Delete)
		attendance.PUT("/:id/confirm", h.Attendance.Confirm)
	}

	assessments := protected.Group("/assessments")
	{
		assessments.GET("", h.Assessments.List)
		assessments.POST("", h.Assessments.Create)
		assessments.GET("/statistics", h.Assessments.Statistics)
		assessments.GET("/:id", h.Assessments.Get)
		assessments.PUT("/:id", h.Assessments.Update)
		assessments.DELETE("/:id", h.Assessments.Delete)
	}

	participation := protected.Group("/participation")
	{
		participation.GET("", h.Participation.List)
		participation.POST("", h.Participation.Log)
		participation.GET("/summary/:studentId", h.Participation.Summary)
		participation.GET("/:id", h.Participation.Get)
		participation.PUT("/:id", h.Participation.Update)
		participation.DELETE("/:id", h.Participation.Delete)
	}

	behavioral := protected.Group("/behavioral")
	{
		behavioral.GET("", h.Behavioral.List)
		behavioral.POST("", h.Behavioral.Create)
		behavioral.GET("/:id", h.Behavioral.Get)
		behavioral.PUT("/:id", h.Behavioral.Update)
		behavioral.DELETE("/:id", h.Behavioral.Delete)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/summary", h.Dashboard.Summary)
		dashboard.GET("/students/:studentId", h.Dashboard.StudentPerformance)
		dashboard.GET("/top-performers", h.Dashboard.TopPerformers)
		dashboard.GET("/alerts", h.Dashboard.Alerts)
		dashboard.GET("/subjects", h.Dashboard.Subjects)
	}

	assignments := protected.Group("/assignments")
	assignments.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		assignments.GET("", h.Assignments.List)
		assignments.POST("", h.Assignments.Create)
		assignments.DELETE("/:id", h.Assignments.Delete)
	}

	admin := protected.Group("/admin/users")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("", h.Users.List)
		admin.POST("/teachers", h.Users.CreateTeacher)
		admin.POST("/parents", h.Users.CreateParent)
		admin.PUT("/:id", h.Users.Update)
		admin.DELETE("/:id", h.Users.Delete)
		admin.POST("/:id/reset-password", h.Users.ResetPassword)
	}
}
