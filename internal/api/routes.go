package api

import (
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/metrics"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth          service.AuthService
	Exercise      service.ExerciseService
	Reference     service.ReferenceService
	Plan          service.PlanService
	PlanHierarchy service.PlanHierarchyService
	WorkoutLog    service.WorkoutLogService
	Goal          service.GoalService
	Measurement   service.MeasurementService
	Team          service.TeamService
}

// RouterOptions holds the optional cross-cutting pieces. Zero values disable
// them: no cache, no metrics, no rate limiting.
type RouterOptions struct {
	QueryCache        *cache.QueryCache
	Metrics           *metrics.Manager
	MetricsGatherer   prometheus.Gatherer
	MetricsPath       string
	RateLimiter       RequestRateLimiter
	RequestsPerMinute int
}

func SetupRoutes(router *gin.Engine, services Services, opts RouterOptions) {
	authHandler := NewAuthHandler(services.Auth)
	exerciseHandler := NewExerciseHandler(services.Exercise, opts.QueryCache)
	referenceHandler := NewReferenceHandler(services.Reference, opts.QueryCache)
	planHandler := NewPlanHandler(services.Plan, opts.QueryCache, opts.Metrics)
	hierarchyHandler := NewPlanHierarchyHandler(services.PlanHierarchy, opts.QueryCache)
	workoutLogHandler := NewWorkoutLogHandler(services.WorkoutLog, opts.QueryCache, opts.Metrics)
	goalHandler := NewGoalHandler(services.Goal, opts.QueryCache)
	measurementHandler := NewMeasurementHandler(services.Measurement, opts.QueryCache)
	teamHandler := NewTeamHandler(services.Team, opts.QueryCache, opts.Metrics)

	router.Use(LogRequest())
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}
	rateLimit := RateLimit(opts.RateLimiter, opts.RequestsPerMinute, opts.Metrics)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.MetricsGatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(opts.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		authGroup.Use(rateLimit)
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(services.Auth), rateLimit)
	{
		protected.GET("/me", authHandler.Me)

		// --- Exercise library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PATCH("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
			exerciseGroup.GET("/:exerciseId/instructions", exerciseHandler.GetInstructions)
			exerciseGroup.POST("/:exerciseId/image", exerciseHandler.RequestImageUpload)

			exerciseGroup.GET("/:exerciseId/references", referenceHandler.ListGlobalReferences)
			exerciseGroup.POST("/:exerciseId/references", referenceHandler.AddGlobalReference)
			exerciseGroup.POST("/:exerciseId/saved-references", referenceHandler.SaveReference)
		}
		protected.PATCH("/references/:referenceId", referenceHandler.UpdateGlobalReference)
		protected.DELETE("/references/:referenceId", referenceHandler.DeleteGlobalReference)
		protected.GET("/saved-references", referenceHandler.ListSavedReferences)
		protected.DELETE("/saved-references/:referenceId", referenceHandler.DeleteSavedReference)

		// --- Plans ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.PATCH("/:planId", planHandler.UpdatePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
			planGroup.POST("/:planId/like", planHandler.LikePlan)
			planGroup.POST("/:planId/fork", planHandler.ForkPlan)
			planGroup.GET("/:planId/hierarchy", planHandler.GetPlanHierarchy)
			planGroup.GET("/:planId/summary", planHandler.GetPlanSummary)

			planGroup.POST("/:planId/weeks", hierarchyHandler.AddWeek)
			planGroup.POST("/:planId/goals", goalHandler.CreateGoal)
			planGroup.GET("/:planId/goals", goalHandler.ListGoals)
		}

		// --- Plan structure ---
		protected.PATCH("/plan-weeks/:weekId", hierarchyHandler.UpdateWeek)
		protected.DELETE("/plan-weeks/:weekId", hierarchyHandler.DeleteWeek)
		protected.POST("/plan-weeks/:weekId/days", hierarchyHandler.AddDay)

		protected.PATCH("/plan-days/:dayId", hierarchyHandler.UpdateDay)
		protected.DELETE("/plan-days/:dayId", hierarchyHandler.DeleteDay)
		protected.POST("/plan-days/:dayId/sessions", hierarchyHandler.AddSession)

		protected.PATCH("/plan-sessions/:sessionId", hierarchyHandler.UpdateSession)
		protected.DELETE("/plan-sessions/:sessionId", hierarchyHandler.DeleteSession)
		protected.POST("/plan-sessions/:sessionId/exercises", hierarchyHandler.AddSessionExercise)

		protected.PATCH("/plan-session-exercises/:entryId", hierarchyHandler.UpdateSessionExercise)
		protected.DELETE("/plan-session-exercises/:entryId", hierarchyHandler.DeleteSessionExercise)
		protected.POST("/plan-session-exercises/:entryId/sets", hierarchyHandler.AddSet)
		protected.GET("/plan-session-exercises/:entryId/sets", hierarchyHandler.GetGroupedSets)

		protected.PATCH("/plan-sets/:setId", hierarchyHandler.UpdateSet)
		protected.DELETE("/plan-sets/:setId", hierarchyHandler.DeleteSet)

		// --- Goals ---
		protected.PATCH("/goals/:goalId", goalHandler.UpdateGoal)
		protected.DELETE("/goals/:goalId", goalHandler.DeleteGoal)
		protected.PUT("/goals/:goalId/baseline", goalHandler.SetBaseline)
		protected.GET("/goals/:goalId/baseline", goalHandler.GetBaseline)
		protected.GET("/goals/:goalId/progress", goalHandler.EvaluateGoal)

		// --- Workout logs ---
		logGroup := protected.Group("/session-logs")
		{
			logGroup.POST("", workoutLogHandler.CreateSessionLog)
			logGroup.GET("", workoutLogHandler.ListSessionLogs)
			logGroup.GET("/:logId", workoutLogHandler.GetSessionLog)
			logGroup.PATCH("/:logId", workoutLogHandler.UpdateSessionLog)
			logGroup.DELETE("/:logId", workoutLogHandler.DeleteSessionLog)
			logGroup.POST("/:logId/sets", workoutLogHandler.AddSetLog)
		}
		protected.DELETE("/set-logs/:setLogId", workoutLogHandler.DeleteSetLog)

		// --- Measurements ---
		measurementGroup := protected.Group("/measurements")
		{
			measurementGroup.POST("", measurementHandler.CreateMeasurement)
			measurementGroup.GET("", measurementHandler.ListMeasurements)
			measurementGroup.DELETE("/:measurementId", measurementHandler.DeleteMeasurement)
			measurementGroup.POST("/:measurementId/photos", measurementHandler.RequestPhotoUpload)
		}

		// --- Teams ---
		teamGroup := protected.Group("/teams")
		{
			// teams are run by coaches; athletes join through invitations
			teamGroup.POST("", RoleMiddleware(domain.RoleCoach), teamHandler.CreateTeam)
			teamGroup.GET("", teamHandler.ListMyTeams)
			teamGroup.POST("/:teamId/invitations", teamHandler.InviteMember)
			teamGroup.GET("/:teamId/invitations", teamHandler.ListInvitations)
		}
		protected.POST("/invitations/:invitationId/respond", teamHandler.RespondToInvitation)
		protected.POST("/invitations/:invitationId/email", teamHandler.SendInvitationEmail)
	}
}
