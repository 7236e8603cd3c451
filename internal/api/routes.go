package api

import (
	"net/http"

	"alcyxob/liftlog/internal/metrics"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth      service.AuthService
	Exercises service.ExerciseService
	Workouts  service.WorkoutService
	Plans     service.PlanService
	Templates service.TemplateService
	Runner    service.RunnerService
	Analytics service.AnalyticsService
	Export    service.ExportService
}

type RouterOptions struct {
	CookieSecure bool

	Metrics  *metrics.Manager    // optional
	Gatherer prometheus.Gatherer // served on /metrics when set

	// LoginLimiter throttles login and registration per client IP; nil disables it.
	LoginLimiter    RequestRateLimiter
	LoginRatePerMin int
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouterOptions) {
	router.Use(PanicRecovery(opts.Metrics), RequestLogger())
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}

	authHandler := NewAuthHandler(svc.Auth, opts.CookieSecure)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	workoutHandler := NewWorkoutHandler(svc.Workouts, svc.Templates, svc.Analytics)
	planHandler := NewPlanHandler(svc.Plans)
	templateHandler := NewTemplateHandler(svc.Templates)
	runnerHandler := NewRunnerHandler(svc.Runner)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, svc.Export)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	pages := router.Group("")
	pages.Use(PageGate(svc.Auth))
	for _, p := range PagePaths {
		pages.GET(p, serveIndex)
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		if opts.LoginLimiter != nil {
			authGroup.Use(RateLimit(opts.LoginLimiter, "auth", opts.LoginRatePerMin))
		}
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/confirm", authHandler.Confirm)
			authGroup.POST("/confirm/resend", authHandler.ResendConfirmation)
			authGroup.POST("/logout", authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/dashboard", workoutHandler.Dashboard)

		// --- Exercise Catalog ---
		protected.GET("/exercises", exerciseHandler.ListExercises)
		protected.POST("/exercises", exerciseHandler.CreateExercise)
		protected.GET("/exercises/:id", exerciseHandler.GetExercise)

		// --- Workouts ---
		workouts := protected.Group("/workouts")
		{
			workouts.GET("", workoutHandler.ListWorkouts)
			workouts.GET("/:id", workoutHandler.GetWorkout)
			workouts.PATCH("/:id/status", workoutHandler.UpdateStatus)
			workouts.PUT("/:id/sets", workoutHandler.SaveSets)
			workouts.DELETE("/:id", workoutHandler.DeleteWorkout)
			workouts.POST("/:id/template", workoutHandler.CreateTemplate)
			workouts.GET("/:id/summary", workoutHandler.Summary)
		}

		// --- Plan Builder ---
		plan := protected.Group("/plan")
		{
			plan.GET("/draft", planHandler.Draft)
			plan.POST("/apply", planHandler.Apply)
			plan.POST("/commit", planHandler.Commit)
		}

		// --- Templates ---
		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("/:id", templateHandler.GetTemplate)
			templates.PATCH("/:id", templateHandler.RenameTemplate)
			templates.DELETE("/:id", templateHandler.DeleteTemplate)
		}

		// --- Workout Runner ---
		run := protected.Group("/runner/:id")
		{
			run.POST("", runnerHandler.Start)
			run.GET("", runnerHandler.State)
			run.POST("/advance", runnerHandler.Advance)
			run.POST("/back", runnerHandler.Back)
			run.PATCH("/current", runnerHandler.EditCurrent)
			run.POST("/finish", runnerHandler.Finish)
			run.DELETE("", runnerHandler.Abandon)
		}

		protected.GET("/analytics/volume", analyticsHandler.Volume)
		protected.POST("/exports/workouts", analyticsHandler.ExportWorkouts)
	}
}
