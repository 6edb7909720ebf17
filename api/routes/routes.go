package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/api/handlers"
	"github.com/alxdev/echocheck-backend/api/middleware"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/metrics"
)

// SetupRoutes wires middleware and every endpoint onto the engine.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, authRequired gin.HandlerFunc, m *metrics.Metrics, log logger.Logger) {
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))

	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")

	classify := v1.Group("/classify")
	{
		classify.POST("/text", h.Classify.ClassifyText)
		classify.POST("/file", authRequired, h.Classify.ClassifyFile)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/register/verify", h.Auth.RegisterVerify)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/login/verify", h.Auth.LoginVerify)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/resend-code", h.Auth.ResendCode)
		auth.GET("/me", authRequired, h.Auth.Me)
		auth.POST("/logout", authRequired, h.Auth.Logout)
	}

	feedback := v1.Group("/feedback")
	{
		feedback.POST("", authRequired, h.Feedback.Submit)
		feedback.GET("/stats", h.Feedback.Stats)
		feedback.GET("/recent", authRequired, h.Feedback.Recent)
		feedback.GET("/incorrect", authRequired, h.Feedback.Incorrect)
	}
}
