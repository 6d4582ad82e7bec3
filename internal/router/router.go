package router

import (
	"HealthyTrack-Dashboard/internal/api"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResolvedChecker reports whether the startup session check has finished.
type ResolvedChecker interface {
	Resolved() bool
}

func SetupRouter(handler *api.DashboardHandler, gate ResolvedChecker, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))

	config := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}
	config.AllowHeaders = append(config.AllowHeaders, "X-Request-ID")
	r.Use(cors.New(config))

	v1 := r.Group("/dashboard/v1")
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	ready := v1.Group("", RequireResolved(gate))
	{
		ready.GET("/view", handler.ViewHandler)

		ready.POST("/auth/login", handler.LoginHandler)
		ready.POST("/auth/signup", handler.SignupHandler)
		ready.POST("/auth/logout", handler.LogoutHandler)

		ready.POST("/meals", handler.SubmitMealHandler)

		ready.POST("/photos", handler.StagePhotoHandler)
		ready.POST("/photos/analyze", handler.AnalyzePhotoHandler)
		ready.DELETE("/photos", handler.ClearPhotoHandler)
		ready.GET("/photos/preview", handler.PhotoPreviewHandler)

		ready.GET("/goals", handler.GetGoalsHandler)
		ready.PUT("/goals", handler.SetGoalsHandler)

		ready.GET("/quiz", handler.QuizStateHandler)
		ready.POST("/quiz/start", handler.QuizStartHandler)
		ready.POST("/quiz/answer", handler.QuizAnswerHandler)
		ready.POST("/quiz/next", handler.QuizNextHandler)
		ready.POST("/quiz/quit", handler.QuizQuitHandler)
		ready.POST("/quiz/retake", handler.QuizRetakeHandler)
		ready.GET("/quiz/history", handler.QuizHistoryHandler)

		ready.GET("/chat", handler.ChatStateHandler)
		ready.POST("/chat", handler.ChatSendHandler)
		ready.POST("/chat/quick/:index", handler.ChatQuickHandler)
	}

	return r
}

// RequireResolved answers 503 until the session gate has resolved.
func RequireResolved(gate ResolvedChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.Resolved() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session not resolved yet"})
			return
		}
		c.Next()
	}
}
