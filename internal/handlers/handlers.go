package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/middleware"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth            *service.AuthService
	Profiles        *service.ProfileService
	Connections     *service.ConnectionService
	Courses         *service.CourseService
	Progress        *service.ProgressService
	Messaging       *service.MessagingService
	Notifications   *service.NotificationService
	Content         *service.ContentService
	Feed            *service.FeedService
	Recommendations *service.RecommendationService
	Checkout        *service.CheckoutService
	Media           *service.MediaService
}

// Check is a named dependency probe for /healthz.
type Check func(ctx context.Context) error

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	svc     Services
	live    service.Subscriber
	limiter middleware.Counter
	checks  map[string]Check
}

// NewHandlerSet wires the handlers. limiter may be nil to disable rate limits.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, live service.Subscriber, limiter middleware.Counter, checks map[string]Check) HandlerSet {
	return HandlerSet{
		log:     log.With().Str("component", "http").Logger(),
		cfg:     cfg,
		svc:     svc,
		live:    live,
		limiter: limiter,
		checks:  checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Auth(h.svc.Auth)
	admin := middleware.RequireAdmin()

	router.POST("/create-payment-intent", authed, h.CreatePaymentIntent)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.throttle("auth"), h.RegisterUser)
		auth.POST("/login", h.throttle("auth"), h.Login)
		auth.POST("/refresh", h.Refresh)

		protected := v1.Group("/auth")
		protected.Use(authed)
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)
	}

	profiles := v1.Group("/profiles", authed)
	profiles.PATCH("/me", h.UpdateProfile)
	profiles.GET("/:id", h.GetProfile)

	connections := v1.Group("/connections", authed)
	connections.GET("", h.ListConnections)
	connections.GET("/search", h.SearchUsers)
	connections.GET("/stream", h.StreamConnections)
	connections.POST("/:peerId/request", h.SendConnectionRequest)
	connections.POST("/:peerId/accept", h.AcceptConnection)
	connections.POST("/:peerId/decline", h.DeclineConnection)
	connections.POST("/:peerId/cancel", h.CancelConnection)
	connections.DELETE("/:peerId", h.RemoveConnection)

	courses := v1.Group("/courses", authed)
	courses.GET("", h.ListCourses)
	courses.GET("/stream", h.StreamCourses)
	courses.GET("/:id", h.GetCourse)
	courses.POST("", admin, h.CreateCourse)
	courses.PATCH("/:id", admin, h.UpdateCourse)
	courses.DELETE("/:id", admin, h.DeleteCourse)

	progress := v1.Group("/progress", authed)
	progress.GET("", h.ListProgress)
	progress.GET("/stream", h.StreamProgress)
	progress.GET("/achievements", h.ListAchievements)
	progress.GET("/:courseId", h.GetProgress)
	progress.POST("/:courseId/enroll", h.Enroll)
	progress.POST("/:courseId/restart", h.RestartCourse)
	progress.POST("/:courseId/lectures/:lectureId/complete", h.CompleteLecture)

	chats := v1.Group("/chats", authed)
	chats.GET("", h.ListChats)
	chats.GET("/with/:peerId", h.ChatWith)
	chats.GET("/:chatId/messages", h.ListMessages)
	chats.POST("/:chatId/messages", h.SendMessage)
	chats.GET("/:chatId/stream", h.StreamMessages)

	notifications := v1.Group("/notifications", authed)
	notifications.GET("", h.ListNotifications)
	notifications.GET("/stream", h.StreamNotifications)
	notifications.POST("/read-all", h.MarkAllNotificationsRead)
	notifications.POST("/:id/read", h.MarkNotificationRead)

	content := v1.Group("/content/:kind", authed)
	content.GET("", h.ListContent)
	content.GET("/stream", h.StreamContent)
	content.GET("/:id", h.GetContent)
	content.POST("", admin, h.CreateContent)
	content.PATCH("/:id", admin, h.UpdateContent)
	content.DELETE("/:id", admin, h.DeleteContent)

	posts := v1.Group("/posts", authed)
	posts.GET("", h.ListPosts)
	posts.POST("", h.CreatePost)
	posts.GET("/stream", h.StreamPosts)
	posts.GET("/:id", h.GetPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.GET("/:id/comments", h.ListComments)
	posts.POST("/:id/comments", h.AddComment)
	posts.POST("/:id/like", h.LikePost)
	posts.DELETE("/:id/like", h.UnlikePost)

	ai := v1.Group("/ai", authed, h.throttle("ai"))
	ai.POST("/categorize", h.Categorize)
	ai.POST("/recommend", h.Recommend)
	ai.GET("/recommendations", h.RecommendForMe)

	media := v1.Group("/media", authed)
	media.POST("/images", h.UploadImage)

	adminGroup := v1.Group("/admin", authed, admin)
	adminGroup.GET("/users", h.AdminListUsers)
	adminGroup.POST("/users/:id/role", h.AdminSetRole)
	adminGroup.POST("/users/:id/status", h.AdminSetStatus)
	adminGroup.GET("/media", h.AdminListMedia)
}

// throttle limits abuse-prone endpoints to 30 requests a minute.
func (h HandlerSet) throttle(scope string) gin.HandlerFunc {
	if h.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(h.limiter, scope, 30, time.Minute)
}

func identity(c *gin.Context) models.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}
