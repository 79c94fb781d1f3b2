package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers"
	"github.com/ignatzorin/sponsorship-backend/internal/http/middleware"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// Handlers собирает все хэндлеры API.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	Opportunity   *handlers.OpportunityHandler
	Post          *handlers.PostHandler
	Match         *handlers.MatchHandler
	Admin         *handlers.AdminHandler
	Discovery     *handlers.DiscoveryHandler
	OTP           *handlers.OTPHandler
	Media         *handlers.MediaHandler
	Catalog       *handlers.CatalogHandler
	Notification  *handlers.NotificationHandler
	Fundraising   *handlers.FundraisingHandler
	WS            *handlers.WSHandler
	Health        *handlers.HealthHandler
	MediaRootPath string // пусто, если файлы лежат в S3
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.RegisterValidators(); err != nil {
		logger.Log.WithError(err).Warn("router: правило e164 не зарегистрировано")
	}

	r := gin.Default()
	// GET на POST-only маршрут получает 405, а не 404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}
	if h.MediaRootPath != "" {
		r.StaticFS("/media", http.Dir(h.MediaRootPath))
	}

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokenManager)
	admin := middleware.RequireUserType(models.UserTypeAdmin)
	sponsors := middleware.RequireUserType(models.UserTypeBrand, models.UserTypeAgency)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}
	api.GET("/auth/me", auth, h.Auth.Me)

	otpGroup := api.Group("/twilio")
	otpGroup.Use(middleware.RateLimitMiddleware(cfg.OTPRateLimit, cfg.RateLimitPeriod))
	otpGroup.Use(middleware.OptionalAuth(tokenManager))
	{
		otpGroup.POST("/send-otp", h.OTP.Send)
		otpGroup.POST("/verify-otp", h.OTP.Verify)
	}

	// Публичные маршруты
	api.GET("/categories", h.Catalog.ListCategories)
	api.GET("/client-logos", h.Catalog.ListClientLogos)
	api.GET("/success-stories", h.Catalog.ListSuccessStories)
	api.GET("/success-stories/:id", h.Catalog.GetSuccessStory)
	api.GET("/fundraising/total", h.Fundraising.Total)
	api.GET("/profiles/:userId", middleware.UUIDValidator("userId"), h.Profile.GetPublic)
	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/")
	protected.Use(auth)
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)
		protected.POST("/profile/enrich", h.Profile.Enrich)

		protected.POST("/opportunities", h.Opportunity.Create)
		protected.GET("/opportunities/my", h.Opportunity.ListMy)
		protected.GET("/opportunities/:id", middleware.UUIDValidator("id"), h.Opportunity.Get)
		protected.PUT("/opportunities/:id", middleware.UUIDValidator("id"), h.Opportunity.Update)
		protected.PATCH("/opportunities/:id/status", middleware.UUIDValidator("id"), h.Opportunity.SetStatus)
		protected.DELETE("/opportunities/:id", middleware.UUIDValidator("id"), h.Opportunity.Delete)

		protected.POST("/posts", h.Post.Create)
		protected.GET("/posts/my", h.Post.ListMy)
		protected.GET("/posts/:id", middleware.UUIDValidator("id"), h.Post.Get)
		protected.PUT("/posts/:id", middleware.UUIDValidator("id"), h.Post.Update)
		protected.PATCH("/posts/:id/status", middleware.UUIDValidator("id"), h.Post.SetStatus)
		protected.DELETE("/posts/:id", middleware.UUIDValidator("id"), h.Post.Delete)

		protected.GET("/discover/opportunities", sponsors, h.Discovery.Opportunities)
		protected.GET("/discover/posts", sponsors, h.Discovery.Posts)

		protected.POST("/matches", h.Match.Create)
		protected.GET("/matches/my", h.Match.ListMy)
		protected.GET("/matches/:id", middleware.UUIDValidator("id"), h.Match.Get)
		protected.PUT("/matches/:id/status", middleware.UUIDValidator("id"), h.Match.Decide)
		protected.GET("/matches/:id/calendar", middleware.UUIDValidator("id"), h.Match.CalendarURL)
		protected.GET("/matches/:id/calendar.ics", middleware.UUIDValidator("id"), h.Match.CalendarICS)

		protected.POST("/media", h.Media.Upload)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), h.Media.Delete)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(auth, admin)
	{
		adminGroup.GET("/opportunities", h.Admin.ListOpportunities)
		adminGroup.GET("/posts", h.Admin.ListPosts)
		adminGroup.POST("/opportunities/:id/approve", middleware.UUIDValidator("id"), h.Admin.Approve(valueobject.ListingOpportunity))
		adminGroup.POST("/opportunities/:id/reject", middleware.UUIDValidator("id"), h.Admin.Reject(valueobject.ListingOpportunity))
		adminGroup.POST("/posts/:id/approve", middleware.UUIDValidator("id"), h.Admin.Approve(valueobject.ListingPost))
		adminGroup.POST("/posts/:id/reject", middleware.UUIDValidator("id"), h.Admin.Reject(valueobject.ListingPost))
		adminGroup.PUT("/matches/:id/meeting", middleware.UUIDValidator("id"), h.Admin.ScheduleMeeting)
	}

	return r
}
