package router

import (
	"gym_club_backend/internal/handlers"
	"gym_club_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, auth gin.HandlerFunc) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.GET("/me", auth, h.Me)
	}
}

// SetupUserRoutes: admin only, except that a user may read and update itself.
func SetupUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler, auth gin.HandlerFunc) {
	users := api.Group("/users", auth)
	{
		users.GET("/:id", h.GetUserByID)
		users.PATCH("/:id", h.UpdateUser)

		admin := users.Group("", middleware.AdminOnly())
		admin.POST("", h.CreateUser)
		admin.GET("", h.GetUsers)
		admin.DELETE("/:id", h.DeleteUser)
	}
}

func SetupMembershipRoutes(api *gin.RouterGroup, h *handlers.MembershipHandler, auth gin.HandlerFunc) {
	memberships := api.Group("/memberships", auth)
	{
		memberships.GET("/:id", h.GetMembershipByID)
		memberships.GET("/user/:userId", h.GetUserMemberships)

		admin := memberships.Group("", middleware.AdminOnly())
		admin.POST("", h.CreateMembership)
		admin.GET("", h.GetMemberships)
		admin.GET("/expiring", h.GetExpiring)
		admin.POST("/check-expired", h.CheckExpired)
		admin.POST("/auto-renew", h.AutoRenew)
		admin.PATCH("/:id", h.UpdateMembership)
		admin.DELETE("/:id", h.DeleteMembership)
		admin.POST("/:id/renew", h.RenewMembership)
	}
}

func SetupAttendanceRoutes(api *gin.RouterGroup, h *handlers.AttendanceHandler, auth gin.HandlerFunc) {
	attendance := api.Group("/attendance")
	{
		// public QR endpoint, both variants
		attendance.GET("/check-in", h.CheckIn)
		attendance.POST("/check-in", h.CheckIn)

		member := attendance.Group("", auth)
		member.POST("", h.CreateAttendance)
		member.POST("/register", h.RegisterAttendance)
		member.GET("/:id", h.GetAttendanceByID)
		member.GET("/user/:userId", h.GetUserAttendance)
		member.GET("/user/:userId/history", h.GetUserHistory)
		member.POST("/qr/generate/:userId", h.GenerateQRCode)

		admin := member.Group("", middleware.AdminOnly())
		admin.GET("", h.GetAttendances)
		admin.GET("/date-range", h.GetByDateRange)
		admin.POST("/qr/verify", h.VerifyQRCode)
		admin.PATCH("/:id", h.UpdateAttendance)
		admin.DELETE("/:id", h.DeleteAttendance)
		admin.POST("/:id/check-out", h.CheckOut)
	}
}

func SetupBlogRoutes(api *gin.RouterGroup, h *handlers.BlogHandler, auth, optionalAuth gin.HandlerFunc) {
	blog := api.Group("/blog")
	{
		blog.GET("", optionalAuth, h.GetPosts)
		blog.GET("/tags", h.GetTags)
		blog.GET("/tag/:tag", h.GetPostsByTag)
		blog.GET("/slug/:slug", h.GetPostBySlug)
		blog.GET("/:id", h.GetPostByID)

		admin := blog.Group("", auth, middleware.AdminOnly())
		admin.POST("", h.CreatePost)
		admin.PATCH("/:id", h.UpdatePost)
		admin.DELETE("/:id", h.DeletePost)
		admin.POST("/:id/publish", h.PublishPost)
		admin.POST("/:id/unpublish", h.UnpublishPost)
	}
}

func SetupProductRoutes(api *gin.RouterGroup, h *handlers.ProductHandler, auth gin.HandlerFunc) {
	products := api.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/categories", h.GetCategories)
		products.GET("/slug/:slug", h.GetProductBySlug)
		products.GET("/:id", h.GetProductByID)

		admin := products.Group("", auth, middleware.AdminOnly())
		admin.POST("", h.CreateProduct)
		admin.PATCH("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
		admin.PATCH("/:id/toggle-availability", h.ToggleAvailability)
	}
}

func SetupUploadRoutes(api *gin.RouterGroup, h *handlers.UploadHandler, auth gin.HandlerFunc) {
	uploads := api.Group("/uploads")
	{
		uploads.GET("/:filename", h.ServeFile)

		admin := uploads.Group("", auth, middleware.AdminOnly())
		admin.POST("", h.Upload)
		admin.DELETE("/:filename", h.DeleteFile)
		admin.DELETE("/cloudinary/*publicId", h.DeleteRemote)
	}
}

func SetupNotificationRoutes(api *gin.RouterGroup, h *handlers.NotificationHandler, auth gin.HandlerFunc) {
	notifications := api.Group("/notifications", auth, middleware.AdminOnly())
	{
		notifications.POST("/email", h.SendEmail)
		notifications.POST("/whatsapp", h.SendWhatsApp)
		notifications.POST("/bulk-email", h.SendBulkEmail)
		notifications.GET("/logs", h.GetLogs)
		notifications.GET("/logs/:id", h.GetLog)

		templates := notifications.Group("/templates")
		templates.GET("", h.GetTemplates)
		templates.POST("", h.CreateTemplate)
		templates.POST("/preview", h.PreviewTemplate)
		templates.GET("/:id", h.GetTemplate)
		templates.PATCH("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
	}
}

func SetupDashboardRoutes(api *gin.RouterGroup, h *handlers.DashboardHandler, auth gin.HandlerFunc) {
	dashboard := api.Group("/dashboard", auth, middleware.AdminOnly())
	{
		dashboard.GET("/stats", h.GetStats)
		dashboard.GET("/revenue/monthly", h.GetMonthlyRevenue)
		dashboard.GET("/attendance/daily", h.GetDailyAttendance)
	}
}
