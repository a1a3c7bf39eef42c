package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/portfolio/internal/api/handlers"
	"github.com/yoockh/portfolio/internal/api/middleware"
	"github.com/yoockh/portfolio/internal/auth"
	"github.com/yoockh/portfolio/internal/ratelimit"
	"github.com/yoockh/portfolio/internal/services"
)

type Deps struct {
	Log         *logrus.Logger
	CORSOrigins []string

	AuthSvc  services.AuthService
	Auth     *handlers.AuthHandler
	Comments *handlers.CommentHandler
	CV       *handlers.CVHandler
	Contact  *handlers.ContactHandler
	Users    *handlers.UserHandler

	// nil limiters disable throttling
	LoginLimiter    ratelimit.Limiter
	RegisterLimiter ratelimit.Limiter
	ContactLimiter  ratelimit.Limiter
}

// NewRouter builds the engine with recovery, request logging and CORS.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.RequestLogger(d.Log), middleware.Recovery(), middleware.CORS(d.CORSOrigins))
	r.NoRoute(middleware.NotFound())
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authn := middleware.JWTAuth(d.AuthSvc)
	can := middleware.RequireCapability

	api := r.Group("/api")

	a := api.Group("/auth")
	a.POST("/register", middleware.RateLimit(d.RegisterLimiter, d.Log), d.Auth.Register)
	a.POST("/login", middleware.RateLimit(d.LoginLimiter, d.Log), d.Auth.Login)
	a.GET("/me", authn, d.Auth.Me)

	comments := api.Group("/comments")
	comments.GET("", d.Comments.ListPublic)
	comments.POST("", authn, can(auth.CapCommentCreate), d.Comments.Create)
	comments.GET("/all", authn, can(auth.CapModerate), d.Comments.ListAll)
	comments.PUT("/:id/approve", authn, can(auth.CapModerate), d.Comments.Approve)
	comments.DELETE("/:id", authn, can(auth.CapModerate), d.Comments.Delete)

	cv := api.Group("/cv", authn)
	cv.POST("/upload", can(auth.CapCVUpload), d.CV.Upload)
	cv.GET("/my-cv", d.CV.Mine)
	cv.GET("/download/:id", can(auth.CapModerate), d.CV.Download)
	cv.GET("/all", can(auth.CapModerate), d.CV.ListAll)
	cv.PUT("/:id/approve", can(auth.CapModerate), d.CV.Approve)
	cv.DELETE("/:id", can(auth.CapModerate), d.CV.Delete)

	contact := api.Group("/contact")
	contact.POST("", middleware.RateLimit(d.ContactLimiter, d.Log), d.Contact.Submit)
	contact.GET("/all", authn, can(auth.CapInboxManage), d.Contact.ListAll)
	contact.PUT("/:id/status", authn, can(auth.CapInboxManage), d.Contact.UpdateStatus)

	users := api.Group("/users", authn, can(auth.CapUsersManage))
	users.GET("", d.Users.List)
	users.DELETE("/:id", d.Users.Delete)
}
