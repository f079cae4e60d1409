package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/handlers"
	"github.com/sachiny0106/LinkUp/media"
	"github.com/sachiny0106/LinkUp/middleware"
	"github.com/sachiny0106/LinkUp/store"
)

type Deps struct {
	Posts        store.PostStore
	Users        store.UserStore
	Uploader     media.Uploader
	Logger       *zap.Logger
	JWTSecret    string // empty disables token verification
	ShareBaseURL string

	// RateLimit defaults to 60 requests/minute per IP when zero.
	RateLimit       int
	RateLimitWindow time.Duration
}

// Setup wires the REST surface. The two static search paths share their
// prefix with a :param route, which gin cannot register side by side;
// the GetOrSearch dispatchers resolve them inside the handler instead.
func Setup(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	limit := deps.RateLimit
	window := deps.RateLimitWindow
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limit, window))
	if deps.JWTSecret != "" {
		api.Use(middleware.RequireAuth(deps.JWTSecret))
	}

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	posts := handlers.NewPostHandler(deps.Posts, deps.Logger, deps.ShareBaseURL)
	users := handlers.NewUserHandler(deps.Users, deps.Logger)
	search := handlers.NewSearchHandler(deps.Posts, deps.Users, deps.Logger)
	upload := handlers.NewUploadHandler(deps.Uploader, deps.Logger)

	api.GET("/posts", posts.List)
	api.POST("/posts", posts.Create)
	api.GET("/posts/:postId", posts.GetOrSearch) // also serves /posts/search
	api.PUT("/posts/:postId", posts.Update)
	api.DELETE("/posts/:postId", posts.Delete)
	api.POST("/posts/:postId/like", posts.ToggleLike)
	api.POST("/posts/:postId/comment", posts.AddComment)
	api.DELETE("/posts/:postId/comment/:commentId", posts.DeleteComment)
	api.POST("/posts/:postId/share", posts.Share)
	api.GET("/posts/:postId/likes", posts.Likes)
	api.GET("/posts/:postId/comments", posts.Comments)

	api.GET("/users", users.List)
	api.POST("/users", users.Upsert)
	api.GET("/users/:uid", users.GetOrSearch) // also serves /users/search
	api.PUT("/users/:uid", users.Update)
	api.POST("/users/complete-profile", users.CompleteProfile)

	api.GET("/search", search.Combined)

	api.POST("/upload", upload.General)
	api.POST("/upload/profile-picture", upload.ProfilePicture)
	api.POST("/upload/post-image", upload.PostImage)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{"message": "Endpoint not found", "path": c.Request.URL.Path})
			return
		}
		c.Next()
	})

	return router
}
