package routes

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cppla/blogly/config"
	"github.com/cppla/blogly/controllers"
	"github.com/cppla/blogly/middleware"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/utils"
	"github.com/cppla/blogly/web"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, st *store.Store, flashes *utils.FlashStore) (*gin.Engine, error) {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	// Access log goes to its own rolling file, separate from the application log
	gl, err := utils.NewRollingFileLogger(cfg, cfg.GinPath)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, true))
	} else {
		utils.Logger.Warn("gin access log disabled", zap.Error(err))
		r.Use(gin.Recovery())
	}
	r.Use(middleware.HTTPMetrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", utils.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// browsers reject credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	tmpl, err := web.Templates(template.FuncMap{"sanitize": utils.SanitizeHTML})
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	static, err := web.Static()
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", static)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	userController := controllers.NewUserController(st)
	postController := controllers.NewPostController(st, cfg.RecentPostsLimit)
	tagController := controllers.NewTagController(st)

	pages := r.Group("")
	pages.Use(
		middleware.Flashes(flashes),
		middleware.CSRF(cfg.SecretKey, cfg.CSRFEnabled),
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute),
	)

	pages.GET("/", postController.Home)

	users := pages.Group("/users")
	users.GET("", userController.ListUsers)
	users.GET("/new", userController.NewUserForm)
	users.POST("/new", userController.CreateUser)
	users.GET("/:id", userController.ShowUser)
	users.GET("/:id/edit", userController.EditUserForm)
	users.POST("/:id/edit", userController.UpdateUser)
	users.POST("/:id/delete", userController.DeleteUser)
	users.GET("/:id/posts/new", postController.NewPostForm)
	users.POST("/:id/posts/new", postController.CreatePost)

	posts := pages.Group("/posts")
	posts.GET("/:id", postController.ShowPost)
	posts.GET("/:id/edit", postController.EditPostForm)
	posts.POST("/:id/edit", postController.UpdatePost)
	posts.POST("/:id/delete", postController.DeletePost)

	tags := pages.Group("/tags")
	tags.GET("", tagController.ListTags)
	tags.GET("/new", tagController.NewTagForm)
	tags.POST("/new", tagController.CreateTag)
	tags.GET("/:id", tagController.ShowTag)
	tags.GET("/:id/edit", tagController.EditTagForm)
	tags.POST("/:id/edit", tagController.UpdateTag)
	tags.POST("/:id/delete", tagController.DeleteTag)

	r.NoRoute(func(ctx *gin.Context) {
		utils.NotFound(ctx, "Page")
	})

	return r, nil
}
