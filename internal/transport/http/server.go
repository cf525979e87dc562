package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	appsvc "gopher-classifieds/internal/app"
	"gopher-classifieds/internal/bootstrap"
	"gopher-classifieds/internal/cache"
	"gopher-classifieds/internal/repository"
	"gopher-classifieds/internal/transport/http/handler"
	"gopher-classifieds/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.Logger(logrus.StandardLogger()), gin.Recovery())

	jwtTTL := time.Duration(app.Config.Auth.JWTExpireMinute) * time.Minute
	cookieName := app.Config.Auth.CookieName

	userRepo := repository.NewUserRepository(app.DB)
	postingRepo := repository.NewPostingRepository(app.DB)

	var sessions appsvc.SessionStore
	if app.Redis != nil {
		sessions = cache.NewSessionCache(app.Redis, jwtTTL)
	}
	var notifier appsvc.ReviewNotifier
	if app.ReviewPublisher != nil {
		notifier = app.ReviewPublisher
	}

	authService := appsvc.NewAuthService(userRepo, sessions, app.Config.Auth.JWTSecret, jwtTTL)
	listingService := appsvc.NewListingService(postingRepo, appsvc.ListingOptions{
		PageSize:    app.Config.Listing.PageSize,
		MaxPageSize: app.Config.Listing.MaxPageSize,
		WindowSize:  app.Config.Listing.PageWindow,
	})
	submissionService := appsvc.NewSubmissionService(postingRepo, notifier)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService, cookieName)
	postingHandler := handler.NewPostingHandler(listingService)
	commitHandler := handler.NewCommitHandler(submissionService, app.SubmitLimiter)

	authRequired := middleware.AuthRequired(authService, cookieName)
	optionalAuth := middleware.OptionalAuth(authService, cookieName)

	router.GET("/healthz", healthHandler.Check)

	router.GET("/", postingHandler.Index)
	router.GET("/index", postingHandler.Index)
	router.GET("/search", postingHandler.Search)
	router.GET("/detail/:id", postingHandler.Detail)

	router.GET("/commit", authRequired, commitHandler.Form)
	router.POST("/commit", authRequired, commitHandler.Submit)

	router.POST("/register", middleware.Throttle(app.LoginThrottle), authHandler.Register)
	router.GET("/login", optionalAuth, authHandler.LoginPage)
	router.POST("/login", middleware.Throttle(app.LoginThrottle), authHandler.Login)
	router.POST("/logout", authRequired, authHandler.Logout)
	router.GET("/me", authRequired, authHandler.Me)

	return router
}
