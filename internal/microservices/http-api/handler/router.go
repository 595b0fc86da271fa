package handler

import (
	"log/slog"

	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.TaxonomyService
	Genres     service.TaxonomyService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
}

type RouterOptions struct {
	Settings       config.Settings
	Log            *slog.Logger
	SignupLimiter  ratelimit.Limiter // nil disables signup throttling
	CORSOrigins    []string
	TrustedProxies []string // nil trusts no proxy headers
	Health         Pinger
}

// NewRouter wires middleware and every route under /api/v1.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	r := gin.New()
	// ClientIP keys the signup throttle; only listed proxies may set it
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Log.Error("invalid trusted proxies, trusting none", slog.Any("error", err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestLogger(opts.Log), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.GET("/health", NewHealthHandler(opts.Health).Check)

	api := r.Group("/api/v1")

	var signupMiddleware []gin.HandlerFunc
	if opts.SignupLimiter != nil {
		signupMiddleware = append(signupMiddleware, middleware.Throttle(opts.SignupLimiter, opts.Log))
	}
	NewAuthHandler(svc.Auth).RegisterRoutes(api, signupMiddleware...)

	protected := api.Group("", middleware.Authenticate(svc.Auth))
	NewUserHandler(svc.Users, opts.Settings).RegisterRoutes(protected)
	NewTaxonomyHandler(svc.Categories, policy.ResourceCategory, "/categories", opts.Settings).RegisterRoutes(protected)
	NewTaxonomyHandler(svc.Genres, policy.ResourceGenre, "/genres", opts.Settings).RegisterRoutes(protected)
	NewTitleHandler(svc.Titles, opts.Settings).RegisterRoutes(protected)
	NewReviewHandler(svc.Reviews, opts.Settings).RegisterRoutes(protected)
	NewCommentHandler(svc.Comments, opts.Settings).RegisterRoutes(protected)

	return r
}
