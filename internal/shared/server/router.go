package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/companies"
	"resume-tailor/internal/developers"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/users"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	Verifier         middleware.TokenVerifier
	UserHandler      *users.Handler
	DeveloperHandler *developers.Handler
	CompanyHandler   *companies.Handler
	JobHandler       *jobs.Handler
	ResumeHandler    *resumes.Handler
	Health           *health.Service
	// FilesDir is served read-only under /files when the local store is active.
	FilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.FilesDir != "" {
		r.Static("/files", deps.FilesDir)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Verifier, "/api/v1/health", "/api/v1/auth/"))
	api.GET("/health", healthHandler(deps.Health))

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DeveloperHandler != nil {
		deps.DeveloperHandler.RegisterRoutes(api)
	}
	if deps.CompanyHandler != nil {
		deps.CompanyHandler.RegisterRoutes(api)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		checks, ok := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	}
}

// GenerateLimit rate limits résumé generation per user.
func GenerateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules:        map[string]middleware.RateLimitRule{"generate": middleware.PerMinute(perMinute)},
		DefaultGroup: "generate",
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
