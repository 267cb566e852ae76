// Package httpapi wires the Gin engine to the Q&A services, middleware and
// route handlers. Cross-cutting concerns (tracing, correlation IDs, logging
// with redaction, panic recovery, metrics, idempotency, rate limiting, CORS
// and security headers) are attached here in a fixed order.
package httpapi

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-qa-backend/docs"
	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/http/handlers"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/services"
	"github.com/tbourn/go-qa-backend/internal/store"
)

// answersRoute is relative to the API base path. It is the only route whose
// idempotent replays skip the rate limiter.
const answersRoute = "/questions/:id/answers"

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID", middleware.HeaderIdempotencyKey}
	corsExpose  = []string{"X-Request-ID", "Idempotency-Replayed", "Retry-After"}
)

// RegisterRoutes attaches all middleware and endpoints to r. Questions and
// answers are served from st; db backs the idempotency records.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. Logger (redacting)
//  4. Recovery
//  5. body size cap and gzip
//  6. Metrics
//  7. Idempotency validator, ahead of the limiter so replays can bypass it
//  8. Rate limiter
//  9. Origin guard, CORS, security headers
func RegisterRoutes(r *gin.Engine, st *store.Store, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics("/metrics"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen:      200,
			ReplayRoute: path.Join("/", cfg.APIBasePath, answersRoute),
		},
		func(ctx context.Context, questionID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, questionID, key, now)
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	r.Use(originGuard(cfg.CORS.AllowedOrigins))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		q, a := st.Counts()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "questions": q, "answers": a})
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(
		services.NewQuestionService(st),
		services.NewAnswerService(st, db, cfg.IdempotencyTTL),
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/questions", h.ListQuestions)
		api.POST("/questions", h.CreateQuestion)
		api.GET("/questions/:id", h.GetQuestion)
		api.PUT("/questions/:id", h.UpdateQuestion)
		api.DELETE("/questions/:id", h.DeleteQuestion)

		api.GET(answersRoute, h.ListAnswers)
		api.POST(answersRoute, h.CreateAnswer)
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    corsExpose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// originGuard rejects cross-origin requests from origins outside the
// allowlist with a 403 envelope. An empty allowlist admits every origin, and
// requests without an Origin header are never cross-origin.
func originGuard(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if len(allowed) == 0 || origin == "" {
			c.Next()
			return
		}
		if _, ok := allowed[origin]; !ok {
			handlers.Abort(c, handlers.ErrOriginForbidden)
			return
		}
		c.Next()
	}
}

// limitBody caps the request body at maxBytes. Oversized bodies make the
// JSON decoder fail, which handlers report as 422.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
