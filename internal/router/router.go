package router

import (
	"net/http"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/config"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/handlers"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

// Setup wires middleware and routes for the analytics API.
func Setup(log *zap.Logger, analytics *handlers.AnalyticsHandler, trend *handlers.TrendHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("fbl_session", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Polling clients fetch their backoff bounds from here instead of
	// hardcoding them.
	router.GET("/api/client-config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pollBaseIntervalSeconds": int(config.Conf.Analytics.PollBaseInterval.Seconds()),
			"pollMaxIntervalSeconds":  int(config.Conf.Analytics.PollMaxInterval.Seconds()),
		})
	})

	// The analysis endpoint recomputes the full pipeline per request, so the
	// API group gets a per-IP budget. Polling clients at the default 15s
	// interval stay well inside it.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 60,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api", limiter)
	{
		api.GET("/surveys/:id/analysis", analytics.GetAnalysis)
		api.GET("/surveys/:id/updates", analytics.GetUpdates)
		api.GET("/surveys/:id/trend", analytics.GetTrend)
	}

	router.GET("/surveys/:id/trend-chart", trend.ShowTrendChart)

	return router
}
