// Package app assembles the HTTP API from the domain packages.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"maidmarket/internal/cache"
	"maidmarket/internal/domain/favorite"
	"maidmarket/internal/domain/maid"
	"maidmarket/internal/domain/wallet"
	"maidmarket/internal/middleware"
	"maidmarket/internal/pkg/jwt"
	"maidmarket/internal/pkg/response"
	"maidmarket/internal/realtime"
)

// Deps are the process-wide resources the router is built from.
type Deps struct {
	DB          *gorm.DB
	JWT         *jwt.Service
	FavoriteIDs cache.FavoriteIDs
	Hub         *realtime.Hub
	Registry    *prometheus.Registry
	UnlockPrice int64
	CORSOrigins []string
}

// NewRouter wires every route. Everything under /api/v1 except the
// websocket feed requires a bearer token.
func NewRouter(d Deps) http.Handler {
	if d.Hub == nil {
		d.Hub = realtime.NewHub()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	maidRepo := maid.NewRepository(d.DB)
	walletService := wallet.NewService(d.DB, maidRepo, d.UnlockPrice)
	maidService := maid.NewService(maidRepo, walletService)
	favoriteService := favorite.NewService(favorite.NewRepository(d.DB), maidRepo, d.FavoriteIDs, d.Hub)

	maidHandler := maid.NewHandler(maidService)
	favoriteHandler := favorite.NewHandler(favoriteService)
	walletHandler := wallet.NewHandler(walletService)
	realtimeHandler := realtime.NewHandler(d.Hub, d.JWT, d.CORSOrigins)

	httpMetrics := middleware.NewHTTPMetrics(d.Registry)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		middleware.CORS(d.CORSOrigins),
		httpMetrics.Handler(),
	)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	realtimeHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(d.JWT))
	{
		writers := protected.Group("")
		writers.Use(middleware.ListingWriters())

		maidHandler.RegisterRoutes(protected, writers)
		favoriteHandler.RegisterRoutes(protected)
		walletHandler.RegisterRoutes(protected)
	}

	return otelhttp.NewHandler(r, "maidmarket-api")
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
