package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/metrics"
	"github.com/polkiloo/dispatch/internal/server/http/handlers"
	"github.com/polkiloo/dispatch/internal/server/http/middleware"
	"github.com/polkiloo/dispatch/internal/server/ws"
)

const (
	healthTimeout = 2 * time.Second
	// maxInflatedBody caps gzip request bodies after decompression.
	maxInflatedBody = 1 << 20
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.DispatchFacade, hub *ws.Hub, health HealthChecker, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger, m))
	engine.Use(middleware.DecompressRequest(maxInflatedBody))

	engine.GET("/healthz", healthz(health))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	viewHandler := handlers.NewViewHandler(facade)
	settingsHandler := handlers.NewSettingsHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	staffHandler := handlers.NewStaffHandler(facade)
	geocodeHandler := handlers.NewGeocodeHandler(facade)

	authRequired := middleware.AuthRequired(facade)

	// Outside the gzip group: the upgrade hijacks the raw writer.
	engine.GET("/api/restaurants/:rid/stream/:stream", hub.Handler(facade, middleware.ExtractToken))

	api := engine.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.GET("/me", authRequired, authHandler.Me)

	api.GET("/geocode/reverse", authRequired, geocodeHandler.Reverse)
	api.PUT("/admin/users/:uid/role", authRequired, staffHandler.UpdateRole)

	rest := api.Group("/restaurants/:rid")
	rest.GET("/products", catalogHandler.Products)
	rest.GET("/settings/invoice", settingsHandler.Invoice)
	rest.GET("/settings/delivery", settingsHandler.Delivery)
	rest.POST("/quote", orderHandler.Quote)
	rest.GET("/coupons/:code/preview", catalogHandler.PreviewCoupon)

	restAuth := rest.Group("")
	restAuth.Use(authRequired)
	restAuth.POST("/products", catalogHandler.CreateProduct)
	restAuth.PUT("/products/:pid", catalogHandler.UpdateProduct)
	restAuth.PUT("/settings/invoice", settingsHandler.SaveInvoice)
	restAuth.PUT("/settings/delivery", settingsHandler.SaveDelivery)

	restAuth.POST("/orders", orderHandler.Place)
	restAuth.GET("/orders/:oid", orderHandler.Get)
	restAuth.POST("/orders/:oid/transitions", orderHandler.Transition)

	restAuth.GET("/board", viewHandler.AdminBoard)
	restAuth.GET("/history", viewHandler.History)
	restAuth.GET("/metrics", viewHandler.Dashboard)
	restAuth.GET("/popular-items", viewHandler.PopularItems)
	restAuth.GET("/drivers", viewHandler.Drivers)
	restAuth.GET("/driver/board", viewHandler.DriverBoard)
	restAuth.GET("/my/orders", viewHandler.CustomerHistory)

	restAuth.GET("/coupons", catalogHandler.Coupons)
	restAuth.POST("/coupons", catalogHandler.CreateCoupon)
	restAuth.PUT("/coupons/:code", catalogHandler.UpdateCoupon)
	restAuth.DELETE("/coupons/:code", catalogHandler.DeleteCoupon)

	return engine
}

func healthz(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := health.HealthCheck(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
