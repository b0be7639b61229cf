package routers

import (
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/middleware"
	"github.com/haierkeys/fast-asset-delivery/internal/routers/api_router"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// NewRouter builds the public engine: gated delivery endpoints plus the JSON api
// NewRouter 创建对外路由：受控下载接口与 JSON 接口
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()
	logger := appContainer.Logger()

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))
	r.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
	r.Use(middleware.AccessLogWithLogger(logger))
	r.Use(middleware.LangWithTranslator(uni))
	r.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))

	deliveryHandler := api_router.NewDeliveryHandler(appContainer)
	productHandler := api_router.NewProductHandler(appContainer)
	healthHandler := api_router.NewHealthHandler(appContainer)
	versionHandler := api_router.NewVersionHandler(appContainer)

	// 下载接口自带按用户的窗口限流，不叠加接口令牌桶，也不设上下文超时
	delivery := r.Group("", middleware.NoStore())
	{
		delivery.GET("/download/:resource", deliveryHandler.Download)
		delivery.GET("/access", deliveryHandler.Access)
	}

	api := r.Group("/api")
	{
		if rate := cfg.App.ApiRateLimit; rate > 0 {
			api.Use(middleware.RateLimiter(limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
				Key:          "/api",
				FillInterval: time.Second,
				Capacity:     rate,
				Quantum:      rate,
			})))
		}

		api.GET("/health", middleware.ContextTimeout(5*time.Second), healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		auth := api.Group("/products", middleware.UserAuthTokenWithConfig(appContainer.TokenManager))
		auth.GET("/:id/download-link",
			middleware.NoStore(),
			middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout)*time.Second),
			productHandler.DownloadLink)
		auth.POST("/:id/file", productHandler.UploadFile)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
