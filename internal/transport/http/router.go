package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"helpdesk/console/internal/config"
	"helpdesk/console/internal/health"
	"helpdesk/console/internal/middleware"
	"helpdesk/console/internal/monitoring"
	"helpdesk/console/internal/oauth"
	"helpdesk/console/internal/prefs"
	"helpdesk/console/internal/service"
	"helpdesk/console/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config              *config.Config
	MailChannelService  *service.MailChannelService
	CredentialService   *service.CredentialService
	DomainService       *service.DomainVerificationService
	Bridge              *oauth.Bridge
	PrefsStore          prefs.Store
	WebSocketHub        *websocket.Hub
	HealthChecker       *health.HealthChecker
	Metrics             *monitoring.Metrics
	Logger              *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())

	// 管理接口没有大请求体，1MB 足够
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	if deps.Metrics != nil {
		mm := middleware.NewMonitoringMiddleware(deps.Metrics)
		router.Use(mm.HTTPMetrics())
	}

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	mailHandler := NewMailChannelHandler(deps.MailChannelService, deps.CredentialService, deps.Metrics)
	domainHandler := NewDomainClaimHandler(deps.DomainService, deps.Metrics)
	prefsHandler := NewPrefsHandler(deps.PrefsStore, deps.Logger)
	callbackHandler := NewOAuthCallbackHandler(deps.Bridge, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.Config.Auth.JWTSecret, deps.Config.Auth.Issuer, deps.Logger)

	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查与指标
	if deps.HealthChecker != nil {
		router.GET("/health", gin.WrapF(deps.HealthChecker.LiveEndpoint))
		router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyEndpoint))
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// 第三方授权回调（授权窗口落地页，无需认证）
	router.GET("/oauth/callback", callbackHandler.Callback)

	// V1 API
	v1 := router.Group("/v1")

	// WebSocket 自带 token 认证（浏览器无法在握手时带自定义头）
	if deps.WebSocketHub != nil {
		v1.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
	}

	v1.Use(jwtAuth.RequireAuth())
	{
		// ========== Mail Channel Routes ==========
		channelRoutes := v1.Group("/mail-channels")
		{
			channelRoutes.GET("", mailHandler.ListChannels)
			channelRoutes.POST("", mailHandler.CreateChannel)
			channelRoutes.POST("/test-credentials", mailHandler.TestCredentials)
			channelRoutes.GET("/:id", mailHandler.GetChannel)
			channelRoutes.DELETE("/:id", mailHandler.DeleteChannel)
			channelRoutes.PUT("/:id/routing", mailHandler.SaveRouting)
			channelRoutes.PUT("/:id/provider", mailHandler.SwitchProvider)
			channelRoutes.PUT("/:id/server-settings", mailHandler.SaveServerSettings)
			channelRoutes.POST("/:id/authorize", mailHandler.Authorize)
		}

		// ========== Department Routes ==========
		v1.GET("/departments", mailHandler.ListDepartments)

		// ========== Domain Routes ==========
		domainRoutes := v1.Group("/domains")
		{
			domainRoutes.GET("", domainHandler.ListClaims)
			domainRoutes.POST("", domainHandler.AddClaim)
			domainRoutes.GET("/status", domainHandler.GetStatus)
			domainRoutes.GET("/:id", domainHandler.GetClaim)
			domainRoutes.DELETE("/:id", domainHandler.DeleteClaim)
			domainRoutes.POST("/:id/verify", domainHandler.VerifyClaim)
			domainRoutes.POST("/:id/check", domainHandler.CheckClaim)
			domainRoutes.POST("/:id/regenerate", domainHandler.RegenerateToken)
			domainRoutes.GET("/:id/guide", domainHandler.GetGuide)
		}

		// ========== Preference Routes ==========
		prefRoutes := v1.Group("/prefs")
		{
			prefRoutes.GET("/sidebar", prefsHandler.GetSidebar)
			prefRoutes.PUT("/sidebar", prefsHandler.SetSidebar)
		}
	}

	return router
}
