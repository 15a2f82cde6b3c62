package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/config"
	"helpdesk/console/internal/health"
	"helpdesk/console/internal/logger"
	"helpdesk/console/internal/monitoring"
	"helpdesk/console/internal/notify"
	"helpdesk/console/internal/oauth"
	"helpdesk/console/internal/prefs"
	"helpdesk/console/internal/scheduler"
	"helpdesk/console/internal/service"
	"helpdesk/console/internal/storage/memory"
	httptransport "helpdesk/console/internal/transport/http"
	"helpdesk/console/internal/websocket"
)

// main 启动工单系统的邮箱与域名管理控制台服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting helpdesk console",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 后端 API 客户端
	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout, log)

	// 本地读模型存储
	store := memory.NewStore()

	// 偏好存储：配置了 Redis 就用 Redis，否则退回进程内存储
	var prefStore prefs.Store
	if cfg.Redis.Address != "" {
		redisStore, err := prefs.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory prefs", zap.Error(err))
			prefStore = prefs.NewMemoryStore()
		} else {
			log.Info("using redis preference store", zap.String("address", cfg.Redis.Address))
			prefStore = redisStore
		}
	} else {
		prefStore = prefs.NewMemoryStore()
	}
	defer prefStore.Close()

	// 监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(api, nil, log)

	// WebSocket Hub 与通知器
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, cfg.Auth.JWTSecret, log)
	notifier := websocket.NewHubNotifier(wsHub)

	// 授权桥：生产环境由前端执行 window.open，
	// 这里通过 WebSocket 推送 open_window 指令
	opener := oauth.OpenerFunc(func(authorizationURL string) error {
		if wsHub.Sessions() == 0 {
			return fmt.Errorf("no console session connected")
		}
		notifier.Notify(notify.OpenWindow(authorizationURL))
		return nil
	})
	bridge := oauth.NewBridge(opener, log)

	// 轮询调度器与业务服务
	sched := scheduler.New(log)
	channelService := service.NewMailChannelService(
		api, store, bridge, sched, notifier, cfg.Verification.PollInterval, log,
	)
	credentialService := service.NewCredentialService(api, log)
	domainService := service.NewDomainVerificationService(
		api, store, sched, notifier, cfg.Verification.PollInterval, cfg.Verification.CheckBurst, log,
	)

	// 启动时装载读模型并恢复未完成的轮询
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	if err := channelService.Load(loadCtx); err != nil {
		log.Warn("initial mailbox load failed, continuing with empty read model", zap.Error(err))
	}
	if err := domainService.Load(loadCtx); err != nil {
		log.Warn("initial domain load failed, continuing with empty read model", zap.Error(err))
	}
	cancelLoad()

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:             cfg,
		MailChannelService: channelService,
		CredentialService:  credentialService,
		DomainService:      domainService,
		Bridge:             bridge,
		PrefsStore:         prefStore,
		WebSocketHub:       wsHub,
		HealthChecker:      healthChecker,
		Metrics:            metrics,
		Logger:             log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second, // 授权握手会同步等待回调
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// WebSocket Hub goroutine
	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	// 定期把调度器与会话规模写入指标 goroutine
	group.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				metrics.UpdatePollingTimers(sched.Size())
				metrics.UpdateSessionsOnline(wsHub.Sessions())
			}
		}
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		// 先停后台轮询与等待中的握手，再关 HTTP
		sched.StopAll()
		bridge.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	// 等待所有 goroutine 完成
	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("console exited cleanly")
}
