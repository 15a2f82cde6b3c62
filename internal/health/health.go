package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"helpdesk/console/internal/backend"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	api    backend.API
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
//
// pingRedis 为 nil 时不注册 Redis 检查（未配置偏好存储的部署）。
func NewHealthChecker(api backend.API, pingRedis healthcheck.Check, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		api:    api,
		logger: logger,
	}

	// 存活检查只看进程自身
	hc.health.AddLivenessCheck("goroutine", healthcheck.GoroutineCountCheck(2048))

	// 后端不可达时控制台只能提供只读快照，算未就绪
	hc.health.AddReadinessCheck("backend", hc.backendCheck())

	if pingRedis != nil {
		hc.health.AddReadinessCheck("redis", pingRedis)
	}

	return hc
}

// backendCheck 后端连通性检查
func (hc *HealthChecker) backendCheck() healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return hc.api.Ping(ctx)
	}
}

// Handler 返回健康检查处理器
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// LiveEndpoint 存活探针
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint 就绪探针
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}
