package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/notify"
	"helpdesk/console/internal/scheduler"
	"helpdesk/console/internal/storage/memory"
)

// domainPollPrefix 域名验证轮询任务的 key 前缀
const domainPollPrefix = "domain-verify:"

var (
	ErrClaimNotFound  = errors.New("domain claim not found")
	ErrCheckThrottled = errors.New("propagation check rate limited")
)

// DomainVerificationService 自定义域名所有权验证编排服务
//
// 验证本身（DNS 查询、记录比对）由后端执行。本服务维护域名声明的
// 读模型，为每个 pending 声明保持一个后台轮询，并在验证出结果时
// 更新租户级状态与资料。
type DomainVerificationService struct {
	api          backend.API
	store        *memory.Store
	sched        *scheduler.PollingScheduler
	notifier     notify.Notifier
	limiter      *rate.Limiter
	pollInterval time.Duration
	log          *zap.Logger
}

// NewDomainVerificationService 创建域名验证服务
func NewDomainVerificationService(
	api backend.API,
	store *memory.Store,
	sched *scheduler.PollingScheduler,
	notifier notify.Notifier,
	pollInterval time.Duration,
	checkBurst int,
	log *zap.Logger,
) *DomainVerificationService {
	return &DomainVerificationService{
		api:          api,
		store:        store,
		sched:        sched,
		notifier:     notifier,
		limiter:      rate.NewLimiter(rate.Every(2*time.Second), checkBurst),
		pollInterval: pollInterval,
		log:          log,
	}
}

// Load 从后端拉取域名声明与租户状态，并为所有 pending 声明恢复轮询
//
// 已验证和已失败的声明是终态，重启后不再轮询。
func (s *DomainVerificationService) Load(ctx context.Context) error {
	claims, err := s.api.ListDomainClaims(ctx)
	if err != nil {
		return fmt.Errorf("load domain claims: %w", err)
	}
	s.store.ReplaceDomainClaims(claims)

	if status, serr := s.api.TenantDomainStatus(ctx); serr == nil {
		s.store.SetTenantStatus(status)
	} else {
		s.log.Warn("tenant domain status unavailable", zap.Error(serr))
	}
	if profile, perr := s.api.TenantProfile(ctx); perr == nil {
		s.store.SetTenantProfile(profile)
	}

	resumed := 0
	for i := range claims {
		if claims[i].Status == domain.ClaimStatusPending {
			s.startPolling(claims[i].ID)
			resumed++
		}
	}

	s.log.Info("domain claims loaded",
		zap.Int("claims", len(claims)),
		zap.Int("polling_resumed", resumed),
	)
	return nil
}

// List 返回本地域名声明读模型快照
func (s *DomainVerificationService) List() []domain.DomainClaim {
	return s.store.ListDomainClaims()
}

// Get 按 ID 返回域名声明
func (s *DomainVerificationService) Get(id string) (*domain.DomainClaim, error) {
	c, err := s.store.GetDomainClaim(id)
	if err != nil {
		return nil, ErrClaimNotFound
	}
	return c, nil
}

// Status 返回租户域名状态（本地读模型，可能为 nil）
func (s *DomainVerificationService) Status() *domain.TenantDomainStatus {
	return s.store.TenantStatus()
}

// Create 登记一个待验证的域名声明
//
// 域名先归一化再校验，非法域名不会产生网络请求。
// 创建成功后立刻为其启动后台轮询。
func (s *DomainVerificationService) Create(ctx context.Context, name string, method domain.VerifyMethod) (*domain.DomainClaim, error) {
	name = domain.NormalizeDomainName(name)
	if err := domain.ValidateDomainName(name); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, domain.ErrInvalidMethod
	}

	claim, err := s.api.CreateDomainClaim(ctx, name, method)
	if err != nil {
		return nil, err
	}

	s.store.SaveDomainClaim(claim)
	s.startPolling(claim.ID)

	s.log.Info("domain claim created",
		zap.String("claim_id", claim.ID),
		zap.String("domain", claim.Domain),
		zap.String("method", string(claim.Method)),
	)
	return claim, nil
}

// Verify 触发一次所有权验证并根据结果推进状态机
//
// silent 模式用于后台轮询：验证未通过时不打扰用户，只更新读模型。
// 验证通过是终态：停止该声明的轮询，重拉租户状态与资料
// （激活域名可能变化），并推送一次成功通知。
// 验证失败不停止轮询——过早的验证尝试（DNS 还在传播）会失败，
// 记录生效后的下一轮仍要有机会收敛。
// 后端不可达时返回传输错误且不改动本地状态。
func (s *DomainVerificationService) Verify(ctx context.Context, id string, silent bool) (*domain.DomainClaim, error) {
	if _, err := s.store.GetDomainClaim(id); err != nil {
		return nil, ErrClaimNotFound
	}

	claim, err := s.api.VerifyDomain(ctx, id)
	if err != nil {
		if !silent {
			s.notifier.Notify(notify.Toast(notify.LevelError, "无法连接验证服务，请稍后重试"))
		}
		return nil, err
	}

	s.store.SaveDomainClaim(claim)

	switch claim.Status {
	case domain.ClaimStatusVerified:
		s.sched.Stop(domainPollPrefix + id)
		s.refreshTenant(ctx)
		s.notifier.Notify(notify.Toast(notify.LevelSuccess, "域名验证成功"))
		s.notifier.Notify(notify.Refresh("domains"))
		s.log.Info("domain verified",
			zap.String("claim_id", claim.ID),
			zap.String("domain", claim.Domain),
		)
	case domain.ClaimStatusFailed:
		// 失败不是轮询终态：DNS 可能还没传播完，下一轮继续尝试
		if !silent {
			s.notifier.Notify(notify.Toast(notify.LevelError, "域名验证失败"))
		}
	default:
		// 记录还没生效，轮询继续
		if !silent {
			s.notifier.Notify(notify.Toast(notify.LevelInfo, "验证记录尚未生效，稍后会自动重试"))
		}
	}

	return claim, nil
}

// CheckPropagation 手动触发一次 DNS 传播检测
//
// 手动路径有速率限制，防止用户连点"立即检测"打爆后端解析器。
// 检测只报告记录可见性，不改变声明状态。
func (s *DomainVerificationService) CheckPropagation(ctx context.Context, id string) (*domain.PropagationReport, error) {
	if _, err := s.store.GetDomainClaim(id); err != nil {
		return nil, ErrClaimNotFound
	}
	if !s.limiter.Allow() {
		return nil, ErrCheckThrottled
	}
	return s.api.CheckPropagation(ctx, id)
}

// RegenerateToken 重新生成验证令牌
//
// 旧令牌立即作废。声明状态由后端决定，通常已验证域名会回到 pending。
func (s *DomainVerificationService) RegenerateToken(ctx context.Context, id string) (*domain.DomainClaim, error) {
	if _, err := s.store.GetDomainClaim(id); err != nil {
		return nil, ErrClaimNotFound
	}

	claim, err := s.api.RegenerateToken(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.SaveDomainClaim(claim)

	if claim.Status == domain.ClaimStatusPending {
		s.startPolling(claim.ID)
	}
	return claim, nil
}

// Guide 返回该声明的 DNS 配置指引
func (s *DomainVerificationService) Guide(ctx context.Context, id string) (*domain.SetupGuide, error) {
	if _, err := s.store.GetDomainClaim(id); err != nil {
		return nil, ErrClaimNotFound
	}
	return s.api.GetSetupGuide(ctx, id)
}

// Delete 移除域名声明并停止其轮询
func (s *DomainVerificationService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetDomainClaim(id); err != nil {
		return ErrClaimNotFound
	}
	if err := s.api.DeleteDomainClaim(ctx, id); err != nil {
		return err
	}

	s.sched.Stop(domainPollPrefix + id)
	s.store.DeleteDomainClaim(id)
	s.refreshTenant(ctx)

	s.log.Info("domain claim deleted", zap.String("claim_id", id))
	return nil
}

// PollingActive 报告某声明的后台轮询是否在运行（测试用）
func (s *DomainVerificationService) PollingActive(id string) bool {
	return s.sched.Active(domainPollPrefix + id)
}

// startPolling 为声明启动后台轮询
//
// 每一轮先做非变更的传播探测，观测到记录已传播才静默触发一次
// 权威验证；记录还没传播时这一轮什么都不做。后台探测不占用
// 手动"立即检测"的限流额度。
func (s *DomainVerificationService) startPolling(id string) {
	s.sched.Start(domainPollPrefix+id, s.pollInterval, func(ctx context.Context) error {
		report, err := s.api.CheckPropagation(ctx, id)
		if err != nil {
			if backend.IsRejection(err) {
				// 后端已经不认识这个声明，继续轮询没有意义
				s.sched.Stop(domainPollPrefix + id)
			}
			return err
		}
		if !report.Propagated {
			return nil
		}

		_, err = s.Verify(ctx, id, true)
		return err
	})
}

// refreshTenant 重拉租户域名状态与资料
func (s *DomainVerificationService) refreshTenant(ctx context.Context) {
	if status, err := s.api.TenantDomainStatus(ctx); err == nil {
		s.store.SetTenantStatus(status)
	} else {
		s.log.Warn("tenant domain status refetch failed", zap.Error(err))
	}
	if profile, err := s.api.TenantProfile(ctx); err == nil {
		s.store.SetTenantProfile(profile)
	}
}
