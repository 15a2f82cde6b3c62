package backend

import (
	"context"

	"helpdesk/console/internal/domain"
)

// API 聚合后端暴露给控制台的全部端点。
// 服务层依赖该接口而非具体客户端，便于测试替换。
type API interface {
	Ping(ctx context.Context) error

	// ========== 邮箱通道 ==========
	ListMailboxes(ctx context.Context) ([]domain.Mailbox, error)
	GetMailbox(ctx context.Context, id string) (*domain.Mailbox, error)
	CreateMailbox(ctx context.Context, req CreateMailboxRequest) (*domain.Mailbox, error)
	DeleteMailbox(ctx context.Context, id string) error
	UpdateRouting(ctx context.Context, id string, update RoutingUpdate) (*domain.Mailbox, error)
	ChangeProvider(ctx context.Context, id string, provider domain.Provider) (*domain.Mailbox, error)
	StartAuthorization(ctx context.Context, id, returnTo string) (*AuthorizationSession, error)
	ProvisionAlias(ctx context.Context, id string) (*domain.Mailbox, error)
	UpdateServerSettings(ctx context.Context, id string, update domain.ServerSettingsUpdate) (*domain.Mailbox, error)
	ValidateCredentials(ctx context.Context, candidate domain.ServerCredentials) (*domain.CredentialReport, error)

	// ========== 自定义域名 ==========
	ListDomainClaims(ctx context.Context) ([]domain.DomainClaim, error)
	CreateDomainClaim(ctx context.Context, name string, method domain.VerifyMethod) (*domain.DomainClaim, error)
	DeleteDomainClaim(ctx context.Context, id string) error
	RegenerateToken(ctx context.Context, id string) (*domain.DomainClaim, error)
	VerifyDomain(ctx context.Context, id string) (*domain.DomainClaim, error)
	CheckPropagation(ctx context.Context, id string) (*domain.PropagationReport, error)
	GetSetupGuide(ctx context.Context, id string) (*domain.SetupGuide, error)
	TenantDomainStatus(ctx context.Context) (*domain.TenantDomainStatus, error)

	// ========== 派生读模型 ==========
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	TenantProfile(ctx context.Context) (*domain.TenantProfile, error)
}

var _ API = (*Client)(nil)
