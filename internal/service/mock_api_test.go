package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/notify"
)

// MockAPI 模拟后端接口
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAPI) ListMailboxes(ctx context.Context) ([]domain.Mailbox, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Mailbox), args.Error(1)
}

func (m *MockAPI) GetMailbox(ctx context.Context, id string) (*domain.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) CreateMailbox(ctx context.Context, req backend.CreateMailboxRequest) (*domain.Mailbox, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) DeleteMailbox(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPI) UpdateRouting(ctx context.Context, id string, update backend.RoutingUpdate) (*domain.Mailbox, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) ChangeProvider(ctx context.Context, id string, provider domain.Provider) (*domain.Mailbox, error) {
	args := m.Called(ctx, id, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) StartAuthorization(ctx context.Context, id, returnTo string) (*backend.AuthorizationSession, error) {
	args := m.Called(ctx, id, returnTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.AuthorizationSession), args.Error(1)
}

func (m *MockAPI) ProvisionAlias(ctx context.Context, id string) (*domain.Mailbox, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) UpdateServerSettings(ctx context.Context, id string, update domain.ServerSettingsUpdate) (*domain.Mailbox, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mailbox), args.Error(1)
}

func (m *MockAPI) ValidateCredentials(ctx context.Context, candidate domain.ServerCredentials) (*domain.CredentialReport, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialReport), args.Error(1)
}

func (m *MockAPI) ListDomainClaims(ctx context.Context) ([]domain.DomainClaim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DomainClaim), args.Error(1)
}

func (m *MockAPI) CreateDomainClaim(ctx context.Context, name string, method domain.VerifyMethod) (*domain.DomainClaim, error) {
	args := m.Called(ctx, name, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DomainClaim), args.Error(1)
}

func (m *MockAPI) DeleteDomainClaim(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPI) RegenerateToken(ctx context.Context, id string) (*domain.DomainClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DomainClaim), args.Error(1)
}

func (m *MockAPI) VerifyDomain(ctx context.Context, id string) (*domain.DomainClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DomainClaim), args.Error(1)
}

func (m *MockAPI) CheckPropagation(ctx context.Context, id string) (*domain.PropagationReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PropagationReport), args.Error(1)
}

func (m *MockAPI) GetSetupGuide(ctx context.Context, id string) (*domain.SetupGuide, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SetupGuide), args.Error(1)
}

func (m *MockAPI) TenantDomainStatus(ctx context.Context) (*domain.TenantDomainStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantDomainStatus), args.Error(1)
}

func (m *MockAPI) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockAPI) TenantProfile(ctx context.Context) (*domain.TenantProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantProfile), args.Error(1)
}

var _ backend.API = (*MockAPI)(nil)

// captureNotifier 记录推送的通知，供断言使用
type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (c *captureNotifier) Notify(n notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
}

func (c *captureNotifier) all() []notify.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Notification, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *captureNotifier) count(typ, level string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, sent := range c.sent {
		if sent.Type == typ && sent.Level == level {
			n++
		}
	}
	return n
}
