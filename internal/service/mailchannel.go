package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/notify"
	"helpdesk/console/internal/oauth"
	"helpdesk/console/internal/scheduler"
	"helpdesk/console/internal/storage/memory"
)

// mailPollPrefix 邮箱状态轮询任务的 key 前缀
const mailPollPrefix = "mail-sync:"

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrNotManualServer = errors.New("mailbox is not using a manual server provider")
)

// MailChannelService 邮箱通道编排服务
//
// 后端是邮箱实体的权威存储，本服务负责：前置校验、调用后端、
// 维护本地读模型、发起授权握手、并为 connecting 状态的邮箱维持轮询。
type MailChannelService struct {
	api          backend.API
	store        *memory.Store
	bridge       *oauth.Bridge
	sched        *scheduler.PollingScheduler
	notifier     notify.Notifier
	pollInterval time.Duration
	log          *zap.Logger
}

// NewMailChannelService 创建邮箱通道服务
func NewMailChannelService(
	api backend.API,
	store *memory.Store,
	bridge *oauth.Bridge,
	sched *scheduler.PollingScheduler,
	notifier notify.Notifier,
	pollInterval time.Duration,
	log *zap.Logger,
) *MailChannelService {
	return &MailChannelService{
		api:          api,
		store:        store,
		bridge:       bridge,
		sched:        sched,
		notifier:     notifier,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Load 从后端拉取邮箱与部门读模型，并为 connecting 状态的邮箱恢复轮询
//
// 服务启动时调用一次；之后由各写操作增量维护本地集合。
func (s *MailChannelService) Load(ctx context.Context) error {
	mailboxes, err := s.api.ListMailboxes(ctx)
	if err != nil {
		return fmt.Errorf("load mailboxes: %w", err)
	}
	s.store.ReplaceMailboxes(mailboxes)

	departments, err := s.api.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("load departments: %w", err)
	}
	s.store.SetDepartments(departments)

	for i := range mailboxes {
		if mailboxes[i].Status == domain.ConnectionStatusConnecting {
			s.startSync(mailboxes[i].ID)
		}
	}

	s.log.Info("mail channels loaded",
		zap.Int("mailboxes", len(mailboxes)),
		zap.Int("departments", len(departments)),
	)
	return nil
}

// List 返回本地邮箱读模型快照
func (s *MailChannelService) List() []domain.Mailbox {
	return s.store.ListMailboxes()
}

// Get 按 ID 返回邮箱
func (s *MailChannelService) Get(id string) (*domain.Mailbox, error) {
	m, err := s.store.GetMailbox(id)
	if err != nil {
		return nil, ErrMailboxNotFound
	}
	return m, nil
}

// Departments 返回部门读模型快照
func (s *MailChannelService) Departments() []domain.Department {
	return s.store.Departments()
}

// Refresh 重新从后端拉取单个邮箱并更新读模型
func (s *MailChannelService) Refresh(ctx context.Context, id string) (*domain.Mailbox, error) {
	m, err := s.api.GetMailbox(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.SaveMailbox(m)
	return m, nil
}

// CreateMailboxInput 创建邮箱的入参
type CreateMailboxInput struct {
	DisplayName  string
	Provider     domain.Provider
	Direction    domain.Direction
	DepartmentID *string
	Incoming     *domain.ServerSettings
	Outgoing     *domain.ServerSettings
}

// Create 创建邮箱通道
//
// 校验全部在本地先行，不合法的入参不会产生网络请求：
//   - 显示名必填，提供商与路由方向必须是已知枚举值；
//   - manual-server 提供商要求路由方向涉及的每个方向配置齐全。
func (s *MailChannelService) Create(ctx context.Context, input CreateMailboxInput) (*domain.Mailbox, error) {
	if input.DisplayName == "" {
		return nil, fmt.Errorf("%w: display_name", domain.ErrFieldRequired)
	}
	if !input.Provider.Valid() {
		return nil, domain.ErrInvalidProvider
	}
	if !input.Direction.Valid() {
		return nil, domain.ErrInvalidDirection
	}
	if input.Provider == domain.ProviderManualServer {
		if err := domain.ValidateManualServer(input.Direction, input.Incoming, input.Outgoing); err != nil {
			return nil, err
		}
	}

	m, err := s.api.CreateMailbox(ctx, backend.CreateMailboxRequest{
		DisplayName:  input.DisplayName,
		Provider:     input.Provider,
		Direction:    input.Direction,
		DepartmentID: input.DepartmentID,
		Incoming:     input.Incoming,
		Outgoing:     input.Outgoing,
	})
	if err != nil {
		return nil, err
	}

	s.store.SaveMailbox(m)
	if m.Status == domain.ConnectionStatusConnecting {
		s.startSync(m.ID)
	}

	s.log.Info("mailbox created",
		zap.String("mailbox_id", m.ID),
		zap.String("provider", string(m.Provider)),
	)
	return m, nil
}

// SwitchProvider 切换邮箱的提供商
//
// 切到当前提供商时是空操作。切换成功后本地一定清空旧提供商的
// 残留配置（服务器参数、转发别名），即使后端回包带了脏数据。
// 切到委托提供商时顺带发起授权握手；握手出错时切换本身已持久化，
// 错误原样上抛由调用方提示重试。
func (s *MailChannelService) SwitchProvider(ctx context.Context, id string, provider domain.Provider) (*domain.Mailbox, error) {
	current, err := s.store.GetMailbox(id)
	if err != nil {
		return nil, ErrMailboxNotFound
	}
	if current.Provider == provider {
		return current, nil
	}

	setup, ok := domain.SetupFor(provider)
	if !ok {
		return nil, domain.ErrInvalidProvider
	}

	updated, err := s.api.ChangeProvider(ctx, id, provider)
	if err != nil {
		return nil, err
	}

	updated.ApplySetup(setup)

	// 托管别名提供商需要后端立刻分配转发地址
	if provider == domain.ProviderHostedAlias {
		provisioned, err := s.api.ProvisionAlias(ctx, id)
		if err != nil {
			s.store.SaveMailbox(updated)
			return nil, err
		}
		updated = provisioned
	}

	s.store.SaveMailbox(updated)
	if updated.Status == domain.ConnectionStatusConnecting {
		s.startSync(updated.ID)
	} else {
		s.sched.Stop(mailPollPrefix + id)
	}

	s.log.Info("mailbox provider switched",
		zap.String("mailbox_id", id),
		zap.String("from", string(current.Provider)),
		zap.String("to", string(provider)),
	)

	// 委托提供商切换完立即要授权，不等用户再点一次
	if provider.Delegated() {
		if err := s.StartAuthorization(ctx, id, ""); err != nil {
			return nil, err
		}
		refreshed, err := s.store.GetMailbox(id)
		if err != nil {
			return nil, ErrMailboxNotFound
		}
		return refreshed, nil
	}
	return updated, nil
}

// StartAuthorization 对委托提供商的邮箱发起 OAuth 授权握手
//
// 握手结果通过错误类型区分：
//   - oauth.ErrPopupBlocked: 弹窗被阻止，邮箱状态不变，可直接重试；
//   - oauth.ErrHandshakeFailed: 提供商拒绝授权，邮箱进入 error 状态。
func (s *MailChannelService) StartAuthorization(ctx context.Context, id, returnTo string) error {
	m, err := s.store.GetMailbox(id)
	if err != nil {
		return ErrMailboxNotFound
	}
	if !m.Provider.Delegated() {
		return domain.ErrInvalidProvider
	}

	session, err := s.api.StartAuthorization(ctx, id, returnTo)
	if err != nil {
		return err
	}

	err = s.bridge.BeginAuthorization(ctx, session.URL)
	if err != nil {
		if errors.Is(err, oauth.ErrPopupBlocked) {
			// 弹窗被阻止不算握手失败，状态不动
			return err
		}
		if refreshed, rerr := s.api.GetMailbox(ctx, id); rerr == nil {
			s.store.SaveMailbox(refreshed)
		}
		s.notifier.Notify(notify.Toast(notify.LevelError, "邮箱授权失败"))
		return err
	}

	refreshed, err := s.api.GetMailbox(ctx, id)
	if err != nil {
		return err
	}
	s.store.SaveMailbox(refreshed)
	if refreshed.Status == domain.ConnectionStatusConnecting {
		s.startSync(id)
	}

	s.notifier.Notify(notify.Toast(notify.LevelSuccess, "邮箱授权成功"))
	s.log.Info("mailbox authorized", zap.String("mailbox_id", id))
	return nil
}

// SaveRouting 更新邮箱的显示名、路由方向与所属部门
func (s *MailChannelService) SaveRouting(ctx context.Context, id string, update backend.RoutingUpdate) (*domain.Mailbox, error) {
	if _, err := s.store.GetMailbox(id); err != nil {
		return nil, ErrMailboxNotFound
	}
	if update.DisplayName == "" {
		return nil, fmt.Errorf("%w: display_name", domain.ErrFieldRequired)
	}
	if !update.Direction.Valid() {
		return nil, domain.ErrInvalidDirection
	}

	m, err := s.api.UpdateRouting(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.store.SaveMailbox(m)

	// 部门与邮箱的关联可能随路由变化，重拉而不是本地修补
	if departments, derr := s.api.ListDepartments(ctx); derr == nil {
		s.store.SetDepartments(departments)
	} else {
		s.log.Warn("department refetch failed", zap.Error(derr))
	}

	return m, nil
}

// SaveServerSettings 更新 manual-server 邮箱的服务器参数
//
// 补丁语义：nil 字段表示"保持不变"，密码字段缺省时后端保留旧值，
// 所以界面无需回显明文密码也能保存其他改动。保存不触发自动试连。
func (s *MailChannelService) SaveServerSettings(ctx context.Context, id string, update domain.ServerSettingsUpdate) (*domain.Mailbox, error) {
	m, err := s.store.GetMailbox(id)
	if err != nil {
		return nil, ErrMailboxNotFound
	}
	if m.Provider != domain.ProviderManualServer {
		return nil, ErrNotManualServer
	}
	// 合并补丁后按方向校验必填字段，缺字段的保存不该打到后端
	if err := domain.ValidateServerSettingsUpdate(m.Direction, m.Incoming, m.Outgoing, update); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateServerSettings(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.store.SaveMailbox(updated)
	return updated, nil
}

// Delete 删除邮箱通道并停止其轮询
func (s *MailChannelService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetMailbox(id); err != nil {
		return ErrMailboxNotFound
	}
	if err := s.api.DeleteMailbox(ctx, id); err != nil {
		return err
	}

	s.sched.Stop(mailPollPrefix + id)
	s.store.DeleteMailbox(id)
	s.log.Info("mailbox deleted", zap.String("mailbox_id", id))
	return nil
}

// SyncActive 报告某邮箱的状态轮询是否在运行（测试用）
func (s *MailChannelService) SyncActive(id string) bool {
	return s.sched.Active(mailPollPrefix + id)
}

// startSync 为 connecting 状态的邮箱启动状态轮询
//
// 轮询到终态（connected/error/disconnected）时停止并推送通知。
func (s *MailChannelService) startSync(id string) {
	s.sched.Start(mailPollPrefix+id, s.pollInterval, func(ctx context.Context) error {
		m, err := s.api.GetMailbox(ctx, id)
		if err != nil {
			// 邮箱在后端已不存在时继续轮询没有意义；
			// 暂时不可达则留到下个周期再试
			if backend.IsRejection(err) {
				s.sched.Stop(mailPollPrefix + id)
			}
			return err
		}
		s.store.SaveMailbox(m)

		switch m.Status {
		case domain.ConnectionStatusConnecting:
			return nil
		case domain.ConnectionStatusConnected:
			s.notifier.Notify(notify.Toast(notify.LevelSuccess, "邮箱已连接"))
		case domain.ConnectionStatusError:
			s.notifier.Notify(notify.Toast(notify.LevelError, "邮箱连接失败"))
		}
		s.sched.Stop(mailPollPrefix + id)
		return nil
	})
}
