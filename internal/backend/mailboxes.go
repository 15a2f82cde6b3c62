package backend

import (
	"context"
	"net/http"

	"helpdesk/console/internal/domain"
)

// CreateMailboxRequest 创建邮箱通道请求。
// 服务器凭据仅在 provider 为 manual-server 时携带。
type CreateMailboxRequest struct {
	DisplayName  string                 `json:"displayName"`
	Provider     domain.Provider        `json:"provider"`
	Direction    domain.Direction       `json:"direction"`
	DepartmentID *string                `json:"departmentId,omitempty"`
	Incoming     *domain.ServerSettings `json:"incoming,omitempty"`
	Outgoing     *domain.ServerSettings `json:"outgoing,omitempty"`
}

// RoutingUpdate 路由元数据更新（与接入方式无关）
type RoutingUpdate struct {
	DisplayName  string           `json:"displayName"`
	Direction    domain.Direction `json:"direction"`
	DepartmentID *string          `json:"departmentId"`
}

// AuthorizationSession 后端签发的授权会话。
// URL 指向第三方同意页，State 为回调消息中必须回传的一次性随机值。
type AuthorizationSession struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ListMailboxes 拉取全部邮箱通道
func (c *Client) ListMailboxes(ctx context.Context) ([]domain.Mailbox, error) {
	var out []domain.Mailbox
	if err := c.do(ctx, http.MethodGet, "/api/v1/channels/mailboxes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMailbox 拉取单个邮箱通道
func (c *Client) GetMailbox(ctx context.Context, id string) (*domain.Mailbox, error) {
	var out domain.Mailbox
	if err := c.do(ctx, http.MethodGet, "/api/v1/channels/mailboxes/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMailbox 创建邮箱通道
func (c *Client) CreateMailbox(ctx context.Context, req CreateMailboxRequest) (*domain.Mailbox, error) {
	var out domain.Mailbox
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels/mailboxes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMailbox 删除邮箱通道
func (c *Client) DeleteMailbox(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/channels/mailboxes/"+id, nil, nil)
}

// UpdateRouting 更新路由元数据
func (c *Client) UpdateRouting(ctx context.Context, id string, update RoutingUpdate) (*domain.Mailbox, error) {
	var out domain.Mailbox
	if err := c.do(ctx, http.MethodPut, "/api/v1/channels/mailboxes/"+id+"/routing", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeProvider 切换接入方式
func (c *Client) ChangeProvider(ctx context.Context, id string, provider domain.Provider) (*domain.Mailbox, error) {
	body := struct {
		Provider domain.Provider `json:"provider"`
	}{Provider: provider}

	var out domain.Mailbox
	if err := c.do(ctx, http.MethodPut, "/api/v1/channels/mailboxes/"+id+"/provider", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartAuthorization 申请授权会话（返回第三方同意页地址）
func (c *Client) StartAuthorization(ctx context.Context, id, returnTo string) (*AuthorizationSession, error) {
	body := struct {
		ReturnTo string `json:"returnTo"`
	}{ReturnTo: returnTo}

	var out AuthorizationSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels/mailboxes/"+id+"/authorize", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProvisionAlias 为邮箱签发托管转发别名
func (c *Client) ProvisionAlias(ctx context.Context, id string) (*domain.Mailbox, error) {
	var out domain.Mailbox
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels/mailboxes/"+id+"/alias", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateServerSettings 更新服务器凭据。
// 未设置的字段（含密码）不会出现在载荷中，后端保持原值。
func (c *Client) UpdateServerSettings(ctx context.Context, id string, update domain.ServerSettingsUpdate) (*domain.Mailbox, error) {
	var out domain.Mailbox
	if err := c.do(ctx, http.MethodPut, "/api/v1/channels/mailboxes/"+id+"/server-settings", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCredentials 凭据连通性试运行（无持久化副作用）
func (c *Client) ValidateCredentials(ctx context.Context, candidate domain.ServerCredentials) (*domain.CredentialReport, error) {
	var out domain.CredentialReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels/validate", candidate, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDepartments 拉取部门读模型
func (c *Client) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	if err := c.do(ctx, http.MethodGet, "/api/v1/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TenantProfile 拉取租户资料
func (c *Client) TenantProfile(ctx context.Context) (*domain.TenantProfile, error) {
	var out domain.TenantProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/tenant/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
