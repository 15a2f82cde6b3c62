package backend

import (
	"context"
	"net/http"

	"helpdesk/console/internal/domain"
)

// ListDomainClaims 拉取全部域名声明
func (c *Client) ListDomainClaims(ctx context.Context) ([]domain.DomainClaim, error) {
	var out []domain.DomainClaim
	if err := c.do(ctx, http.MethodGet, "/api/v1/domains", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDomainClaim 创建域名声明，后端分配验证令牌与 DNS 记录对
func (c *Client) CreateDomainClaim(ctx context.Context, name string, method domain.VerifyMethod) (*domain.DomainClaim, error) {
	body := struct {
		Domain string              `json:"domain"`
		Method domain.VerifyMethod `json:"method"`
	}{Domain: name, Method: method}

	var out domain.DomainClaim
	if err := c.do(ctx, http.MethodPost, "/api/v1/domains", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDomainClaim 删除域名声明
func (c *Client) DeleteDomainClaim(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/domains/"+id, nil, nil)
}

// RegenerateToken 重新生成验证令牌。
// 后端返回携带新记录对的声明；验证状态不变，但用户已发布的记录随之失效。
func (c *Client) RegenerateToken(ctx context.Context, id string) (*domain.DomainClaim, error) {
	var out domain.DomainClaim
	if err := c.do(ctx, http.MethodPost, "/api/v1/domains/"+id+"/regenerate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyDomain 发起权威验证。后端返回刷新后的声明，
// 验证结果体现在返回声明的 Status 上；传输失败才返回 error。
func (c *Client) VerifyDomain(ctx context.Context, id string) (*domain.DomainClaim, error) {
	var out domain.DomainClaim
	if err := c.do(ctx, http.MethodPost, "/api/v1/domains/"+id+"/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckPropagation DNS 传播探测（非变更操作）
func (c *Client) CheckPropagation(ctx context.Context, id string) (*domain.PropagationReport, error) {
	var out domain.PropagationReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/domains/"+id+"/propagation", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSetupGuide 拉取域名配置指引
func (c *Client) GetSetupGuide(ctx context.Context, id string) (*domain.SetupGuide, error) {
	var out domain.SetupGuide
	if err := c.do(ctx, http.MethodGet, "/api/v1/domains/"+id+"/guide", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TenantDomainStatus 拉取租户级域名状态
func (c *Client) TenantDomainStatus(ctx context.Context) (*domain.TenantDomainStatus, error) {
	var out domain.TenantDomainStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/domains/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
