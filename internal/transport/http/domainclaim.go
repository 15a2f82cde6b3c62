package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/monitoring"
	"helpdesk/console/internal/service"
)

// DomainClaimHandler 自定义域名处理器
type DomainClaimHandler struct {
	domains *service.DomainVerificationService
	metrics *monitoring.Metrics
}

// NewDomainClaimHandler 创建自定义域名处理器
func NewDomainClaimHandler(domains *service.DomainVerificationService, metrics *monitoring.Metrics) *DomainClaimHandler {
	return &DomainClaimHandler{
		domains: domains,
		metrics: metrics,
	}
}

// ListClaims godoc
// @Summary 获取域名声明列表
// @Tags Domains
// @Produce json
// @Success 200 {array} domain.DomainClaim
// @Router /v1/domains [get]
func (h *DomainClaimHandler) ListClaims(c *gin.Context) {
	claims := h.domains.List()
	if claims == nil {
		claims = []domain.DomainClaim{}
	}
	Success(c, claims)
}

// GetClaim godoc
// @Summary 获取域名声明详情
// @Tags Domains
// @Produce json
// @Param id path string true "声明ID"
// @Success 200 {object} domain.DomainClaim
// @Failure 404 {object} Response
// @Router /v1/domains/{id} [get]
func (h *DomainClaimHandler) GetClaim(c *gin.Context) {
	claim, err := h.domains.Get(c.Param("id"))
	if err != nil {
		NotFound(c, GetErrorMessage(service.ErrClaimNotFound))
		return
	}
	Success(c, claim)
}

// AddClaimRequest 登记域名请求
type AddClaimRequest struct {
	Domain string `json:"domain" binding:"required"`
	Method string `json:"method" binding:"required,oneof=dns_txt dns_cname"`
}

// AddClaim godoc
// @Summary 登记待验证的域名
// @Description 创建后立即开始后台轮询验证
// @Tags Domains
// @Accept json
// @Produce json
// @Param request body AddClaimRequest true "域名信息"
// @Success 201 {object} domain.DomainClaim
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /v1/domains [post]
func (h *DomainClaimHandler) AddClaim(c *gin.Context) {
	var req AddClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	claim, err := h.domains.Create(c.Request.Context(), req.Domain, domain.VerifyMethod(req.Method))
	if err != nil {
		h.respondError(c, err, MsgDomainAddFailed)
		return
	}

	h.metrics.RecordClaimCreated()
	Created(c, claim)
}

// DeleteClaim godoc
// @Summary 删除域名声明
// @Tags Domains
// @Param id path string true "声明ID"
// @Success 204 {object} Response
// @Failure 404 {object} Response
// @Router /v1/domains/{id} [delete]
func (h *DomainClaimHandler) DeleteClaim(c *gin.Context) {
	if err := h.domains.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, MsgDomainDeleteFailed)
		return
	}
	NoContent(c)
}

// VerifyClaim godoc
// @Summary 立即验证域名所有权
// @Description 手动触发一次验证；结果通过声明状态反映
// @Tags Domains
// @Produce json
// @Param id path string true "声明ID"
// @Success 200 {object} domain.DomainClaim
// @Failure 404 {object} Response
// @Failure 502 {object} Response
// @Router /v1/domains/{id}/verify [post]
func (h *DomainClaimHandler) VerifyClaim(c *gin.Context) {
	claim, err := h.domains.Verify(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		h.respondError(c, err, MsgDomainVerifyFailed)
		return
	}

	h.metrics.RecordVerification(string(claim.Status))
	Success(c, claim)
}

// CheckClaim godoc
// @Summary 检测DNS记录传播情况
// @Description 只报告记录可见性，不改变声明状态；手动路径有速率限制
// @Tags Domains
// @Produce json
// @Param id path string true "声明ID"
// @Success 200 {object} domain.PropagationReport
// @Failure 404 {object} Response
// @Failure 429 {object} Response
// @Router /v1/domains/{id}/check [post]
func (h *DomainClaimHandler) CheckClaim(c *gin.Context) {
	report, err := h.domains.CheckPropagation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCheckThrottled) {
			TooManyRequests(c, GetErrorMessage(service.ErrCheckThrottled))
			return
		}
		h.respondError(c, err, MsgDomainCheckFailed)
		return
	}

	h.metrics.RecordPropagationCheck()
	Success(c, report)
}

// RegenerateToken godoc
// @Summary 重新生成验证令牌
// @Description 旧令牌立即作废
// @Tags Domains
// @Produce json
// @Param id path string true "声明ID"
// @Success 200 {object} domain.DomainClaim
// @Failure 404 {object} Response
// @Router /v1/domains/{id}/regenerate [post]
func (h *DomainClaimHandler) RegenerateToken(c *gin.Context) {
	claim, err := h.domains.RegenerateToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, MsgDomainRegenerateFailed)
		return
	}
	Success(c, claim)
}

// GetGuide godoc
// @Summary 获取DNS配置指引
// @Tags Domains
// @Produce json
// @Param id path string true "声明ID"
// @Success 200 {object} domain.SetupGuide
// @Failure 404 {object} Response
// @Router /v1/domains/{id}/guide [get]
func (h *DomainClaimHandler) GetGuide(c *gin.Context) {
	guide, err := h.domains.Guide(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, MsgDomainGuideFailed)
		return
	}
	Success(c, guide)
}

// GetStatus godoc
// @Summary 获取租户域名状态
// @Description 返回激活域名与各状态声明的统计
// @Tags Domains
// @Produce json
// @Success 200 {object} domain.TenantDomainStatus
// @Router /v1/domains/status [get]
func (h *DomainClaimHandler) GetStatus(c *gin.Context) {
	status := h.domains.Status()
	if status == nil {
		status = &domain.TenantDomainStatus{}
	}
	Success(c, status)
}

// respondError 按错误类别映射 HTTP 响应
func (h *DomainClaimHandler) respondError(c *gin.Context, err error, fallback string) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, service.ErrClaimNotFound):
		NotFound(c, GetErrorMessage(service.ErrClaimNotFound))
	case errors.Is(err, domain.ErrInvalidDomain),
		errors.Is(err, domain.ErrInvalidMethod):
		BadRequest(c, GetValidationMessage(err))
	case errors.Is(err, backend.ErrUnavailable):
		BadGateway(c, MsgBackendUnavailable)
	case errors.As(err, &apiErr):
		Error(c, apiErr.Status, apiErr.Message)
	default:
		InternalError(c, fallback)
	}
}
