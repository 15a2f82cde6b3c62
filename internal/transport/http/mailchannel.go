package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/monitoring"
	"helpdesk/console/internal/oauth"
	"helpdesk/console/internal/service"
)

// MailChannelHandler 邮箱通道处理器
type MailChannelHandler struct {
	channels *service.MailChannelService
	creds    *service.CredentialService
	metrics  *monitoring.Metrics
}

// NewMailChannelHandler 创建邮箱通道处理器
func NewMailChannelHandler(channels *service.MailChannelService, creds *service.CredentialService, metrics *monitoring.Metrics) *MailChannelHandler {
	return &MailChannelHandler{
		channels: channels,
		creds:    creds,
		metrics:  metrics,
	}
}

// ListChannels godoc
// @Summary 获取邮箱通道列表
// @Description 返回租户的全部邮箱通道
// @Tags Mail Channels
// @Produce json
// @Success 200 {array} domain.Mailbox
// @Router /v1/mail-channels [get]
func (h *MailChannelHandler) ListChannels(c *gin.Context) {
	mailboxes := h.channels.List()
	if mailboxes == nil {
		mailboxes = []domain.Mailbox{}
	}
	Success(c, mailboxes)
}

// GetChannel godoc
// @Summary 获取邮箱通道详情
// @Tags Mail Channels
// @Produce json
// @Param id path string true "邮箱ID"
// @Success 200 {object} domain.Mailbox
// @Failure 404 {object} Response
// @Router /v1/mail-channels/{id} [get]
func (h *MailChannelHandler) GetChannel(c *gin.Context) {
	m, err := h.channels.Get(c.Param("id"))
	if err != nil {
		NotFound(c, GetErrorMessage(service.ErrMailboxNotFound))
		return
	}
	Success(c, m)
}

// CreateChannelRequest 创建邮箱通道请求
type CreateChannelRequest struct {
	DisplayName  string                 `json:"displayName" binding:"required"`
	Provider     string                 `json:"provider" binding:"required"`
	Direction    string                 `json:"direction" binding:"required"`
	DepartmentID *string                `json:"departmentId"`
	Incoming     *domain.ServerSettings `json:"incoming"`
	Outgoing     *domain.ServerSettings `json:"outgoing"`
}

// CreateChannel godoc
// @Summary 创建邮箱通道
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param request body CreateChannelRequest true "通道信息"
// @Success 201 {object} domain.Mailbox
// @Failure 400 {object} Response
// @Router /v1/mail-channels [post]
func (h *MailChannelHandler) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	m, err := h.channels.Create(c.Request.Context(), service.CreateMailboxInput{
		DisplayName:  req.DisplayName,
		Provider:     domain.Provider(req.Provider),
		Direction:    domain.Direction(req.Direction),
		DepartmentID: req.DepartmentID,
		Incoming:     req.Incoming,
		Outgoing:     req.Outgoing,
	})
	if err != nil {
		h.respondError(c, err, MsgMailboxCreateFailed)
		return
	}

	h.metrics.RecordMailboxCreated()
	Created(c, m)
}

// DeleteChannel godoc
// @Summary 删除邮箱通道
// @Tags Mail Channels
// @Param id path string true "邮箱ID"
// @Success 204 {object} Response
// @Failure 404 {object} Response
// @Router /v1/mail-channels/{id} [delete]
func (h *MailChannelHandler) DeleteChannel(c *gin.Context) {
	if err := h.channels.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, MsgMailboxDeleteFailed)
		return
	}

	h.metrics.RecordMailboxDeleted()
	NoContent(c)
}

// SaveRoutingRequest 路由设置请求
type SaveRoutingRequest struct {
	DisplayName  string  `json:"displayName" binding:"required"`
	Direction    string  `json:"direction" binding:"required"`
	DepartmentID *string `json:"departmentId"`
}

// SaveRouting godoc
// @Summary 保存路由设置
// @Description 更新显示名、路由方向与所属部门，与接入方式无关
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param id path string true "邮箱ID"
// @Param request body SaveRoutingRequest true "路由设置"
// @Success 200 {object} domain.Mailbox
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /v1/mail-channels/{id}/routing [put]
func (h *MailChannelHandler) SaveRouting(c *gin.Context) {
	var req SaveRoutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	m, err := h.channels.SaveRouting(c.Request.Context(), c.Param("id"), backend.RoutingUpdate{
		DisplayName:  req.DisplayName,
		Direction:    domain.Direction(req.Direction),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.respondError(c, err, MsgRoutingSaveFailed)
		return
	}

	Success(c, m)
}

// SwitchProviderRequest 切换接入方式请求
type SwitchProviderRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// SwitchProvider godoc
// @Summary 切换邮箱接入方式
// @Description 切到当前接入方式时是空操作，切换会清空旧方式的残留配置；切到委托方式时顺带发起授权握手
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param id path string true "邮箱ID"
// @Param request body SwitchProviderRequest true "目标接入方式"
// @Success 200 {object} domain.Mailbox
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Router /v1/mail-channels/{id}/provider [put]
func (h *MailChannelHandler) SwitchProvider(c *gin.Context) {
	var req SwitchProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	m, err := h.channels.SwitchProvider(c.Request.Context(), c.Param("id"), domain.Provider(req.Provider))
	if err != nil {
		// 切换本身已持久化，握手错误提示用户在详情页重试授权
		switch {
		case errors.Is(err, oauth.ErrPopupBlocked):
			h.metrics.RecordAuthorization("popup_blocked")
			UnprocessableEntity(c, GetErrorMessage(oauth.ErrPopupBlocked))
		case errors.Is(err, oauth.ErrHandshakeFailed):
			h.metrics.RecordAuthorization("failure")
			UnprocessableEntity(c, GetErrorMessage(oauth.ErrHandshakeFailed))
		default:
			h.respondError(c, err, MsgProviderSwitchFailed)
		}
		return
	}

	h.metrics.RecordProviderSwitch(req.Provider)
	Success(c, m)
}

// SaveServerSettings godoc
// @Summary 保存服务器设置
// @Description 补丁语义：缺省的密码字段保留旧值，显式空串才是清空
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param id path string true "邮箱ID"
// @Param request body domain.ServerSettingsUpdate true "服务器设置补丁"
// @Success 200 {object} domain.Mailbox
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /v1/mail-channels/{id}/server-settings [put]
func (h *MailChannelHandler) SaveServerSettings(c *gin.Context) {
	var update domain.ServerSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	m, err := h.channels.SaveServerSettings(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err, MsgServerSettingsFailed)
		return
	}

	Success(c, m)
}

// AuthorizeRequest 发起授权请求
type AuthorizeRequest struct {
	ReturnTo string `json:"returnTo"`
}

// Authorize godoc
// @Summary 发起 OAuth 授权握手
// @Description 同步等待授权窗口的完成消息；弹窗被阻止与授权被拒是两类错误
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param id path string true "邮箱ID"
// @Success 200 {object} domain.Mailbox
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Router /v1/mail-channels/{id}/authorize [post]
func (h *MailChannelHandler) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	// 请求体可选
	_ = c.ShouldBindJSON(&req)

	id := c.Param("id")
	if err := h.channels.StartAuthorization(c.Request.Context(), id, req.ReturnTo); err != nil {
		switch {
		case errors.Is(err, oauth.ErrPopupBlocked):
			h.metrics.RecordAuthorization("popup_blocked")
			UnprocessableEntity(c, GetErrorMessage(oauth.ErrPopupBlocked))
		case errors.Is(err, oauth.ErrHandshakeFailed):
			h.metrics.RecordAuthorization("failure")
			UnprocessableEntity(c, GetErrorMessage(oauth.ErrHandshakeFailed))
		default:
			h.respondError(c, err, MsgAuthorizationFailed)
		}
		return
	}

	h.metrics.RecordAuthorization("success")
	m, err := h.channels.Get(id)
	if err != nil {
		NotFound(c, GetErrorMessage(service.ErrMailboxNotFound))
		return
	}
	Success(c, m)
}

// TestCredentialsRequest 凭据测试请求
type TestCredentialsRequest struct {
	Direction string                 `json:"direction" binding:"required"`
	Incoming  *domain.ServerSettings `json:"incoming"`
	Outgoing  *domain.ServerSettings `json:"outgoing"`
}

// TestCredentials godoc
// @Summary 测试服务器凭据
// @Description 执行后端 dry-run 试连，不保存任何配置
// @Tags Mail Channels
// @Accept json
// @Produce json
// @Param request body TestCredentialsRequest true "待测凭据"
// @Success 200 {object} domain.CredentialReport
// @Failure 400 {object} Response
// @Failure 422 {object} Response
// @Failure 502 {object} Response
// @Router /v1/mail-channels/test-credentials [post]
func (h *MailChannelHandler) TestCredentials(c *gin.Context) {
	var req TestCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	report, err := h.creds.Validate(c.Request.Context(), domain.ServerCredentials{
		Direction: domain.Direction(req.Direction),
		Incoming:  req.Incoming,
		Outgoing:  req.Outgoing,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed):
			// 测试失败仍带回逐方向报告
			h.metrics.RecordCredentialTest("rejected")
			UnprocessableEntityWithData(c, GetErrorMessage(service.ErrValidationFailed), report)
		case errors.Is(err, backend.ErrUnavailable):
			h.metrics.RecordCredentialTest("unreachable")
			BadGateway(c, MsgBackendUnavailable)
		default:
			h.metrics.RecordCredentialTest("invalid")
			BadRequest(c, err.Error())
		}
		return
	}

	h.metrics.RecordCredentialTest("success")
	Success(c, report)
}

// ListDepartments godoc
// @Summary 获取部门列表
// @Tags Mail Channels
// @Produce json
// @Success 200 {array} domain.Department
// @Router /v1/departments [get]
func (h *MailChannelHandler) ListDepartments(c *gin.Context) {
	departments := h.channels.Departments()
	if departments == nil {
		departments = []domain.Department{}
	}
	Success(c, departments)
}

// respondError 按错误类别映射 HTTP 响应
func (h *MailChannelHandler) respondError(c *gin.Context, err error, fallback string) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, service.ErrMailboxNotFound):
		NotFound(c, GetErrorMessage(service.ErrMailboxNotFound))
	case errors.Is(err, domain.ErrInvalidProvider),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrFieldRequired):
		BadRequest(c, GetValidationMessage(err))
	case errors.Is(err, service.ErrNotManualServer):
		Conflict(c, GetErrorMessage(service.ErrNotManualServer))
	case errors.Is(err, backend.ErrUnavailable):
		BadGateway(c, MsgBackendUnavailable)
	case errors.As(err, &apiErr):
		// 后端显式拒绝，透传其状态码与消息
		Error(c, apiErr.Status, apiErr.Message)
	default:
		InternalError(c, fallback)
	}
}

// GetValidationMessage 入参校验错误的提示消息
//
// 字段缺失错误保留具体字段名，其余校验错误用映射表里的中文消息。
func GetValidationMessage(err error) string {
	if errors.Is(err, domain.ErrFieldRequired) {
		return err.Error()
	}
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}
