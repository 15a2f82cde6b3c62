package httptransport

import (
	"helpdesk/console/internal/domain"
	"helpdesk/console/internal/oauth"
	"helpdesk/console/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 入参校验错误
	domain.ErrInvalidDomain:    "域名格式无效",
	domain.ErrInvalidProvider:  "未知的邮箱接入方式",
	domain.ErrInvalidDirection: "未知的路由方向",
	domain.ErrInvalidMethod:    "未知的验证方式",

	// 邮箱通道错误
	service.ErrMailboxNotFound:  "邮箱通道不存在",
	service.ErrNotManualServer:  "该邮箱未使用自建服务器接入",
	service.ErrValidationFailed: "服务器凭据测试未通过",

	// 授权握手错误
	oauth.ErrPopupBlocked:    "授权窗口被浏览器阻止，请允许弹窗后重试",
	oauth.ErrHandshakeFailed: "邮箱授权失败",

	// 域名验证错误
	service.ErrClaimNotFound:  "域名声明不存在",
	service.ErrCheckThrottled: "检测过于频繁，请稍后再试",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"

	// 上游相关
	MsgBackendUnavailable = "工单系统后端暂时不可用，请稍后重试"

	// 邮箱通道相关
	MsgMailboxCreateFailed  = "创建邮箱通道失败"
	MsgMailboxDeleteFailed  = "删除邮箱通道失败"
	MsgRoutingSaveFailed    = "保存路由设置失败"
	MsgProviderSwitchFailed = "切换接入方式失败"
	MsgServerSettingsFailed = "保存服务器设置失败"
	MsgAuthorizationFailed  = "发起邮箱授权失败"

	// 域名验证相关
	MsgDomainAddFailed        = "添加域名失败"
	MsgDomainVerifyFailed     = "验证域名失败"
	MsgDomainDeleteFailed     = "删除域名失败"
	MsgDomainCheckFailed      = "检测DNS记录失败"
	MsgDomainRegenerateFailed = "重新生成验证令牌失败"
	MsgDomainGuideFailed      = "获取配置说明失败"

	// 偏好相关
	MsgPrefsSaveFailed = "保存界面偏好失败"
)
