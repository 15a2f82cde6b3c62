package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helpdesk/console/internal/oauth"
)

// OAuthCallbackHandler 第三方授权回调处理器
//
// 授权窗口在同意或拒绝后被提供商重定向到这里。页面把结果投递给
// 等待中的授权桥，然后自行关闭。state 不匹配的投递会被桥忽略，
// 所以陈旧或伪造的回调不会影响任何等待中的握手。
type OAuthCallbackHandler struct {
	bridge *oauth.Bridge
	log    *zap.Logger
}

// NewOAuthCallbackHandler 创建回调处理器
func NewOAuthCallbackHandler(bridge *oauth.Bridge, log *zap.Logger) *OAuthCallbackHandler {
	return &OAuthCallbackHandler{bridge: bridge, log: log}
}

// 自关闭页面，展示结果后尝试关闭授权窗口
const callbackPage = `<!DOCTYPE html>
<html lang="zh">
<head><meta charset="utf-8"><title>邮箱授权</title></head>
<body>
<p>%s</p>
<script>window.setTimeout(function () { window.close(); }, 1500);</script>
</body>
</html>`

// Callback godoc
// @Summary 授权完成回调
// @Description 提供商重定向的落地页，把完成消息投递给授权桥
// @Tags OAuth
// @Produce html
// @Param state query string true "授权会话 state"
// @Param status query string true "success 或 failure"
// @Param error query string false "失败原因"
// @Router /oauth/callback [get]
func (h *OAuthCallbackHandler) Callback(c *gin.Context) {
	msg := oauth.CompletionMessage{
		Type:   oauth.MessageType,
		State:  c.Query("state"),
		Status: c.Query("status"),
		Error:  c.Query("error"),
	}

	delivered := h.bridge.Deliver(msg)
	if !delivered {
		h.log.Warn("authorization callback without waiter",
			zap.String("state", msg.State),
			zap.String("status", msg.Status),
		)
	}

	text := "授权已完成，本窗口即将关闭。"
	if msg.Status != oauth.StatusSuccess {
		text = "授权未完成，本窗口即将关闭。"
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, callbackPage, text)
}
