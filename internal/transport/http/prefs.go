package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helpdesk/console/internal/prefs"
)

// PrefsHandler 客服界面偏好处理器
type PrefsHandler struct {
	store prefs.Store
	log   *zap.Logger
}

// NewPrefsHandler 创建偏好处理器
func NewPrefsHandler(store prefs.Store, log *zap.Logger) *PrefsHandler {
	return &PrefsHandler{store: store, log: log}
}

// SidebarPref 导航区折叠偏好
type SidebarPref struct {
	Area      string `json:"area"`
	Collapsed bool   `json:"collapsed"`
}

// GetSidebar godoc
// @Summary 读取导航区折叠状态
// @Description 从未设置或读取失败时按未折叠处理
// @Tags Preferences
// @Produce json
// @Param area query string false "导航区域名，默认 settings"
// @Success 200 {object} SidebarPref
// @Router /v1/prefs/sidebar [get]
func (h *PrefsHandler) GetSidebar(c *gin.Context) {
	agentID := c.GetString("agentID")
	area := c.DefaultQuery("area", "settings")

	Success(c, SidebarPref{
		Area:      area,
		Collapsed: h.store.SidebarCollapsed(c.Request.Context(), agentID, area),
	})
}

// SetSidebar godoc
// @Summary 保存导航区折叠状态
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body SidebarPref true "折叠状态"
// @Success 200 {object} SidebarPref
// @Failure 400 {object} Response
// @Router /v1/prefs/sidebar [put]
func (h *PrefsHandler) SetSidebar(c *gin.Context) {
	agentID := c.GetString("agentID")

	var req SidebarPref
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if req.Area == "" {
		req.Area = "settings"
	}

	if err := h.store.SetSidebarCollapsed(c.Request.Context(), agentID, req.Area, req.Collapsed); err != nil {
		h.log.Warn("sidebar pref save failed", zap.Error(err))
		InternalError(c, MsgPrefsSaveFailed)
		return
	}

	Success(c, req)
}
