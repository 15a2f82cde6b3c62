package notify

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 通知类型
const (
	TypeToast      = "toast"       // 前端弹出提示条
	TypeOpenWindow = "open_window" // 要求前端打开授权弹窗
	TypeRefresh    = "refresh"     // 要求前端重新拉取某个读模型
)

// 通知级别
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification 推送给控制台前端的一条通知
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level,omitempty"`
	Message   string    `json:"message,omitempty"`
	URL       string    `json:"url,omitempty"`      // open_window 时要打开的地址
	Resource  string    `json:"resource,omitempty"` // refresh 时要重拉的资源名
	CreatedAt time.Time `json:"created_at"`
}

// Notifier 向前端推送通知的抽象
type Notifier interface {
	Notify(n Notification)
}

// Toast 构造一条提示通知
func Toast(level, message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      TypeToast,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// OpenWindow 构造一条打开弹窗的指令通知
func OpenWindow(url string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      TypeOpenWindow,
		URL:       url,
		CreatedAt: time.Now(),
	}
}

// Refresh 构造一条资源刷新通知
func Refresh(resource string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      TypeRefresh,
		Resource:  resource,
		CreatedAt: time.Now(),
	}
}

// LogNotifier 把通知写入日志，用于测试和无 WebSocket 的部署
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify 记录通知内容
func (n *LogNotifier) Notify(notification Notification) {
	n.log.Info("notification",
		zap.String("type", notification.Type),
		zap.String("level", notification.Level),
		zap.String("message", notification.Message),
		zap.String("resource", notification.Resource),
	)
}
