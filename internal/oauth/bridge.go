package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// MessageType 授权完成消息的固定判别标识。
// 缺少该标识的消息一律忽略，以容忍回调端点上的无关噪声。
const MessageType = "mail_authorization_complete"

// StatusSuccess / StatusFailure 完成消息的两种结果
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// ErrPopupBlocked 二级窗口打开失败（浏览器拦截弹窗等）。
	// 与握手失败消息是两类错误：补救方式分别是放行弹窗与修复授权。
	ErrPopupBlocked = errors.New("authorization window blocked")
	// ErrHandshakeFailed 授权窗口回传了失败消息
	ErrHandshakeFailed = errors.New("authorization handshake failed")
	// ErrMissingState 授权地址缺少 state 参数，无法路由完成消息
	ErrMissingState = errors.New("authorization url missing state")
	// ErrBridgeClosed 桥在等待期间被整体关闭
	ErrBridgeClosed = errors.New("authorization bridge closed")
)

// CompletionMessage 授权窗口回传的结构化完成消息
type CompletionMessage struct {
	Type   string `json:"type"`
	State  string `json:"state"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WindowOpener 负责打开二级浏览上下文。
// 生产环境通过通知推送让前端执行 window.open；测试中可直接替换。
type WindowOpener interface {
	Open(authorizationURL string) error
}

// OpenerFunc 函数式 WindowOpener 适配器
type OpenerFunc func(authorizationURL string) error

func (f OpenerFunc) Open(authorizationURL string) error { return f(authorizationURL) }

// Bridge 把基于弹窗的授权流程建模为一次单发异步调用：
// 每次授权尝试注册一个以 state 为键的一次性监听器，
// 收到匹配的完成消息即settle并注销，避免连续接入多个邮箱时监听器串扰。
type Bridge struct {
	mu      sync.Mutex
	opener  WindowOpener
	waiters map[string]chan CompletionMessage
	closed  bool
	log     *zap.Logger
}

// NewBridge 创建授权桥
func NewBridge(opener WindowOpener, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		opener:  opener,
		waiters: make(map[string]chan CompletionMessage),
		log:     log,
	}
}

// BeginAuthorization 打开授权窗口并等待唯一的完成信号。
//
// 成功信号返回 nil；失败信号返回 ErrHandshakeFailed；窗口打开失败
// 返回 ErrPopupBlocked。用户直接关掉窗口时不会有任何消息，本方法
// 不设超时——调用方通过 ctx 控制等待上限。
func (b *Bridge) BeginAuthorization(ctx context.Context, authorizationURL string) error {
	state, err := extractState(authorizationURL)
	if err != nil {
		return err
	}

	ch, err := b.subscribe(state)
	if err != nil {
		return err
	}
	defer b.unsubscribe(state)

	if err := b.opener.Open(authorizationURL); err != nil {
		return fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return ErrBridgeClosed
		}
		if msg.Status == StatusSuccess {
			return nil
		}
		if msg.Error != "" {
			return fmt.Errorf("%w: %s", ErrHandshakeFailed, msg.Error)
		}
		return ErrHandshakeFailed
	}
}

// Deliver 投递一条完成消息（由回调端点调用）。
// 判别标识不符或 state 未注册的消息被忽略并返回 false。
func (b *Bridge) Deliver(msg CompletionMessage) bool {
	if msg.Type != MessageType {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.waiters[msg.State]
	if !ok {
		// 未注册、已settle或桥已关闭，同一 state 的重复投递也落在这里
		b.log.Debug("authorization message for unknown state ignored",
			zap.String("state", msg.State),
		)
		return false
	}

	// 先注销再发送：Close 不会再碰这个通道，发生settle与关闭的
	// 竞争时不可能向已关闭的通道写入。通道带一格缓冲，持锁发送
	// 不会阻塞。
	delete(b.waiters, msg.State)
	ch <- msg
	return true
}

// Pending 返回当前在等待完成信号的授权尝试数
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}

// Close 关闭桥，唤醒所有等待者（控制台下线时调用）
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for state, ch := range b.waiters {
		close(ch)
		delete(b.waiters, state)
	}
}

func (b *Bridge) subscribe(state string) (chan CompletionMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBridgeClosed
	}
	if _, ok := b.waiters[state]; ok {
		return nil, fmt.Errorf("authorization already in flight for state %q", state)
	}

	ch := make(chan CompletionMessage, 1)
	b.waiters[state] = ch
	return ch, nil
}

func (b *Bridge) unsubscribe(state string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.waiters, state)
}

func extractState(authorizationURL string) (string, error) {
	u, err := url.Parse(authorizationURL)
	if err != nil {
		return "", fmt.Errorf("parse authorization url: %w", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		return "", ErrMissingState
	}
	return state, nil
}
