package oauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testAuthURL = "https://login.provider.example/authorize?client_id=console&state=st-123"

// openerStub 可控的 WindowOpener 测试替身
type openerStub struct {
	err    error
	opened []string
}

func (o *openerStub) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}

func TestBridge_BeginAuthorization(t *testing.T) {
	t.Run("成功完成信号返回nil", func(t *testing.T) {
		opener := &openerStub{}
		b := NewBridge(opener, nil)

		done := make(chan error, 1)
		go func() {
			done <- b.BeginAuthorization(context.Background(), testAuthURL)
		}()

		// 等待监听器挂上再投递
		assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, 5*time.Millisecond)

		delivered := b.Deliver(CompletionMessage{
			Type:   MessageType,
			State:  "st-123",
			Status: StatusSuccess,
		})
		assert.True(t, delivered)

		assert.NoError(t, <-done)
		assert.Equal(t, []string{testAuthURL}, opener.opened)
		assert.Equal(t, 0, b.Pending(), "完成后监听器应被注销")
	})

	t.Run("失败完成信号返回握手错误", func(t *testing.T) {
		b := NewBridge(&openerStub{}, nil)

		done := make(chan error, 1)
		go func() {
			done <- b.BeginAuthorization(context.Background(), testAuthURL)
		}()
		assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, 5*time.Millisecond)

		b.Deliver(CompletionMessage{
			Type:   MessageType,
			State:  "st-123",
			Status: StatusFailure,
			Error:  "consent_denied",
		})

		err := <-done
		assert.ErrorIs(t, err, ErrHandshakeFailed)
		assert.Contains(t, err.Error(), "consent_denied")
	})

	t.Run("窗口被拦截返回弹窗错误", func(t *testing.T) {
		opener := &openerStub{err: errors.New("no console session connected")}
		b := NewBridge(opener, nil)

		err := b.BeginAuthorization(context.Background(), testAuthURL)

		assert.ErrorIs(t, err, ErrPopupBlocked)
		assert.NotErrorIs(t, err, ErrHandshakeFailed, "弹窗拦截与握手失败是两类错误")
		assert.Equal(t, 0, b.Pending())
	})

	t.Run("缺少state参数直接拒绝", func(t *testing.T) {
		opener := &openerStub{}
		b := NewBridge(opener, nil)

		err := b.BeginAuthorization(context.Background(), "https://login.provider.example/authorize?client_id=console")

		assert.ErrorIs(t, err, ErrMissingState)
		assert.Empty(t, opener.opened, "无法路由完成消息时不应打开窗口")
	})

	t.Run("用户关闭窗口后由ctx超时兜底", func(t *testing.T) {
		b := NewBridge(&openerStub{}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		err := b.BeginAuthorization(ctx, testAuthURL)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, b.Pending())
	})
}

func TestBridge_Deliver(t *testing.T) {
	t.Run("判别标识不符的消息被忽略", func(t *testing.T) {
		b := NewBridge(&openerStub{}, nil)

		done := make(chan error, 1)
		go func() { done <- b.BeginAuthorization(context.Background(), testAuthURL) }()
		assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, 5*time.Millisecond)

		assert.False(t, b.Deliver(CompletionMessage{Type: "window_resize", State: "st-123", Status: StatusSuccess}))
		assert.False(t, b.Deliver(CompletionMessage{State: "st-123", Status: StatusSuccess}))
		assert.Equal(t, 1, b.Pending(), "噪声消息不应settle等待者")

		b.Deliver(CompletionMessage{Type: MessageType, State: "st-123", Status: StatusSuccess})
		assert.NoError(t, <-done)
	})

	t.Run("未注册state的消息被忽略", func(t *testing.T) {
		b := NewBridge(&openerStub{}, nil)

		assert.False(t, b.Deliver(CompletionMessage{
			Type:   MessageType,
			State:  "unknown",
			Status: StatusSuccess,
		}))
	})

	t.Run("同一state重复投递只有一次生效", func(t *testing.T) {
		b := NewBridge(&openerStub{}, nil)

		done := make(chan error, 1)
		go func() { done <- b.BeginAuthorization(context.Background(), testAuthURL) }()
		assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, 5*time.Millisecond)

		msg := CompletionMessage{Type: MessageType, State: "st-123", Status: StatusSuccess}
		assert.True(t, b.Deliver(msg))
		assert.NoError(t, <-done)

		// 等待者settle并注销后，重复投递被当作未知 state 忽略
		assert.Eventually(t, func() bool { return b.Pending() == 0 }, time.Second, 5*time.Millisecond)
		assert.False(t, b.Deliver(msg))
	})
}

func TestBridge_ConcurrentAuthorizations(t *testing.T) {
	// 连续接入多个邮箱：各自的完成消息按 state 路由，互不串扰
	b := NewBridge(&openerStub{}, nil)

	doneA := make(chan error, 1)
	doneB := make(chan error, 1)
	go func() {
		doneA <- b.BeginAuthorization(context.Background(), "https://login.example/authorize?state=st-a")
	}()
	go func() {
		doneB <- b.BeginAuthorization(context.Background(), "https://login.example/authorize?state=st-b")
	}()
	assert.Eventually(t, func() bool { return b.Pending() == 2 }, time.Second, 5*time.Millisecond)

	b.Deliver(CompletionMessage{Type: MessageType, State: "st-b", Status: StatusFailure})
	b.Deliver(CompletionMessage{Type: MessageType, State: "st-a", Status: StatusSuccess})

	assert.NoError(t, <-doneA)
	assert.ErrorIs(t, <-doneB, ErrHandshakeFailed)
}

func TestBridge_Close(t *testing.T) {
	b := NewBridge(&openerStub{}, nil)

	done := make(chan error, 1)
	go func() { done <- b.BeginAuthorization(context.Background(), testAuthURL) }()
	assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, 5*time.Millisecond)

	b.Close()

	assert.ErrorIs(t, <-done, ErrBridgeClosed)
	assert.Equal(t, 0, b.Pending())

	// 关闭后的新授权尝试直接拒绝
	err := b.BeginAuthorization(context.Background(), testAuthURL)
	assert.ErrorIs(t, err, ErrBridgeClosed)

	assert.NotPanics(t, func() { b.Close() })
}

func TestBridge_DeliverDuringClose(t *testing.T) {
	// settle与关闭并发时不得向已关闭的通道写入；
	// 等待者要么收到完成消息，要么被关闭唤醒，但一定会醒来
	for i := 0; i < 50; i++ {
		b := NewBridge(&openerStub{}, nil)

		done := make(chan error, 1)
		go func() { done <- b.BeginAuthorization(context.Background(), testAuthURL) }()
		assert.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Deliver(CompletionMessage{Type: MessageType, State: "st-123", Status: StatusSuccess})
		}()
		go func() {
			defer wg.Done()
			b.Close()
		}()
		wg.Wait()

		if err := <-done; err != nil {
			assert.ErrorIs(t, err, ErrBridgeClosed)
		}
		assert.False(t, b.Deliver(CompletionMessage{Type: MessageType, State: "st-123", Status: StatusSuccess}))
	}
}
