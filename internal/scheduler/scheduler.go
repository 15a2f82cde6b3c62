package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action 定时执行的任务。返回的错误只会被记录，不会终止调度——
// 瞬时网络故障是常态，不能让它打断一个正在收敛的验证过程。
type Action func(ctx context.Context) error

type entry struct {
	cancel context.CancelFunc
}

// PollingScheduler 按 key 管理的周期任务调度器。
//
// 不变式：同一 key 同一时间至多一个活跃定时器；对已运行的 key 再次
// Start 会先停掉旧定时器。Stop 幂等，StopAll 用于整体下线，下线后
// 残留定时器视为缺陷。
type PollingScheduler struct {
	mu     sync.Mutex
	timers map[string]*entry
	log    *zap.Logger
}

// New 创建调度器
func New(log *zap.Logger) *PollingScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingScheduler{
		timers: make(map[string]*entry),
		log:    log,
	}
}

// Start 为 key 启动周期任务，每 interval 执行一次 action，
// 直到 Stop(key) 或 StopAll。若该 key 已有定时器，先将其停止。
func (s *PollingScheduler) Start(key string, interval time.Duration, action Action) {
	s.mu.Lock()
	if prev, ok := s.timers[key]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.timers[key] = &entry{cancel: cancel}
	s.mu.Unlock()

	s.log.Debug("polling started",
		zap.String("key", key),
		zap.Duration("interval", interval),
	)

	go s.run(ctx, key, interval, action)
}

func (s *PollingScheduler) run(ctx context.Context, key string, interval time.Duration, action Action) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.invoke(ctx, key, action)
		}
	}
}

// invoke 执行一次任务，吞掉错误与 panic
func (s *PollingScheduler) invoke(ctx context.Context, key string, action Action) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("polling action panicked",
				zap.String("key", key),
				zap.Any("panic", r),
			)
		}
	}()

	if err := action(ctx); err != nil {
		s.log.Warn("polling action failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Stop 停止 key 对应的定时器。key 未运行时为安全空操作。
func (s *PollingScheduler) Stop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[key]; ok {
		e.cancel()
		delete(s.timers, key)
		s.log.Debug("polling stopped", zap.String("key", key))
	}
}

// StopAll 停止全部定时器（控制器下线时调用）
func (s *PollingScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.timers {
		e.cancel()
		delete(s.timers, key)
	}
}

// Active 判断 key 是否有活跃定时器
func (s *PollingScheduler) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Size 返回活跃定时器数量
func (s *PollingScheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
