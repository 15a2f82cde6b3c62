package prefs

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store 客服个人界面偏好的持久化抽象
//
// 目前唯一的偏好是导航区的折叠状态：按区域名存一个布尔值。
// 读不到（从未设置或存储不可用）时一律视为未折叠。
type Store interface {
	SidebarCollapsed(ctx context.Context, agentID, area string) bool
	SetSidebarCollapsed(ctx context.Context, agentID, area string, collapsed bool) error
	Close() error
}

// RedisStore Redis 偏好存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 偏好存储实例
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	// 测试连接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func sidebarKey(agentID, area string) string {
	return fmt.Sprintf("console:prefs:sidebar:%s:%s", agentID, area)
}

// SidebarCollapsed 读取折叠状态，任何读取失败都按未折叠处理
func (s *RedisStore) SidebarCollapsed(ctx context.Context, agentID, area string) bool {
	val, err := s.client.Get(ctx, sidebarKey(agentID, area)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

// SetSidebarCollapsed 写入折叠状态（无过期时间）
func (s *RedisStore) SetSidebarCollapsed(ctx context.Context, agentID, area string, collapsed bool) error {
	val := "0"
	if collapsed {
		val = "1"
	}
	return s.client.Set(ctx, sidebarKey(agentID, area), val, 0).Err()
}

// Close 关闭 Redis 连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore 进程内偏好存储，未配置 Redis 时的降级实现
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]bool
}

// NewMemoryStore 创建内存偏好存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]bool)}
}

// SidebarCollapsed 读取折叠状态
func (s *MemoryStore) SidebarCollapsed(_ context.Context, agentID, area string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[sidebarKey(agentID, area)]
}

// SetSidebarCollapsed 写入折叠状态
func (s *MemoryStore) SetSidebarCollapsed(_ context.Context, agentID, area string, collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sidebarKey(agentID, area)] = collapsed
	return nil
}

// Close 空实现
func (s *MemoryStore) Close() error { return nil }
