package memory

import (
	"errors"
	"sort"
	"sync"

	"helpdesk/console/internal/domain"
)

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrClaimNotFound   = errors.New("domain claim not found")
)

// Store 控制台本地读模型存储。
//
// 后端是权威数据源，这里只缓存各控制器拥有的实体集合与派生读模型；
// 写入只能由对应控制器发起，UI 消费方一律只读。
type Store struct {
	mu           sync.RWMutex
	mailboxes    map[string]*domain.Mailbox
	claims       map[string]*domain.DomainClaim
	departments  []domain.Department
	tenantStatus *domain.TenantDomainStatus
	profile      *domain.TenantProfile
}

// NewStore 创建读模型存储
func NewStore() *Store {
	return &Store{
		mailboxes: make(map[string]*domain.Mailbox),
		claims:    make(map[string]*domain.DomainClaim),
	}
}

// ========== 邮箱读模型 ==========

// SaveMailbox 写入或覆盖一条邮箱
func (s *Store) SaveMailbox(m *domain.Mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *m
	s.mailboxes[m.ID] = &clone
}

// GetMailbox 按 ID 读取邮箱（返回副本）
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mailboxes[id]
	if !ok {
		return nil, ErrMailboxNotFound
	}
	clone := *m
	return &clone, nil
}

// ListMailboxes 返回全部邮箱快照，按 ID 稳定排序
func (s *Store) ListMailboxes() []domain.Mailbox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Mailbox, 0, len(s.mailboxes))
	for _, m := range s.mailboxes {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeleteMailbox 删除邮箱
func (s *Store) DeleteMailbox(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mailboxes, id)
}

// ReplaceMailboxes 用后端权威列表整体替换本地集合
func (s *Store) ReplaceMailboxes(list []domain.Mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mailboxes = make(map[string]*domain.Mailbox, len(list))
	for i := range list {
		clone := list[i]
		s.mailboxes[clone.ID] = &clone
	}
}

// ========== 域名读模型 ==========

// SaveDomainClaim 写入或覆盖一条域名声明
func (s *Store) SaveDomainClaim(c *domain.DomainClaim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.claims[c.ID] = &clone
}

// GetDomainClaim 按 ID 读取域名声明（返回副本）
func (s *Store) GetDomainClaim(id string) (*domain.DomainClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, ErrClaimNotFound
	}
	clone := *c
	return &clone, nil
}

// ListDomainClaims 返回全部域名声明快照，按域名稳定排序
func (s *Store) ListDomainClaims() []domain.DomainClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DomainClaim, 0, len(s.claims))
	for _, c := range s.claims {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// DeleteDomainClaim 删除域名声明
func (s *Store) DeleteDomainClaim(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, id)
}

// ReplaceDomainClaims 用后端权威列表整体替换本地集合
func (s *Store) ReplaceDomainClaims(list []domain.DomainClaim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = make(map[string]*domain.DomainClaim, len(list))
	for i := range list {
		clone := list[i]
		s.claims[clone.ID] = &clone
	}
}

// ========== 派生读模型 ==========

// SetDepartments 整体替换部门读模型（变更后重新拉取，不做乐观修补）
func (s *Store) SetDepartments(list []domain.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = append([]domain.Department(nil), list...)
}

// Departments 返回部门读模型快照
func (s *Store) Departments() []domain.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Department(nil), s.departments...)
}

// SetTenantStatus 更新租户域名状态
func (s *Store) SetTenantStatus(status *domain.TenantDomainStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == nil {
		s.tenantStatus = nil
		return
	}
	clone := *status
	s.tenantStatus = &clone
}

// TenantStatus 返回租户域名状态（可能为 nil）
func (s *Store) TenantStatus() *domain.TenantDomainStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tenantStatus == nil {
		return nil
	}
	clone := *s.tenantStatus
	return &clone
}

// SetTenantProfile 更新租户资料
func (s *Store) SetTenantProfile(p *domain.TenantProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.profile = nil
		return
	}
	clone := *p
	s.profile = &clone
}

// TenantProfile 返回租户资料（可能为 nil）
func (s *Store) TenantProfile() *domain.TenantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	clone := *s.profile
	return &clone
}
