package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"helpdesk/console/internal/domain"
)

func TestStore_Mailboxes(t *testing.T) {
	store := NewStore()

	t.Run("保存并读取邮箱", func(t *testing.T) {
		store.SaveMailbox(&domain.Mailbox{ID: "mb-1", DisplayName: "售后支持"})

		got, err := store.GetMailbox("mb-1")
		assert.NoError(t, err)
		assert.Equal(t, "售后支持", got.DisplayName)
	})

	t.Run("读取不存在的邮箱返回哨兵错误", func(t *testing.T) {
		_, err := store.GetMailbox("nope")
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("返回的是副本不是内部引用", func(t *testing.T) {
		got, _ := store.GetMailbox("mb-1")
		got.DisplayName = "mutated"

		again, _ := store.GetMailbox("mb-1")
		assert.Equal(t, "售后支持", again.DisplayName)
	})

	t.Run("列表按ID稳定排序", func(t *testing.T) {
		store.SaveMailbox(&domain.Mailbox{ID: "mb-9"})
		store.SaveMailbox(&domain.Mailbox{ID: "mb-3"})

		list := store.ListMailboxes()
		assert.Len(t, list, 3)
		assert.Equal(t, "mb-1", list[0].ID)
		assert.Equal(t, "mb-3", list[1].ID)
		assert.Equal(t, "mb-9", list[2].ID)
	})

	t.Run("删除邮箱", func(t *testing.T) {
		store.DeleteMailbox("mb-9")
		_, err := store.GetMailbox("mb-9")
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("整体替换覆盖旧快照", func(t *testing.T) {
		store.ReplaceMailboxes([]domain.Mailbox{{ID: "mb-new"}})

		list := store.ListMailboxes()
		assert.Len(t, list, 1)
		assert.Equal(t, "mb-new", list[0].ID)
	})
}

func TestStore_DomainClaims(t *testing.T) {
	store := NewStore()

	t.Run("保存并读取认领", func(t *testing.T) {
		store.SaveDomainClaim(&domain.DomainClaim{
			ID:     "dc-1",
			Domain: "support.example.com",
			Status: domain.ClaimStatusPending,
		})

		got, err := store.GetDomainClaim("dc-1")
		assert.NoError(t, err)
		assert.Equal(t, "support.example.com", got.Domain)
	})

	t.Run("读取不存在的认领返回哨兵错误", func(t *testing.T) {
		_, err := store.GetDomainClaim("nope")
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})

	t.Run("列表按域名稳定排序", func(t *testing.T) {
		store.SaveDomainClaim(&domain.DomainClaim{ID: "dc-2", Domain: "a.example.com"})

		list := store.ListDomainClaims()
		assert.Len(t, list, 2)
		assert.Equal(t, "a.example.com", list[0].Domain)
		assert.Equal(t, "support.example.com", list[1].Domain)
	})

	t.Run("删除认领", func(t *testing.T) {
		store.DeleteDomainClaim("dc-2")
		_, err := store.GetDomainClaim("dc-2")
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})
}

func TestStore_TenantReadModels(t *testing.T) {
	store := NewStore()

	t.Run("未加载时返回nil", func(t *testing.T) {
		assert.Nil(t, store.TenantStatus())
		assert.Nil(t, store.TenantProfile())
		assert.Empty(t, store.Departments())
	})

	t.Run("部门列表整体替换", func(t *testing.T) {
		store.SetDepartments([]domain.Department{{ID: "dep-1", Name: "售后"}})

		deps := store.Departments()
		assert.Len(t, deps, 1)
		assert.Equal(t, "售后", deps[0].Name)
	})

	t.Run("租户状态与资料以副本读写", func(t *testing.T) {
		store.SetTenantStatus(&domain.TenantDomainStatus{ActiveDomain: "example.com"})
		store.SetTenantProfile(&domain.TenantProfile{Name: "Acme", PrimaryDomain: "example.com"})

		status := store.TenantStatus()
		status.ActiveDomain = "mutated"
		assert.Equal(t, "example.com", store.TenantStatus().ActiveDomain)

		profile := store.TenantProfile()
		profile.Name = "mutated"
		assert.Equal(t, "Acme", store.TenantProfile().Name)
	})
}
