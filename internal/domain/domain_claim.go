package domain

import "time"

// VerifyMethod 域名所有权验证方式
type VerifyMethod string

const (
	VerifyMethodTXT   VerifyMethod = "dns_txt"
	VerifyMethodCNAME VerifyMethod = "dns_cname"
)

// Valid 判断验证方式是否合法
func (m VerifyMethod) Valid() bool {
	return m == VerifyMethodTXT || m == VerifyMethodCNAME
}

// RecordType 返回该验证方式对应的 DNS 记录类型
func (m VerifyMethod) RecordType() string {
	if m == VerifyMethodCNAME {
		return "CNAME"
	}
	return "TXT"
}

// ClaimStatus 域名验证状态
type ClaimStatus string

const (
	// ClaimStatusPending 待验证（含 DNS 尚未传播）
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusVerified 已验证（终态，停止轮询）
	ClaimStatusVerified ClaimStatus = "verified"
	// ClaimStatusFailed 验证失败
	ClaimStatusFailed ClaimStatus = "failed"
)

// DNSRecord 用户需要发布的 DNS 记录。
// 所有取值均来自后端响应，客户端只做展示，不做计算。
type DNSRecord struct {
	Type  string `json:"type"` // TXT 或 CNAME
	Name  string `json:"name"`
	Value string `json:"value"`
	TTL   int    `json:"ttl"` // 建议值，通常 3600
}

// DomainClaim 自定义域名所有权声明。
//
// 生命周期：pending 创建 → 后台轮询探测 DNS 传播 → 显式验证 →
// verified（终态）或维持 pending/failed；令牌可在未验证时重新生成
// （已发布的记录随之失效）；删除为终态并取消轮询。
type DomainClaim struct {
	ID          string       `json:"id"`
	Domain      string       `json:"domain"`
	Method      VerifyMethod `json:"method"`
	Status      ClaimStatus  `json:"status"`
	VerifyToken string       `json:"verifyToken"`
	Record      DNSRecord    `json:"record"`
	LastCheckAt *time.Time   `json:"lastCheckAt,omitempty"`
	VerifiedAt  *time.Time   `json:"verifiedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// PropagationReport DNS 传播探测结果（非变更操作）。
// Found 为查到的候选记录数，Matched 为与期望值一致的记录数。
type PropagationReport struct {
	Propagated bool `json:"dns_propagated"`
	Found      int  `json:"found"`
	Matched    int  `json:"matched"`
}

// TenantDomainStatus 租户级域名状态。同一租户同一时间至多一个
// 已验证域名，该约束由后端保证，本地在每次验证成功后重新拉取。
type TenantDomainStatus struct {
	ActiveDomainID string `json:"activeDomainId,omitempty"`
	ActiveDomain   string `json:"activeDomain,omitempty"`
	VerifiedCount  int    `json:"verifiedCount"`
	PendingCount   int    `json:"pendingCount"`
}

// SetupStep 域名配置指引中的一个步骤
type SetupStep struct {
	Step        int        `json:"step"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Record      *DNSRecord `json:"record,omitempty"`
}

// SetupGuide 域名配置指引
type SetupGuide struct {
	Domain string      `json:"domain"`
	Status ClaimStatus `json:"status"`
	Steps  []SetupStep `json:"steps"`
}
