package domain

import "time"

// Provider 邮箱接入方式
type Provider string

const (
	// ProviderDelegatedGoogle 通过 Google 授权跳转接入
	ProviderDelegatedGoogle Provider = "delegated-google"
	// ProviderDelegatedMicrosoft 通过 Microsoft 授权跳转接入
	ProviderDelegatedMicrosoft Provider = "delegated-microsoft"
	// ProviderManualServer 手动填写收发服务器凭据接入
	ProviderManualServer Provider = "manual-server"
	// ProviderHostedAlias 使用平台托管的转发别名接入
	ProviderHostedAlias Provider = "hosted-alias"
)

// Valid 判断是否为已知的接入方式
func (p Provider) Valid() bool {
	switch p {
	case ProviderDelegatedGoogle, ProviderDelegatedMicrosoft,
		ProviderManualServer, ProviderHostedAlias:
		return true
	}
	return false
}

// Delegated 判断是否为授权跳转类接入方式
func (p Provider) Delegated() bool {
	return p == ProviderDelegatedGoogle || p == ProviderDelegatedMicrosoft
}

// Direction 邮箱收发方向
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionBoth     Direction = "both"
)

// Valid 判断方向取值是否合法
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing || d == DirectionBoth
}

// RequiresIncoming 判断该方向是否需要收件服务器
func (d Direction) RequiresIncoming() bool {
	return d == DirectionIncoming || d == DirectionBoth
}

// RequiresOutgoing 判断该方向是否需要发件服务器
func (d Direction) RequiresOutgoing() bool {
	return d == DirectionOutgoing || d == DirectionBoth
}

// ConnectionStatus 邮箱连接状态
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusConnecting   ConnectionStatus = "connecting"
	ConnectionStatusError        ConnectionStatus = "error"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// Mailbox 表示一条邮箱接入配置（后端为权威数据源，本地仅为读模型）。
//
// 不变式：同一时间只有一种接入方式生效；服务器凭据字段仅在
// manual-server 方式下有意义；hosted-alias 邮箱永远不携带服务器凭据。
// 对接入方式的所有切换必须经由 ApplySetup，保证不变式不被破坏。
type Mailbox struct {
	ID              string           `json:"id"`
	Email           *string          `json:"email"` // 接入完成前为 nil
	DisplayName     string           `json:"displayName"`
	Provider        Provider         `json:"provider"`
	Direction       Direction        `json:"direction"`
	DepartmentID    *string          `json:"departmentId,omitempty"`
	Status          ConnectionStatus `json:"status"`
	StatusDetail    string           `json:"statusDetail,omitempty"`
	ForwardingAlias string           `json:"forwardingAlias,omitempty"` // 仅 hosted-alias
	Incoming        *ServerSettings  `json:"incoming,omitempty"`        // 仅 manual-server
	Outgoing        *ServerSettings  `json:"outgoing,omitempty"`        // 仅 manual-server
	LastSyncAt      *time.Time       `json:"lastSyncAt,omitempty"`
	LastErrorAt     *time.Time       `json:"lastErrorAt,omitempty"`
	LastError       string           `json:"lastError,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ProviderSetup 是接入方式的带标签变体：每种接入方式携带且仅携带
// 自己需要的字段，经由 Mailbox.ApplySetup 落到实体上。
type ProviderSetup interface {
	Provider() Provider
	apply(m *Mailbox)
}

// DelegatedSetup 授权跳转接入，不需要任何本地字段
type DelegatedSetup struct {
	Vendor Provider // ProviderDelegatedGoogle 或 ProviderDelegatedMicrosoft
}

func (s DelegatedSetup) Provider() Provider { return s.Vendor }

func (s DelegatedSetup) apply(m *Mailbox) {
	m.Status = ConnectionStatusConnecting
}

// ManualServerSetup 手动服务器接入，携带收发两侧凭据
type ManualServerSetup struct {
	Incoming *ServerSettings
	Outgoing *ServerSettings
}

func (s ManualServerSetup) Provider() Provider { return ProviderManualServer }

func (s ManualServerSetup) apply(m *Mailbox) {
	m.Incoming = s.Incoming.clone()
	m.Outgoing = s.Outgoing.clone()
	m.Status = ConnectionStatusDisconnected
}

// HostedAliasSetup 托管别名接入，别名由后端生成
type HostedAliasSetup struct {
	Alias string
}

func (s HostedAliasSetup) Provider() Provider { return ProviderHostedAlias }

func (s HostedAliasSetup) apply(m *Mailbox) {
	m.ForwardingAlias = s.Alias
}

// ApplySetup 切换邮箱的接入方式。
//
// 先清空所有接入方式专属字段，再写入新方式携带的字段，
// 因此切换后不会残留上一种方式的服务器凭据或转发别名。
func (m *Mailbox) ApplySetup(setup ProviderSetup) {
	m.Provider = setup.Provider()
	m.ForwardingAlias = ""
	m.Incoming = nil
	m.Outgoing = nil
	m.Status = ConnectionStatusDisconnected
	m.StatusDetail = ""
	setup.apply(m)
}

// SetupFor 根据接入方式构造对应的空白变体（用于仅知道 Provider 值的场合）。
func SetupFor(p Provider) (ProviderSetup, bool) {
	switch p {
	case ProviderDelegatedGoogle, ProviderDelegatedMicrosoft:
		return DelegatedSetup{Vendor: p}, true
	case ProviderManualServer:
		return ManualServerSetup{}, true
	case ProviderHostedAlias:
		return HostedAliasSetup{}, true
	}
	return nil, false
}

// Department 部门读模型（由后端派生，本地不直接修改）
type Department struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MailboxID *string `json:"mailboxId,omitempty"`
}

// TenantProfile 租户资料读模型（验证新域名成功后需要重新拉取）
type TenantProfile struct {
	Name          string `json:"name"`
	PrimaryDomain string `json:"primaryDomain"`
	LogoURL       string `json:"logoUrl,omitempty"`
}
