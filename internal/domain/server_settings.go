package domain

// ServerSettings 单侧（收件或发件）服务器连接参数。
// 密码只在提交时携带，响应中由后端置空。
type ServerSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	UseSSL   bool   `json:"useSsl"`
	UseTLS   bool   `json:"useTls"`
}

func (s *ServerSettings) clone() *ServerSettings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ServerSettingsPatch 单侧服务器参数的部分更新。
//
// 所有字段均为指针：nil 表示"保持不变"，提交时直接从载荷中省略。
// 密码字段绝不能用空字符串表达"不修改"——空串和未设置是两种不同语义。
type ServerSettingsPatch struct {
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	UseSSL   *bool   `json:"useSsl,omitempty"`
	UseTLS   *bool   `json:"useTls,omitempty"`
}

// Empty 判断补丁是否未携带任何修改
func (p *ServerSettingsPatch) Empty() bool {
	if p == nil {
		return true
	}
	return p.Host == nil && p.Port == nil && p.Username == nil &&
		p.Password == nil && p.UseSSL == nil && p.UseTLS == nil
}

// Apply 把补丁叠加到现有配置上，返回合并后的副本。
// base 为 nil 且补丁为空时返回 nil，调用方据此校验必填字段。
func (p *ServerSettingsPatch) Apply(base *ServerSettings) *ServerSettings {
	if p.Empty() {
		return base.clone()
	}

	merged := base.clone()
	if merged == nil {
		merged = &ServerSettings{}
	}
	if p.Host != nil {
		merged.Host = *p.Host
	}
	if p.Port != nil {
		merged.Port = *p.Port
	}
	if p.Username != nil {
		merged.Username = *p.Username
	}
	if p.Password != nil {
		merged.Password = *p.Password
	}
	if p.UseSSL != nil {
		merged.UseSSL = *p.UseSSL
	}
	if p.UseTLS != nil {
		merged.UseTLS = *p.UseTLS
	}
	return merged
}

// ServerSettingsUpdate 收发两侧的服务器参数更新
type ServerSettingsUpdate struct {
	Incoming *ServerSettingsPatch `json:"incoming,omitempty"`
	Outgoing *ServerSettingsPatch `json:"outgoing,omitempty"`
}

// ServerCredentials 凭据连通性试运行的候选参数。
// 只测试 Direction 蕴含的侧别，另一侧返回 skipped。
type ServerCredentials struct {
	Direction Direction       `json:"direction"`
	Incoming  *ServerSettings `json:"incoming,omitempty"`
	Outgoing  *ServerSettings `json:"outgoing,omitempty"`
}

// VerdictStatus 单侧试运行结论
type VerdictStatus string

const (
	VerdictSuccess VerdictStatus = "success"
	VerdictError   VerdictStatus = "error"
	VerdictSkipped VerdictStatus = "skipped"
)

// Verdict 单侧试运行结果。status 为 error 表示"测试执行了但失败"，
// 与整体无法执行测试（传输层错误）是两回事。
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

// CredentialReport 凭据试运行报告，按侧别给出结论
type CredentialReport struct {
	Incoming *Verdict `json:"incoming,omitempty"`
	SMTP     *Verdict `json:"smtp,omitempty"`
}
