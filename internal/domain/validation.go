package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDomain    = errors.New("invalid domain")
	ErrInvalidProvider  = errors.New("invalid provider")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidMethod    = errors.New("invalid verify method")
	// ErrFieldRequired 本地校验错误：缺少必填字段时请求不会发往后端
	ErrFieldRequired = errors.New("field required")
)

// ValidateDomainName 验证域名格式（小写字母、数字、连字符，至少两段）
func ValidateDomainName(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || len(name) > 253 {
		return ErrInvalidDomain
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return ErrInvalidDomain
	}

	for _, part := range parts {
		if len(part) == 0 || len(part) > 63 {
			return ErrInvalidDomain
		}
		for _, r := range part {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
				return ErrInvalidDomain
			}
		}
	}

	return nil
}

// NormalizeDomainName 规范化域名（去空白、转小写）
func NormalizeDomainName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// ValidateServerLeg 验证单侧服务器凭据的必填字段。
// side 用于错误信息前缀（incoming / smtp）。
func ValidateServerLeg(side string, s *ServerSettings) error {
	if s == nil {
		return fmt.Errorf("%w: %s", ErrFieldRequired, side)
	}
	var missing []string
	if strings.TrimSpace(s.Host) == "" {
		missing = append(missing, side+".host")
	}
	if s.Port <= 0 || s.Port > 65535 {
		missing = append(missing, side+".port")
	}
	if strings.TrimSpace(s.Username) == "" {
		missing = append(missing, side+".username")
	}
	if s.Password == "" {
		missing = append(missing, side+".password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrFieldRequired, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateManualServer 验证 manual-server 方式下方向蕴含的每一侧凭据。
// delegated-* 与 hosted-alias 不需要任何本地字段，后端会在接入完成后补全。
func ValidateManualServer(direction Direction, incoming, outgoing *ServerSettings) error {
	if !direction.Valid() {
		return ErrInvalidDirection
	}
	if direction.RequiresIncoming() {
		if err := ValidateServerLeg("incoming", incoming); err != nil {
			return err
		}
	}
	if direction.RequiresOutgoing() {
		if err := ValidateServerLeg("smtp", outgoing); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCredentials 验证试运行候选凭据的字段完整性
func ValidateCredentials(c ServerCredentials) error {
	return ValidateManualServer(c.Direction, c.Incoming, c.Outgoing)
}

// passwordRetained 仅用于补丁校验的占位值：密码沿用后端已存的旧值
const passwordRetained = "<retained>"

// ValidateServerSettingsUpdate 校验服务器参数补丁合并后的完整性。
//
// 把补丁叠加到当前配置上，再按方向校验每一侧的必填字段；切换接入
// 方式清空过的侧别必须由补丁重新补齐。读模型中的密码被后端置空，
// 已配置侧别的补丁未携带密码时视为沿用旧值。
func ValidateServerSettingsUpdate(direction Direction, incoming, outgoing *ServerSettings, update ServerSettingsUpdate) error {
	return ValidateManualServer(direction,
		mergeLeg(incoming, update.Incoming),
		mergeLeg(outgoing, update.Outgoing),
	)
}

func mergeLeg(base *ServerSettings, patch *ServerSettingsPatch) *ServerSettings {
	merged := patch.Apply(base)
	if merged == nil {
		return nil
	}
	if merged.Password == "" && base != nil && (patch == nil || patch.Password == nil) {
		merged.Password = passwordRetained
	}
	return merged
}
