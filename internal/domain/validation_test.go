package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDomainName(t *testing.T) {
	t.Run("合法域名通过验证", func(t *testing.T) {
		for _, name := range []string{
			"example.com",
			"support.example.com",
			"my-brand.co.uk",
			"Example.COM ", // 验证前会被规范化
		} {
			assert.NoError(t, ValidateDomainName(name), name)
		}
	})

	t.Run("非法域名被拒绝", func(t *testing.T) {
		for _, name := range []string{
			"",
			"localhost",
			"exa mple.com",
			"example..com",
			".example.com",
			"пример.com",
			"example_underscore.com",
		} {
			assert.ErrorIs(t, ValidateDomainName(name), ErrInvalidDomain, name)
		}
	})

	t.Run("超长域名被拒绝", func(t *testing.T) {
		long := ""
		for i := 0; i < 64; i++ {
			long += "a"
		}
		assert.ErrorIs(t, ValidateDomainName(long+".com"), ErrInvalidDomain, "单段超过63字符")
	})
}

func TestNormalizeDomainName(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeDomainName("  Example.COM  "))
	assert.Equal(t, "support.example.com", NormalizeDomainName("SUPPORT.example.com"))
}

func TestValidateManualServer(t *testing.T) {
	valid := func() *ServerSettings {
		return &ServerSettings{Host: "imap.corp.example", Port: 993, Username: "support", Password: "secret"}
	}

	t.Run("方向蕴含的侧别齐全时通过", func(t *testing.T) {
		assert.NoError(t, ValidateManualServer(DirectionBoth, valid(), valid()))
		assert.NoError(t, ValidateManualServer(DirectionIncoming, valid(), nil))
		assert.NoError(t, ValidateManualServer(DirectionOutgoing, nil, valid()))
	})

	t.Run("缺少方向要求的侧别时失败", func(t *testing.T) {
		err := ValidateManualServer(DirectionBoth, valid(), nil)
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "smtp")

		err = ValidateManualServer(DirectionIncoming, nil, nil)
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "incoming")
	})

	t.Run("缺少字段的错误信息指名具体字段", func(t *testing.T) {
		s := valid()
		s.Password = ""
		err := ValidateManualServer(DirectionIncoming, s, nil)
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "incoming.password")

		out := valid()
		out.Host = "  "
		out.Port = 0
		err = ValidateManualServer(DirectionOutgoing, nil, out)
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "smtp.host")
		assert.Contains(t, err.Error(), "smtp.port")
	})

	t.Run("端口越界被拒绝", func(t *testing.T) {
		s := valid()
		s.Port = 70000
		assert.ErrorIs(t, ValidateManualServer(DirectionIncoming, s, nil), ErrFieldRequired)
	})

	t.Run("非法方向直接拒绝", func(t *testing.T) {
		assert.ErrorIs(t, ValidateManualServer(Direction("sideways"), valid(), valid()), ErrInvalidDirection)
	})
}

func TestValidateCredentials(t *testing.T) {
	t.Run("只校验方向蕴含的侧别", func(t *testing.T) {
		creds := ServerCredentials{
			Direction: DirectionIncoming,
			Incoming:  &ServerSettings{Host: "imap.corp.example", Port: 993, Username: "u", Password: "p"},
			// Outgoing 缺失但方向不要求
		}
		assert.NoError(t, ValidateCredentials(creds))
	})

	t.Run("smtp密码缺失时失败", func(t *testing.T) {
		creds := ServerCredentials{
			Direction: DirectionBoth,
			Incoming:  &ServerSettings{Host: "imap.corp.example", Port: 993, Username: "u", Password: "p"},
			Outgoing:  &ServerSettings{Host: "smtp.corp.example", Port: 587, Username: "u"},
		}
		err := ValidateCredentials(creds)
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "smtp.password")
	})
}

func TestServerSettingsPatch_Empty(t *testing.T) {
	var nilPatch *ServerSettingsPatch
	assert.True(t, nilPatch.Empty())
	assert.True(t, (&ServerSettingsPatch{}).Empty())

	host := "imap.new.example"
	assert.False(t, (&ServerSettingsPatch{Host: &host}).Empty())

	// 空字符串密码是"改成空"而不是"不修改"
	empty := ""
	assert.False(t, (&ServerSettingsPatch{Password: &empty}).Empty())
}

func TestServerSettingsPatch_Apply(t *testing.T) {
	base := func() *ServerSettings {
		return &ServerSettings{Host: "imap.corp.example", Port: 993, Username: "support", Password: "secret", UseSSL: true}
	}

	t.Run("只覆盖补丁携带的字段", func(t *testing.T) {
		host := "imap.new.example"
		merged := (&ServerSettingsPatch{Host: &host}).Apply(base())

		assert.Equal(t, "imap.new.example", merged.Host)
		assert.Equal(t, 993, merged.Port)
		assert.Equal(t, "support", merged.Username)
		assert.Equal(t, "secret", merged.Password)
	})

	t.Run("不修改原配置", func(t *testing.T) {
		orig := base()
		host := "imap.new.example"
		(&ServerSettingsPatch{Host: &host}).Apply(orig)

		assert.Equal(t, "imap.corp.example", orig.Host)
	})

	t.Run("空补丁叠加空配置仍为空", func(t *testing.T) {
		var nilPatch *ServerSettingsPatch
		assert.Nil(t, nilPatch.Apply(nil))
		assert.Nil(t, (&ServerSettingsPatch{}).Apply(nil))
	})

	t.Run("补丁可以从零开始建立配置", func(t *testing.T) {
		host, port, user, pass := "imap.corp.example", 993, "support", "secret"
		merged := (&ServerSettingsPatch{Host: &host, Port: &port, Username: &user, Password: &pass}).Apply(nil)

		require.NotNil(t, merged)
		assert.Equal(t, "imap.corp.example", merged.Host)
		assert.Equal(t, 993, merged.Port)
	})
}

func TestValidateServerSettingsUpdate(t *testing.T) {
	// 读模型中的密码总是被后端置空
	blanked := func() *ServerSettings {
		return &ServerSettings{Host: "imap.corp.example", Port: 993, Username: "support"}
	}

	t.Run("已配置侧别的补丁缺省密码视为沿用", func(t *testing.T) {
		host := "imap.new.example"
		err := ValidateServerSettingsUpdate(DirectionIncoming, blanked(), nil, ServerSettingsUpdate{
			Incoming: &ServerSettingsPatch{Host: &host},
		})
		assert.NoError(t, err)
	})

	t.Run("空配置上的空补丁缺必填字段", func(t *testing.T) {
		err := ValidateServerSettingsUpdate(DirectionBoth, nil, nil, ServerSettingsUpdate{})
		assert.ErrorIs(t, err, ErrFieldRequired)
	})

	t.Run("未配置侧别必须补齐包括密码的全部字段", func(t *testing.T) {
		host, port, user := "imap.corp.example", 993, "support"
		err := ValidateServerSettingsUpdate(DirectionIncoming, nil, nil, ServerSettingsUpdate{
			Incoming: &ServerSettingsPatch{Host: &host, Port: &port, Username: &user},
		})
		assert.ErrorIs(t, err, ErrFieldRequired)
		assert.Contains(t, err.Error(), "incoming.password")
	})

	t.Run("显式清空密码被拒绝", func(t *testing.T) {
		empty := ""
		err := ValidateServerSettingsUpdate(DirectionIncoming, blanked(), nil, ServerSettingsUpdate{
			Incoming: &ServerSettingsPatch{Password: &empty},
		})
		assert.ErrorIs(t, err, ErrFieldRequired)
	})
}
