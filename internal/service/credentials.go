package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"helpdesk/console/internal/backend"
	"helpdesk/console/internal/domain"
)

// ErrValidationFailed 表示至少一个方向的凭据测试未通过
var ErrValidationFailed = errors.New("credential validation failed")

// CredentialService 邮件服务器凭据测试服务
//
// 不在控制台本地建连，真正的 IMAP/POP3/SMTP 试连由后端执行；
// 这里负责入参预检、汇总各方向的测试结果并区分"测试失败"和"无法测试"。
type CredentialService struct {
	api backend.API
	log *zap.Logger
}

// NewCredentialService 创建凭据测试服务
func NewCredentialService(api backend.API, log *zap.Logger) *CredentialService {
	return &CredentialService{api: api, log: log}
}

// Validate 对给定凭据执行服务器试连
//
// 先做字段预检：必填字段缺失时直接返回校验错误，不发起网络请求。
// 预检通过后调用后端 dry-run，返回逐方向的测试报告：
//   - 报告中某方向 skipped 表示路由方向不需要该方向；
//   - 任一方向 error 时返回 ErrValidationFailed，报告仍然有效；
//   - 后端不可达时返回传输错误，此时报告为 nil（无法测试 ≠ 测试失败）。
func (s *CredentialService) Validate(ctx context.Context, creds domain.ServerCredentials) (*domain.CredentialReport, error) {
	if err := domain.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	report, err := s.api.ValidateCredentials(ctx, creds)
	if err != nil {
		s.log.Warn("credential dry-run unreachable", zap.Error(err))
		return nil, err
	}

	if failed(report.Incoming) || failed(report.SMTP) {
		s.log.Info("credential validation rejected",
			zap.String("direction", string(creds.Direction)),
		)
		return report, ErrValidationFailed
	}

	return report, nil
}

func failed(v *domain.Verdict) bool {
	return v != nil && v.Status == domain.VerdictError
}
