package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 后端调用指标
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	// 邮箱通道指标
	MailboxesCreated     prometheus.Counter
	MailboxesDeleted     prometheus.Counter
	ProviderSwitches     *prometheus.CounterVec
	AuthorizationsTotal  *prometheus.CounterVec
	CredentialTestsTotal *prometheus.CounterVec

	// 域名验证指标
	ClaimsCreated        prometheus.Counter
	VerificationsTotal   *prometheus.CounterVec
	PropagationChecks    prometheus.Counter
	PollingTimersActive  prometheus.Gauge

	// WebSocket 指标
	SessionsOnline prometheus.Gauge

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		BackendRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_backend_requests_total",
				Help: "Total number of requests sent to the helpdesk backend",
			},
			[]string{"method", "outcome"},
		),

		BackendRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_backend_request_duration_seconds",
				Help:    "Backend request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		MailboxesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_mailboxes_created_total",
				Help: "Total number of mail channels created",
			},
		),

		MailboxesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_mailboxes_deleted_total",
				Help: "Total number of mail channels deleted",
			},
		),

		ProviderSwitches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_provider_switches_total",
				Help: "Total number of mailbox provider switches",
			},
			[]string{"to"},
		),

		AuthorizationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_authorizations_total",
				Help: "Total number of OAuth authorization handshakes",
			},
			[]string{"outcome"},
		),

		CredentialTestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_credential_tests_total",
				Help: "Total number of server credential dry-runs",
			},
			[]string{"outcome"},
		),

		ClaimsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_domain_claims_created_total",
				Help: "Total number of domain claims registered",
			},
		),

		VerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_domain_verifications_total",
				Help: "Total number of domain verification attempts",
			},
			[]string{"outcome"},
		),

		PropagationChecks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_propagation_checks_total",
				Help: "Total number of manual DNS propagation checks",
			},
		),

		PollingTimersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_polling_timers_active",
				Help: "Number of active background polling timers",
			},
		),

		SessionsOnline: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_ws_sessions_online",
				Help: "Number of connected console sessions",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "console_panics_total",
				Help: "Total number of recovered panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBackendRequest 记录后端调用指标
func (m *Metrics) RecordBackendRequest(method, outcome string, duration time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(method, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordMailboxCreated 记录邮箱创建
func (m *Metrics) RecordMailboxCreated() {
	m.MailboxesCreated.Inc()
}

// RecordMailboxDeleted 记录邮箱删除
func (m *Metrics) RecordMailboxDeleted() {
	m.MailboxesDeleted.Inc()
}

// RecordProviderSwitch 记录提供商切换
func (m *Metrics) RecordProviderSwitch(to string) {
	m.ProviderSwitches.WithLabelValues(to).Inc()
}

// RecordAuthorization 记录授权握手结果
func (m *Metrics) RecordAuthorization(outcome string) {
	m.AuthorizationsTotal.WithLabelValues(outcome).Inc()
}

// RecordCredentialTest 记录凭据测试结果
func (m *Metrics) RecordCredentialTest(outcome string) {
	m.CredentialTestsTotal.WithLabelValues(outcome).Inc()
}

// RecordClaimCreated 记录域名声明创建
func (m *Metrics) RecordClaimCreated() {
	m.ClaimsCreated.Inc()
}

// RecordVerification 记录验证尝试结果
func (m *Metrics) RecordVerification(outcome string) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}

// RecordPropagationCheck 记录手动传播检测
func (m *Metrics) RecordPropagationCheck() {
	m.PropagationChecks.Inc()
}

// UpdatePollingTimers 更新活跃轮询定时器数
func (m *Metrics) UpdatePollingTimers(count int) {
	m.PollingTimersActive.Set(float64(count))
}

// UpdateSessionsOnline 更新在线会话数
func (m *Metrics) UpdateSessionsOnline(count int) {
	m.SessionsOnline.Set(float64(count))
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus 指标的 HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
