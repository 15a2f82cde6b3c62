package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8090
}

// BackendConfig 定义工单系统后端 API 的连接配置
type BackendConfig struct {
	BaseURL string        // 后端 API 根地址，如 "http://localhost:8080"
	Token   string        // 服务间调用令牌，随请求以 Bearer 形式携带
	Timeout time.Duration // 单次请求超时，默认 30 秒
}

// VerificationConfig 定义域名验证与邮箱状态的轮询配置
type VerificationConfig struct {
	PollInterval time.Duration // 后台轮询周期，默认 30 秒
	CheckBurst   int           // 手动"立即检测"的速率限制突发量，默认 3
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
}

// RedisConfig 定义 Redis 缓存服务配置（UI 偏好存储）
type RedisConfig struct {
	Address  string // Redis 服务地址，格式 "host:port"，留空则使用内存存储
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// AuthConfig 定义客服端 JWT 认证配置
type AuthConfig struct {
	JWTSecret string // JWT 签名密钥，必须至少 32 字符
	Issuer    string // 期望的 JWT 签发者，默认 "helpdesk"
}

// Config 是控制台服务的根配置结构体
type Config struct {
	Server       ServerConfig       // HTTP 服务器配置
	Backend      BackendConfig      // 后端 API 配置
	Verification VerificationConfig // 轮询配置
	CORS         CORSConfig         // 跨域配置
	Log          LogConfig          // 日志配置
	Redis        RedisConfig        // Redis 配置
	Auth         AuthConfig         // 认证配置
}

// Load 从环境变量和 .env 文件加载配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: CONSOLE_
// 例如: CONSOLE_BACKEND_BASE_URL, CONSOLE_AUTH_JWT_SECRET
func Load() (*Config, error) {
	// .env 文件是可选的，加载失败静默忽略
	loadEnvFile()

	viper.SetEnvPrefix("console")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("backend.base_url", "http://localhost:8080")
	viper.SetDefault("backend.token", "")
	viper.SetDefault("backend.timeout", "30s")
	viper.SetDefault("verification.poll_interval", "30s")
	viper.SetDefault("verification.check_burst", 3)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.issuer", "helpdesk")

	baseURL := strings.TrimRight(viper.GetString("backend.base_url"), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend.base_url: %w", err)
	}

	timeout, err := time.ParseDuration(viper.GetString("backend.timeout"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	pollInterval, err := time.ParseDuration(viper.GetString("verification.poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid verification.poll_interval: %w", err)
	}
	if pollInterval < time.Second {
		return nil, fmt.Errorf("verification.poll_interval must be at least 1s")
	}

	checkBurst := viper.GetInt("verification.check_burst")
	if checkBurst <= 0 {
		checkBurst = 3
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	jwtSecret := viper.GetString("auth.jwt_secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set CONSOLE_AUTH_JWT_SECRET environment variable")
	}

	// JWT secret 必须至少 32 字符
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Backend: BackendConfig{
			BaseURL: baseURL,
			Token:   viper.GetString("backend.token"),
			Timeout: timeout,
		},
		Verification: VerificationConfig{
			PollInterval: pollInterval,
			CheckBurst:   checkBurst,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
			Issuer:    viper.GetString("auth.issuer"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载当前目录或父目录的 .env 文件
//
// 已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
