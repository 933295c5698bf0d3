// Package config 配置管理单元测试
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Load 测试 ====================

func TestLoad_WithDefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "innflow-backend", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_WithConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  name: "test-server"
  mode: "release"
  port: 9000
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// sync.Once 只执行一次，这里只校验不会返回错误
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

// ==================== Get 测试 ====================

func TestGet_ReturnsSameInstance(t *testing.T) {
	cfg1 := Get()
	cfg2 := Get()
	assert.Equal(t, cfg1, cfg2)
}

// ==================== DatabaseConfig 测试 ====================

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config DatabaseConfig
		want   string
	}{
		{
			name: "Postgres",
			config: DatabaseConfig{
				Driver:   "postgres",
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "secret",
				Name:     "innflow",
				SSLMode:  "disable",
				Timezone: "UTC",
			},
			want: "host=localhost port=5432 user=postgres password=secret dbname=innflow sslmode=disable TimeZone=UTC",
		},
		{
			name: "MySQL",
			config: DatabaseConfig{
				Driver:   "mysql",
				Host:     "db.example.com",
				Port:     3306,
				User:     "admin",
				Password: "p@ssw0rd",
				Name:     "innflow",
			},
			want: "admin:p@ssw0rd@tcp(db.example.com:3306)/innflow?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name:   "SQLite",
			config: DatabaseConfig{Driver: "sqlite", Path: "./data/innflow.db"},
			want:   "./data/innflow.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}

// ==================== RedisConfig 测试 ====================

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: 6380}
	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

// ==================== JWTConfig 测试 ====================

func TestJWTConfig_Durations(t *testing.T) {
	cfg := JWTConfig{AccessTokenExpire: 12, RefreshTokenExpire: 168}
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenDuration())
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenDuration())
}

// ==================== Config 模式测试 ====================

func TestConfig_Mode(t *testing.T) {
	tests := []struct {
		mode        string
		wantRelease bool
		wantGin     string
	}{
		{"debug", false, "debug"},
		{"release", true, "release"},
		{"production", true, "release"},
		{"test", false, "test"},
		{"", false, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Mode: tt.mode}}
			assert.Equal(t, tt.wantRelease, cfg.IsRelease())
			assert.Equal(t, tt.wantGin, cfg.GinMode())
		})
	}
}

// ==================== 业务配置测试 ====================

func TestBookingConfig_Defaults(t *testing.T) {
	cfg := Get()

	assert.Equal(t, "INF", cfg.Business.Booking.ReferencePrefix)
	assert.Equal(t, []string{"IKHOKHA"}, cfg.Business.Booking.InstantPaymentMethods)
	assert.Equal(t, 3, cfg.Business.Booking.ReferenceRetries)
	assert.Equal(t, 365, cfg.Business.Booking.MaxNights)
	assert.Equal(t, "Africa/Johannesburg", cfg.Business.Booking.Timezone)
	assert.Equal(t, 100, cfg.Business.Booking.AuditLogCap)
	assert.Equal(t, "https://pay.innflow.com/", cfg.Business.Booking.PaymentLinkBase)
	assert.Equal(t, 10*time.Second, cfg.Business.Booking.LockDuration())
}

func TestNotificationConfig_Defaults(t *testing.T) {
	cfg := Get()

	assert.Equal(t, "innflow_booking_confirmed", cfg.Business.Notification.TemplateName)
	assert.Equal(t, "en", cfg.Business.Notification.LanguageCode)
	assert.Equal(t, 50, cfg.Business.Notification.HistoryCap)
	assert.Equal(t, 5*time.Second, cfg.Business.Notification.TimeoutDuration())
}

// ==================== 其他默认值测试 ====================

func TestCryptoConfig_DefaultAESKeyLength(t *testing.T) {
	cfg := Get()
	assert.Len(t, cfg.Crypto.AESKey, 32)
	assert.Equal(t, 10, cfg.Crypto.BcryptCost)
}

func TestCORSConfig_Defaults(t *testing.T) {
	cfg := Get()

	assert.Contains(t, cfg.CORS.AllowedOrigins, "*")
	assert.Contains(t, cfg.CORS.AllowedMethods, "PATCH")
	assert.Contains(t, cfg.CORS.AllowedHeaders, "Authorization")
	assert.Contains(t, cfg.CORS.ExposedHeaders, "Content-Disposition")
	assert.Equal(t, 86400, cfg.CORS.MaxAge)
}

func TestMQTTConfig_Defaults(t *testing.T) {
	cfg := Get()

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "innflow/", cfg.MQTT.TopicPrefix)
}

func TestLoggerConfig_Defaults(t *testing.T) {
	cfg := Get()

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "stdout", cfg.Logger.Output)
	assert.True(t, cfg.Logger.Caller)
}
