package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Shopify  ShopifyConfig
	Vault    VaultConfig
	Sync     SyncConfig
	Defaults DefaultsConfig
	Log      LogConfig
}

// AppConfig 服务配置
type AppConfig struct {
	Port string
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN 拼接 postgres 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ShopifyConfig 平台接入配置
type ShopifyConfig struct {
	APIVersion    string
	WebhookSecret string
	PageSize      int
}

// VaultConfig 凭证加密配置
type VaultConfig struct {
	// 进程级加密密钥所在的环境变量名，密钥本身首次使用时才读取
	SecretEnv string
}

// SyncConfig 同步任务配置
type SyncConfig struct {
	CronSpec string
	Enabled  bool
	// 手动触发全量同步的最短间隔（秒），按连接维度限流
	CooldownSeconds int
}

// DefaultsConfig 定价与库存全局默认值（租户无配置行时回落）
type DefaultsConfig struct {
	MarginType        string
	MarginValue       float64
	CommissionType    string
	CommissionValue   float64
	LowStockThreshold int
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string
}

// Load 加载配置：默认值 < config.yaml < 环境变量
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "shopify_sync")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("shopify.apiversion", "2024-10")
	v.SetDefault("shopify.webhooksecret", "")
	v.SetDefault("shopify.pagesize", 50)

	v.SetDefault("vault.secretenv", "CREDENTIAL_ENCRYPTION_SECRET")

	v.SetDefault("sync.cronspec", "@every 30m")
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.cooldownseconds", 60)

	v.SetDefault("defaults.margintype", "PERCENTAGE")
	v.SetDefault("defaults.marginvalue", 20.0)
	v.SetDefault("defaults.commissiontype", "PERCENTAGE")
	v.SetDefault("defaults.commissionvalue", 10.0)
	v.SetDefault("defaults.lowstockthreshold", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 配置文件可选，找不到时仅靠默认值与环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
