/*
 * @Description: 统一配置管理 (手动加载 ini + 环境变量覆盖)
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-02-04 09:31:17
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// DefaultFilePath 默认配置文件路径
const DefaultFilePath = "data/conf.ini"

// EnvPrefix 环境变量前缀，例如 NEWS_DATABASE_HOST
const EnvPrefix = "NEWS"

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyServerSeed,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyCacheTTL,
	KeyHistoryMaxVersions, KeyHistoryCleanupCron, KeyHistoryConsumeOnRollback,
	KeyRateLimitWritePerMinute, KeyRateLimitBurst,
}

const (
	KeyServerPort               = "System.Port"
	KeyServerDebug              = "System.Debug"
	KeyServerSeed               = "System.Seed"
	KeyDBType                   = "Database.Type"
	KeyDBHost                   = "Database.Host"
	KeyDBPort                   = "Database.Port"
	KeyDBUser                   = "Database.User"
	KeyDBPassword               = "Database.Password"
	KeyDBName                   = "Database.Name"
	KeyDBDebug                  = "Database.Debug"
	KeyRedisAddr                = "Redis.Addr"
	KeyRedisPassword            = "Redis.Password"
	KeyRedisDB                  = "Redis.DB"
	KeyCacheTTL                 = "Cache.TTL"
	KeyHistoryMaxVersions       = "History.MaxVersions"
	KeyHistoryCleanupCron       = "History.CleanupCron"
	KeyHistoryConsumeOnRollback = "History.ConsumeOnRollback"
	KeyRateLimitWritePerMinute  = "RateLimit.WritePerMinute"
	KeyRateLimitBurst           = "RateLimit.Burst"
)

// defaults 在 ini 文件和环境变量都未提供时使用
var defaults = map[string]any{
	KeyServerPort:               "8091",
	KeyServerDebug:              false,
	KeyServerSeed:               false,
	KeyDBType:                   "sqlite",
	KeyDBName:                   "anheyu_news.db",
	KeyDBDebug:                  false,
	KeyRedisDB:                  0,
	KeyCacheTTL:                 300,
	KeyHistoryMaxVersions:       0,
	KeyHistoryCleanupCron:       "0 30 3 * * *",
	KeyHistoryConsumeOnRollback: true,
	KeyRateLimitWritePerMinute:  60,
	KeyRateLimitBurst:           20,
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认路径加载配置，文件不存在时自动创建
func NewConfig() (*Config, error) {
	return Load(DefaultFilePath)
}

// Load 手动加载指定路径的配置，确保可靠性
func Load(filePath string) (*Config, error) {
	vp := viper.New()
	for k, v := range defaults {
		vp.SetDefault(k, v)
	}

	// --- 步骤 1: 使用 go-ini 从文件加载配置 (作为默认值) ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			// 如果文件存在但格式错误
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				// 构建 Viper 使用的 key，例如 "Database.Host"
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值视为未配置，保留默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了配置。", filePath)
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	for _, key := range allKeys {
		envVarName := EnvName(key)
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

// EnvName 返回配置键对应的环境变量名，例如 Database.Host -> NEWS_DATABASE_HOST
func EnvName(key string) string {
	envReplacer := strings.NewReplacer(".", "_")
	return fmt.Sprintf("%s_%s", EnvPrefix, envReplacer.Replace(strings.ToUpper(key)))
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// Set 在运行时覆盖某个配置项，主要供测试使用
func (c *Config) Set(key string, value any) {
	c.vp.Set(key, value)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	// 默认配置内容（使用 SQLite 作为默认数据库）
	defaultConfig := `[System]
Port = 8091
Debug = false
# 数据库为空时写入示例新闻
Seed = false

[Database]
# 支持 mysql / mariadb / postgres / sqlite / memory
Type = sqlite
Name = anheyu_news.db
Debug = false

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 0

[Cache]
# 单条新闻缓存秒数，0 表示关闭缓存
TTL = 300

[History]
# 每条新闻最多保留的历史快照数，0 表示不限制
MaxVersions = 0
CleanupCron = 0 30 3 * * *
# 回滚后是否删除已应用的快照
ConsumeOnRollback = true

[RateLimit]
WritePerMinute = 60
Burst = 20
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}
