// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密钥、口令）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	MinIO  MinIOConfig  `yaml:"minio"`
	Auth   AuthConfig   `yaml:"auth"`
	Upload UploadConfig `yaml:"upload"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// MinIOConfig 对象存储配置
//
// PublicURL 为对象公开地址的前缀；为空时按 endpoint 推导。
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"` // 从 MINIO_ACCESS_KEY 环境变量读取
	SecretKey string `yaml:"-"` // 从 MINIO_SECRET_KEY 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	PublicURL string `yaml:"public_url"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret     string `yaml:"-"` // 从 JWT_SECRET 环境变量读取
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// TokenTTL 令牌有效期
func (c AuthConfig) TokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env    Environment
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
	Auth   AuthConfig
	Upload UploadConfig
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	cfg := &Config{
		Env:    env,
		Server: yamlCfg.Server,
		Mongo:  yamlCfg.Mongo,
		Redis:  yamlCfg.Redis,
		MinIO:  yamlCfg.MinIO,
		Auth:   yamlCfg.Auth,
		Upload: yamlCfg.Upload,
	}

	// 环境变量覆盖
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Mongo.URI = getEnv("MONGODB_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGODB_DATABASE", cfg.Mongo.Database)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.Region = getEnv("MINIO_REGION", cfg.MinIO.Region)
	cfg.MinIO.PublicURL = getEnv("MINIO_PUBLIC_URL", cfg.MinIO.PublicURL)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.MinIO.UseSSL = v == "true"
	}

	// 敏感信息只从环境变量读取
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", "minioadmin")
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", "minioadmin")
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")

	// 默认值兜底
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "blog_panel"
	}
	if cfg.Upload.MaxSizeBytes == 0 {
		cfg.Upload.MaxSizeBytes = 10 << 20 // 10MB
	}

	return cfg
}

// String 返回脱敏后的配置摘要（不含密钥）
func (c *Config) String() string {
	return fmt.Sprintf("env=%s port=%s mongo=%s/%s redis=%s minio=%s/%s",
		c.Env, c.Server.Port, c.Mongo.URI, c.Mongo.Database,
		c.Redis.Addr, c.MinIO.Endpoint, c.MinIO.Bucket)
}

func parseEnv(s string) Environment {
	switch s {
	case "prod", "production":
		return EnvProduction
	case "test":
		return EnvTest
	default:
		return EnvDevelopment
	}
}

// loadYAMLConfig 从 configs/{env}.yaml 加载配置，文件缺失时返回零值
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{}
	for _, dir := range configPaths {
		path := filepath.Join(dir, string(env)+".yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: config: parse %s failed: %v\n", path, err)
			return &YAMLConfig{}
		}
		return cfg
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
