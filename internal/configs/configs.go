package configs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// 钱包列表配置
	SheetURL   string `json:"sheet_url" yaml:"sheet_url"`     // Google Sheet CSV 导出地址
	MaxWallets int    `json:"max_wallets" yaml:"max_wallets"` // 单批评分的钱包数量上限

	Etherscan EtherscanConfig `json:"etherscan" yaml:"etherscan"`

	Database Database `json:"database" yaml:"database"`

	// AI 模型参数
	AIConfig AIConfig `json:"ai_config" yaml:"ai_config"`

	Output OutputConfig `json:"output" yaml:"output"`
}

type EtherscanConfig struct {
	APIKey       string `json:"api_key" yaml:"api_key"`             // Etherscan API密钥
	RequestDelay string `json:"request_delay" yaml:"request_delay"` // 请求间隔，免费档约 5 req/s
	Workers      int    `json:"workers" yaml:"workers"`             // 并发抓取协程数
}

type AIConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`       // 是否启用风险解读
	APIKey    string `json:"api_key" yaml:"api_key"`       // AI服务API密钥
	ModelType string `json:"model_type" yaml:"model_type"` // AI模型类型
}

type Database struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"` // 数据库连接字符串
}

type OutputConfig struct {
	CSVPath string `json:"csv_path" yaml:"csv_path"` // 评分结果CSV输出路径
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() error {
	return godotenv.Load()
}

// ApplyEnv overrides secrets from environment variables so they can stay
// out of the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		c.Etherscan.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AIConfig.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.ConnStr = v
	}
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxWallets == 0 {
		c.MaxWallets = 100
	}
	if c.Etherscan.RequestDelay == "" {
		c.Etherscan.RequestDelay = "200ms"
	}
	if c.Etherscan.Workers == 0 {
		c.Etherscan.Workers = 1
	}
	if c.Output.CSVPath == "" {
		c.Output.CSVPath = "wallet_risk_scores.csv"
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Etherscan.APIKey == "" {
		return fmt.Errorf("etherscan api key not set: use config file or the ETHERSCAN_API_KEY environment variable")
	}
	if c.SheetURL == "" {
		return fmt.Errorf("wallet sheet url not set")
	}
	return nil
}
