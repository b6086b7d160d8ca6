package models

import "time"

// Transaction 链上交易记录（已按钱包抓取并转换单位）
type Transaction struct {
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ValueETH  float64   `json:"value_eth"` // 交易金额，单位ETH
	Timestamp time.Time `json:"timestamp"`
	Failed    bool      `json:"failed"` // Etherscan isError 标记
}

// FeatureRecord 单个钱包的风险特征
type FeatureRecord struct {
	Wallet              string  `json:"wallet_id"`
	TxCount             int     `json:"tx_count"`
	TotalValueETH       float64 `json:"total_value_eth"`
	AvgValueETH         float64 `json:"avg_value_eth"` // tx_count 为 0 时约定为 0
	FailedTxs           int     `json:"failed_txs"`
	RecentActivityRatio float64 `json:"recent_activity_ratio"` // 最近30天交易占比，[0,1]
	UniqueContracts     int     `json:"unique_contracts"`
}

// WalletScore 钱包风险评分，0 表示最高风险，1000 表示最低风险
type WalletScore struct {
	Wallet   string    `json:"wallet_id"`
	Score    int       `json:"score"`
	ScoredAt time.Time `json:"scored_at"`
}

// WalletTransactions 批量抓取结果，保持与输入钱包列表相同的顺序
type WalletTransactions struct {
	Wallet       string        `json:"wallet_id"`
	Transactions []Transaction `json:"transactions"`
}
