package data

import (
	"context"
	"time"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// TransactionCollector 负责从区块浏览器抓取钱包交易历史
type TransactionCollector interface {
	// CollectTransactions retrieves the full transaction history of a wallet
	CollectTransactions(ctx context.Context, address string) ([]models.Transaction, error)

	// CollectBatch walks a wallet list with rate limiting and returns
	// one entry per address in input order
	CollectBatch(ctx context.Context, addresses []string, delay time.Duration) ([]models.WalletTransactions, error)
}

// WalletSource 提供待评分的钱包地址列表
type WalletSource interface {
	// ListWallets retrieves the wallet addresses to score
	ListWallets(ctx context.Context) ([]string, error)
}

// DataStorage 处理特征与评分的持久化
type DataStorage interface {
	// SaveFeatures stores a wallet feature record, replacing any previous one
	SaveFeatures(ctx context.Context, record *models.FeatureRecord) error

	// SaveScore appends a wallet risk score
	SaveScore(ctx context.Context, score *models.WalletScore) error

	// GetLatestScore retrieves the most recent score of a wallet
	GetLatestScore(ctx context.Context, wallet string) (*models.WalletScore, error)

	// GetScoreHistory retrieves scores of a wallet within a time range
	GetScoreHistory(ctx context.Context, wallet string, start, end time.Time) ([]models.WalletScore, error)
}
