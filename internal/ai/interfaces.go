package ai

import (
	"context"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// Analyzer defines methods for LLM-assisted risk commentary
type Analyzer interface {
	// ExplainScore produces human-readable risk factors for a scored wallet
	ExplainScore(ctx context.Context, record *models.FeatureRecord, score int) (*RiskCommentary, error)

	// FlagAnomalies reviews a feature batch for bot-like wallets
	FlagAnomalies(ctx context.Context, records []models.FeatureRecord) (*AnomalyAnalysis, error)
}

// RiskCommentary 单个钱包的风险解读
type RiskCommentary struct {
	Wallet         string   `json:"wallet_id"`
	RiskFactors    []string `json:"risk_factors"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
}

// AnomalyAnalysis 批量异常检测结果
type AnomalyAnalysis struct {
	Wallets    []string `json:"wallets"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}
