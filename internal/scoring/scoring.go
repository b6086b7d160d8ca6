package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// ErrEmptyBatch is returned when ScoreBatch receives no records;
// batch normalization is undefined over an empty batch.
var ErrEmptyBatch = errors.New("scoring: empty batch")

// InvalidInputError 标记校验失败的记录及字段
type InvalidInputError struct {
	Wallet string
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("scoring: invalid input for wallet %s: %s %s", e.Wallet, e.Field, e.Reason)
}

const (
	// 机器人/高风险硬性判定阈值，命中直接记 0 分
	overrideTxCount   = 500
	overrideFailedTxs = 10

	featureCount = 6
	maxScore     = 1000
)

// 固定特征权重，合计 1.0
var featureWeights = [featureCount]float64{
	0.20, // inv_tx_count：交易次数越多风险越高
	0.30, // total_value_eth：总金额越大风险越低
	0.10, // inv_avg_value_eth：平均金额越大风险越高
	0.30, // inv_failed_txs：失败交易越多风险越高
	0.05, // recent_activity_ratio：近期活跃风险较低
	0.05, // unique_contracts：交互合约越多风险越低
}

// WeightedScorer scores wallet feature batches with a fixed-weight linear
// model over batch min-max normalized features.
type WeightedScorer struct{}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{}
}

// ScoreBatch implements the Scorer interface
func (s *WeightedScorer) ScoreBatch(records []models.FeatureRecord) ([]models.WalletScore, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return nil, err
		}
	}

	// 命中硬性阈值的记录不参与归一化统计
	flagged := make([]bool, len(records))
	quantities := make([][featureCount]float64, len(records))
	for i := range records {
		r := &records[i]
		if r.TxCount > overrideTxCount || r.FailedTxs > overrideFailedTxs {
			flagged[i] = true
			continue
		}
		quantities[i] = [featureCount]float64{
			1 / (float64(r.TxCount) + 1),
			r.TotalValueETH,
			1 / (r.AvgValueETH + 1),
			1 / (float64(r.FailedTxs) + 1),
			r.RecentActivityRatio,
			float64(r.UniqueContracts),
		}
	}

	mins, maxs := batchExtrema(quantities, flagged)

	now := time.Now()
	scores := make([]models.WalletScore, len(records))
	for i := range records {
		scores[i] = models.WalletScore{
			Wallet:   records[i].Wallet,
			ScoredAt: now,
		}
		if flagged[i] {
			continue
		}

		var weighted float64
		for j := 0; j < featureCount; j++ {
			weighted += featureWeights[j] * normalize(quantities[i][j], mins[j], maxs[j])
		}
		scores[i].Score = int(math.RoundToEven(weighted * maxScore))
	}

	return scores, nil
}

func validateRecord(r *models.FeatureRecord) error {
	switch {
	case r.TxCount < 0:
		return &InvalidInputError{Wallet: r.Wallet, Field: "tx_count", Reason: "must be non-negative"}
	case r.FailedTxs < 0:
		return &InvalidInputError{Wallet: r.Wallet, Field: "failed_txs", Reason: "must be non-negative"}
	case r.RecentActivityRatio < 0 || r.RecentActivityRatio > 1:
		return &InvalidInputError{Wallet: r.Wallet, Field: "recent_activity_ratio", Reason: "must be within [0,1]"}
	case r.FailedTxs > r.TxCount:
		return &InvalidInputError{Wallet: r.Wallet, Field: "failed_txs", Reason: "must not exceed tx_count"}
	}
	return nil
}

func batchExtrema(quantities [][featureCount]float64, flagged []bool) (mins, maxs [featureCount]float64) {
	first := true
	for i := range quantities {
		if flagged[i] {
			continue
		}
		if first {
			mins, maxs = quantities[i], quantities[i]
			first = false
			continue
		}
		for j := 0; j < featureCount; j++ {
			mins[j] = math.Min(mins[j], quantities[i][j])
			maxs[j] = math.Max(maxs[j], quantities[i][j])
		}
	}
	return mins, maxs
}

// normalize 批内 min-max 归一化；极差为 0 时约定取 0，避免除零
func normalize(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}
