package scoring

import (
	"errors"
	"testing"

	"github.com/songzhibin97/walletrisk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedScorer_ScoreBatch(t *testing.T) {
	tests := []struct {
		name       string
		records    []models.FeatureRecord
		wantScores []int
	}{
		{
			// 两条记录各特征均不同：每个特征归一化后非 0 即 1，
			// 得分等于各自占最大值的特征权重之和 ×1000
			name: "two active records with full variance",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 0, RecentActivityRatio: 0.8, UniqueContracts: 3},
				{Wallet: "0xbbb", TxCount: 100, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 2, RecentActivityRatio: 0.1, UniqueContracts: 1},
			},
			wantScores: []int{900, 100},
		},
		{
			name: "high tx count triggers zero override",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 0, RecentActivityRatio: 0.8, UniqueContracts: 3},
				{Wallet: "0xbot", TxCount: 600, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 0, RecentActivityRatio: 0.1, UniqueContracts: 1},
			},
			// 唯一未命中阈值的记录自成批次极值，全部特征按退化极差取 0
			wantScores: []int{0, 0},
		},
		{
			name: "excessive failed txs triggers zero override",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 0, RecentActivityRatio: 0.8, UniqueContracts: 3},
				{Wallet: "0xbbb", TxCount: 100, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 2, RecentActivityRatio: 0.1, UniqueContracts: 1},
				{Wallet: "0xbad", TxCount: 50, TotalValueETH: 9, AvgValueETH: 0.9, FailedTxs: 11, RecentActivityRatio: 0.5, UniqueContracts: 5},
			},
			wantScores: []int{900, 100, 0},
		},
		{
			name: "boundary values do not trigger override",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 500, TotalValueETH: 5, AvgValueETH: 0.01, FailedTxs: 10, RecentActivityRatio: 0.8, UniqueContracts: 3},
				{Wallet: "0xbbb", TxCount: 100, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 2, RecentActivityRatio: 0.1, UniqueContracts: 1},
			},
			// tx_count == 500 与 failed_txs == 10 均未超过阈值，正常参与评分：
			// avg_value_eth 相同，该特征按退化极差对两条记录都取 0
			wantScores: []int{400, 500},
		},
		{
			name: "identical records all score zero",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 1, RecentActivityRatio: 0.5, UniqueContracts: 2},
				{Wallet: "0xbbb", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 1, RecentActivityRatio: 0.5, UniqueContracts: 2},
				{Wallet: "0xccc", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 1, RecentActivityRatio: 0.5, UniqueContracts: 2},
			},
			wantScores: []int{0, 0, 0},
		},
		{
			name: "single record batch scores zero",
			records: []models.FeatureRecord{
				{Wallet: "0xaaa", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 0, RecentActivityRatio: 0.8, UniqueContracts: 3},
			},
			wantScores: []int{0},
		},
		{
			name: "all records flagged",
			records: []models.FeatureRecord{
				{Wallet: "0xbot1", TxCount: 501, TotalValueETH: 5, AvgValueETH: 0.5, FailedTxs: 0, RecentActivityRatio: 0.8, UniqueContracts: 3},
				{Wallet: "0xbot2", TxCount: 1000, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 11, RecentActivityRatio: 0.1, UniqueContracts: 1},
			},
			wantScores: []int{0, 0},
		},
		{
			name: "zero activity wallet",
			records: []models.FeatureRecord{
				{Wallet: "0xempty"},
				{Wallet: "0xbbb", TxCount: 100, TotalValueETH: 1, AvgValueETH: 0.01, FailedTxs: 2, RecentActivityRatio: 0.1, UniqueContracts: 1},
			},
			// 空钱包的 inv_tx_count / inv_avg / inv_failed 均为各自最大值
			wantScores: []int{600, 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewWeightedScorer()

			scores, err := scorer.ScoreBatch(tt.records)
			require.NoError(t, err)
			require.Len(t, scores, len(tt.records))

			for i, want := range tt.wantScores {
				assert.Equal(t, tt.records[i].Wallet, scores[i].Wallet, "order must be preserved")
				assert.Equal(t, want, scores[i].Score, "wallet %s", tt.records[i].Wallet)
				assert.GreaterOrEqual(t, scores[i].Score, 0)
				assert.LessOrEqual(t, scores[i].Score, 1000)
				assert.False(t, scores[i].ScoredAt.IsZero())
			}
		})
	}
}

func TestWeightedScorer_ScoreBatch_Validation(t *testing.T) {
	valid := models.FeatureRecord{
		Wallet: "0xok", TxCount: 10, TotalValueETH: 5, AvgValueETH: 0.5,
		FailedTxs: 1, RecentActivityRatio: 0.5, UniqueContracts: 2,
	}

	tests := []struct {
		name      string
		record    models.FeatureRecord
		wantField string
	}{
		{
			name:      "negative tx count",
			record:    models.FeatureRecord{Wallet: "0xbad", TxCount: -1},
			wantField: "tx_count",
		},
		{
			name:      "negative failed txs",
			record:    models.FeatureRecord{Wallet: "0xbad", TxCount: 5, FailedTxs: -2},
			wantField: "failed_txs",
		},
		{
			name:      "activity ratio above one",
			record:    models.FeatureRecord{Wallet: "0xbad", TxCount: 5, RecentActivityRatio: 1.2},
			wantField: "recent_activity_ratio",
		},
		{
			name:      "activity ratio below zero",
			record:    models.FeatureRecord{Wallet: "0xbad", TxCount: 5, RecentActivityRatio: -0.1},
			wantField: "recent_activity_ratio",
		},
		{
			name:      "failed txs exceed tx count",
			record:    models.FeatureRecord{Wallet: "0xbad", TxCount: 5, FailedTxs: 6, RecentActivityRatio: 0.5},
			wantField: "failed_txs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewWeightedScorer()

			scores, err := scorer.ScoreBatch([]models.FeatureRecord{valid, tt.record})
			require.Error(t, err)
			assert.Nil(t, scores)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "0xbad", invalid.Wallet)
			assert.Equal(t, tt.wantField, invalid.Field)
		})
	}
}

func TestWeightedScorer_ScoreBatch_EmptyBatch(t *testing.T) {
	scorer := NewWeightedScorer()

	scores, err := scorer.ScoreBatch(nil)
	assert.Nil(t, scores)
	assert.True(t, errors.Is(err, ErrEmptyBatch))

	scores, err = scorer.ScoreBatch([]models.FeatureRecord{})
	assert.Nil(t, scores)
	assert.True(t, errors.Is(err, ErrEmptyBatch))
}

// 其余特征固定时，提高 total_value_eth 不应降低得分
func TestWeightedScorer_ScoreBatch_TotalValueMonotonic(t *testing.T) {
	scorer := NewWeightedScorer()

	base := []models.FeatureRecord{
		{Wallet: "0xlow", TxCount: 100, TotalValueETH: 0.1, AvgValueETH: 0.001, FailedTxs: 5, RecentActivityRatio: 0.1, UniqueContracts: 1},
		{Wallet: "0xhigh", TxCount: 5, TotalValueETH: 100, AvgValueETH: 20, FailedTxs: 0, RecentActivityRatio: 0.9, UniqueContracts: 8},
		{Wallet: "0xmid", TxCount: 30, TotalValueETH: 0, AvgValueETH: 0.5, FailedTxs: 1, RecentActivityRatio: 0.5, UniqueContracts: 3},
	}

	prev := -1
	for _, total := range []float64{0, 1, 10, 50, 100, 500} {
		batch := make([]models.FeatureRecord, len(base))
		copy(batch, base)
		batch[2].TotalValueETH = total

		scores, err := scorer.ScoreBatch(batch)
		require.NoError(t, err)

		got := scores[2].Score
		assert.GreaterOrEqual(t, got, prev, "total_value_eth=%v", total)
		prev = got
	}
}

func TestWeightedScorer_ScoreBatch_OrderPreserved(t *testing.T) {
	scorer := NewWeightedScorer()

	records := []models.FeatureRecord{
		{Wallet: "0x1", TxCount: 10, TotalValueETH: 1, AvgValueETH: 0.1, FailedTxs: 0, RecentActivityRatio: 0.2, UniqueContracts: 1},
		{Wallet: "0x2", TxCount: 600, TotalValueETH: 2, AvgValueETH: 0.2, FailedTxs: 0, RecentActivityRatio: 0.4, UniqueContracts: 2},
		{Wallet: "0x3", TxCount: 30, TotalValueETH: 3, AvgValueETH: 0.3, FailedTxs: 2, RecentActivityRatio: 0.6, UniqueContracts: 3},
		{Wallet: "0x4", TxCount: 40, TotalValueETH: 4, AvgValueETH: 0.4, FailedTxs: 12, RecentActivityRatio: 0.8, UniqueContracts: 4},
	}

	scores, err := scorer.ScoreBatch(records)
	require.NoError(t, err)
	require.Len(t, scores, len(records))

	for i := range records {
		assert.Equal(t, records[i].Wallet, scores[i].Wallet)
	}

	// 命中阈值的记录得分必须恰好为 0
	assert.Equal(t, 0, scores[1].Score)
	assert.Equal(t, 0, scores[3].Score)
}
