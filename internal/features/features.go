package features

import (
	"strings"
	"time"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// ComptrollerV2 Compound V2 Comptroller 合约地址，作为钱包活动的过滤条件
const ComptrollerV2 = "0x3d9819210A31b4961b30EF54bE2aeD79B9c9Cd3B"

// 近期活跃度统计窗口
const recentWindow = 30 * 24 * time.Hour

// FilterCompound keeps transactions whose sender or receiver is the
// Compound V2 Comptroller. Address comparison is case-insensitive.
func FilterCompound(txs []models.Transaction) []models.Transaction {
	comptroller := strings.ToLower(ComptrollerV2)

	var result []models.Transaction
	for _, tx := range txs {
		if strings.ToLower(tx.To) == comptroller || strings.ToLower(tx.From) == comptroller {
			result = append(result, tx)
		}
	}
	return result
}

// Extract builds the six-feature record for a wallet from its filtered
// transactions. An empty transaction list yields the all-zero record;
// avg_value_eth is defined as 0 when tx_count is 0.
func Extract(wallet string, txs []models.Transaction, now time.Time) models.FeatureRecord {
	record := models.FeatureRecord{Wallet: wallet}
	if len(txs) == 0 {
		return record
	}

	contracts := make(map[string]struct{})
	var totalValue float64
	var failed, recent int

	for _, tx := range txs {
		totalValue += tx.ValueETH
		if tx.Failed {
			failed++
		}
		if now.Sub(tx.Timestamp) < recentWindow {
			recent++
		}
		contracts[strings.ToLower(tx.To)] = struct{}{}
		contracts[strings.ToLower(tx.From)] = struct{}{}
	}

	record.TxCount = len(txs)
	record.TotalValueETH = totalValue
	record.AvgValueETH = totalValue / float64(len(txs))
	record.FailedTxs = failed
	record.RecentActivityRatio = float64(recent) / float64(len(txs))
	record.UniqueContracts = len(contracts)

	return record
}
