package scoring

import (
	"github.com/songzhibin97/walletrisk/internal/models"
)

// Scorer defines methods for wallet risk scoring
type Scorer interface {
	// ScoreBatch assigns one risk score per record, preserving input order.
	// Normalization is computed against the batch itself, so the same wallet
	// can receive a different score depending on which wallets it is scored
	// with. Callers expecting per-wallet stability must score fixed batches.
	ScoreBatch(records []models.FeatureRecord) ([]models.WalletScore, error)
}
