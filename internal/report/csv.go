package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// WriteScoresCSV writes wallet scores to a CSV file with a wallet_id,score
// header, one row per wallet in input order.
func WriteScoresCSV(path string, scores []models.WalletScore) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"wallet_id", "score"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, s := range scores {
		if err := w.Write([]string{s.Wallet, strconv.Itoa(s.Score)}); err != nil {
			return fmt.Errorf("failed to write score for %s: %w", s.Wallet, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}
