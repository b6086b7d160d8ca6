package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/songzhibin97/walletrisk/internal/models"
)

// MultiSourceCollector implements TransactionCollector by trying multiple
// block-explorer sources in order until one succeeds
type MultiSourceCollector struct {
	sources []TxSource
	workers int
	logger  Logger
}

type Logger interface {
	Error(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
}

type TxSource interface {
	Name() string
	FetchTransactions(ctx context.Context, address string) ([]models.Transaction, error)
}

func NewMultiSourceCollector(sources []TxSource, workers int, logger Logger) *MultiSourceCollector {
	if workers <= 0 {
		workers = 1
	}
	return &MultiSourceCollector{
		sources: sources,
		workers: workers,
		logger:  logger,
	}
}

// CollectTransactions implements TransactionCollector interface
func (c *MultiSourceCollector) CollectTransactions(ctx context.Context, address string) ([]models.Transaction, error) {
	for _, source := range c.sources {
		txs, err := source.FetchTransactions(ctx, address)
		if err == nil {
			c.logger.Info("collected transactions", "source", source.Name(), "address", address, "count", len(txs))
			return txs, nil
		}
		c.logger.Error("failed to collect transactions", "source", source.Name(), "address", address, "error", err)
	}

	return nil, fmt.Errorf("failed to collect transactions for %s from all sources", address)
}

// CollectBatch implements TransactionCollector interface. Each fetch waits
// for the shared ticker so the combined request rate stays within the
// explorer's limit regardless of worker count. A wallet whose fetch fails
// is recorded with an empty transaction list rather than aborting the batch.
func (c *MultiSourceCollector) CollectBatch(ctx context.Context, addresses []string, delay time.Duration) ([]models.WalletTransactions, error) {
	results := make([]models.WalletTransactions, len(addresses))

	var ticker *time.Ticker
	if delay > 0 {
		ticker = time.NewTicker(delay)
		defer ticker.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			if ticker != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			} else if err := ctx.Err(); err != nil {
				return err
			}

			txs, err := c.CollectTransactions(ctx, address)
			if err != nil {
				// 单个钱包失败不阻断整批，按空交易记录继续
				txs = nil
			}
			results[i] = models.WalletTransactions{Wallet: address, Transactions: txs}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
