package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/songzhibin97/walletrisk/internal/models"

	_ "github.com/lib/pq"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStorage{db: db}

	err = s.initTables()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return s, nil
}

// SaveFeatures implements DataStorage interface
func (s *PostgresStorage) SaveFeatures(ctx context.Context, record *models.FeatureRecord) error {
	query := `
        INSERT INTO wallet_features (
            wallet_id, tx_count, total_value_eth, avg_value_eth,
            failed_txs, recent_activity_ratio, unique_contracts,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $8
        )
        ON CONFLICT (wallet_id) DO UPDATE SET
            tx_count = EXCLUDED.tx_count,
            total_value_eth = EXCLUDED.total_value_eth,
            avg_value_eth = EXCLUDED.avg_value_eth,
            failed_txs = EXCLUDED.failed_txs,
            recent_activity_ratio = EXCLUDED.recent_activity_ratio,
            unique_contracts = EXCLUDED.unique_contracts,
            updated_at = EXCLUDED.updated_at
    `

	_, err := s.db.ExecContext(ctx, query,
		record.Wallet,
		record.TxCount,
		record.TotalValueETH,
		record.AvgValueETH,
		record.FailedTxs,
		record.RecentActivityRatio,
		record.UniqueContracts,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to save wallet features: %w", err)
	}

	return nil
}

// SaveScore implements DataStorage interface
func (s *PostgresStorage) SaveScore(ctx context.Context, score *models.WalletScore) error {
	query := `
        INSERT INTO wallet_scores (
            wallet_id, score, scored_at
        ) VALUES (
            $1, $2, $3
        )
    `

	_, err := s.db.ExecContext(ctx, query,
		score.Wallet,
		score.Score,
		score.ScoredAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save wallet score: %w", err)
	}

	return nil
}

// GetLatestScore implements DataStorage interface
func (s *PostgresStorage) GetLatestScore(ctx context.Context, wallet string) (*models.WalletScore, error) {
	query := `
        SELECT wallet_id, score, scored_at
        FROM wallet_scores
        WHERE wallet_id = $1
        ORDER BY scored_at DESC
        LIMIT 1
    `

	var score models.WalletScore
	err := s.db.QueryRowContext(ctx, query, wallet).Scan(
		&score.Wallet,
		&score.Score,
		&score.ScoredAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no score found for wallet: %s", wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score: %w", err)
	}

	return &score, nil
}

// GetScoreHistory implements DataStorage interface
func (s *PostgresStorage) GetScoreHistory(ctx context.Context, wallet string, start, end time.Time) ([]models.WalletScore, error) {
	query := `
        SELECT wallet_id, score, scored_at
        FROM wallet_scores
        WHERE wallet_id = $1 AND scored_at BETWEEN $2 AND $3
        ORDER BY scored_at ASC
    `

	rows, err := s.db.QueryContext(ctx, query, wallet, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	var result []models.WalletScore
	for rows.Next() {
		var score models.WalletScore
		err := rows.Scan(
			&score.Wallet,
			&score.Score,
			&score.ScoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet score: %w", err)
		}
		result = append(result, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet score rows: %w", err)
	}

	return result, nil
}

func (s *PostgresStorage) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS wallet_features (
			id SERIAL PRIMARY KEY,
			wallet_id VARCHAR(64) UNIQUE NOT NULL,
			tx_count INT,
			total_value_eth NUMERIC(30, 18),
			avg_value_eth NUMERIC(30, 18),
			failed_txs INT,
			recent_activity_ratio NUMERIC(10, 6),
			unique_contracts INT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS wallet_scores (
			id SERIAL PRIMARY KEY,
			wallet_id VARCHAR(64) NOT NULL,
			score INT NOT NULL,
			scored_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}
