package wallets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/songzhibin97/walletrisk/internal/utils/request"
)

// ErrNoWallets is returned when the sheet contains no wallet addresses.
var ErrNoWallets = errors.New("wallets: no wallet addresses found")

// SheetSource implements WalletSource backed by a Google Sheets CSV export URL
type SheetSource struct {
	url        string
	httpClient *resty.Client
}

func NewSheetSource(url string) *SheetSource {
	return &SheetSource{
		url:        url,
		httpClient: request.Request,
	}
}

// ListWallets implements WalletSource interface
func (s *SheetSource) ListWallets(ctx context.Context) ([]string, error) {
	resp, err := s.httpClient.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet sheet: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	rows, err := csv.NewReader(bytes.NewReader(resp.Body())).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoWallets
	}

	column := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "wallet_id") {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, fmt.Errorf("wallet sheet missing wallet_id column")
	}

	var wallets []string
	for _, row := range rows[1:] {
		if column >= len(row) {
			continue
		}
		if addr := strings.TrimSpace(row[column]); addr != "" {
			wallets = append(wallets, addr)
		}
	}

	if len(wallets) == 0 {
		return nil, ErrNoWallets
	}
	return wallets, nil
}
