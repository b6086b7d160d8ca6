package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/songzhibin97/walletrisk/internal/utils/request"

	"github.com/songzhibin97/walletrisk/internal/models"
)

type EtherscanSource struct {
	baseURL    string
	apiKey     string
	httpClient *resty.Client
}

func NewEtherscanSource(apiKey string) *EtherscanSource {
	return &EtherscanSource{
		baseURL:    "https://api.etherscan.io",
		apiKey:     apiKey,
		httpClient: request.Request,
	}
}

func (e *EtherscanSource) Name() string {
	return "etherscan"
}

// FetchTransactions retrieves the full normal-transaction history of an
// address via the account txlist endpoint, oldest first.
func (e *EtherscanSource) FetchTransactions(ctx context.Context, address string) ([]models.Transaction, error) {
	url := fmt.Sprintf("%s/api?module=account&action=txlist&address=%s&startblock=0&endblock=99999999&sort=asc&apikey=%s",
		e.baseURL, address, e.apiKey)

	resp, err := e.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	// result 在成功时是交易数组，失败时是错误描述字符串，需要分两步解码
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Status != "1" {
		// 查无交易的钱包按空历史处理，不视为错误
		if strings.Contains(envelope.Message, "No transactions found") {
			return nil, nil
		}
		return nil, fmt.Errorf("etherscan error: %s", envelope.Message)
	}

	var raw []etherscanTx
	if err := json.Unmarshal(envelope.Result, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode transaction list: %w", err)
	}

	txs := make([]models.Transaction, 0, len(raw))
	for _, tx := range raw {
		converted, err := tx.toModel()
		if err != nil {
			return nil, err
		}
		txs = append(txs, converted)
	}

	return txs, nil
}

// etherscanTx 接口返回的原始交易，数值均为十进制字符串
type etherscanTx struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`     // 单位 wei
	TimeStamp string `json:"timeStamp"` // Unix 秒
	IsError   string `json:"isError"`
}

func (t *etherscanTx) toModel() (models.Transaction, error) {
	// wei 超出 int64 范围，按浮点解析后折算为 ETH
	valueWei, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to parse value of tx %s: %w", t.Hash, err)
	}

	ts, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to parse timestamp of tx %s: %w", t.Hash, err)
	}

	return models.Transaction{
		Hash:      t.Hash,
		From:      t.From,
		To:        t.To,
		ValueETH:  valueWei / 1e18,
		Timestamp: time.Unix(ts, 0),
		Failed:    t.IsError == "1",
	}, nil
}
