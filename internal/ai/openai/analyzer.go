package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/songzhibin97/walletrisk/internal/ai"
	"github.com/songzhibin97/walletrisk/internal/models"
)

// OpenAIAnalyzer implements the Analyzer interface using OpenAI
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer creates a new OpenAI analyzer instance
func NewOpenAIAnalyzer(apiKey string, model string) *OpenAIAnalyzer {
	client := openai.NewClient(apiKey)
	if model == "" {
		model = openai.GPT4 // 默认使用GPT-4
	}
	return &OpenAIAnalyzer{
		client: client,
		model:  model,
	}
}

// ExplainScore implements the Analyzer interface
func (a *OpenAIAnalyzer) ExplainScore(ctx context.Context, record *models.FeatureRecord, score int) (*ai.RiskCommentary, error) {
	prompt := fmt.Sprintf(`分析以下钱包在 Compound 协议上的活动特征，解释其风险评分:
钱包地址: %s
交易次数: %d
总交易额(ETH): %f
平均交易额(ETH): %f
失败交易数: %d
近30天活跃占比: %.2f
交互合约数: %d
风险评分: %d (0表示最高风险，1000表示最低风险)

请列出导致该评分的主要风险因素，并给出一条处置建议。

输出格式为JSON:
{
    "risk_factors": ["因素1", "因素2", ...],
    "recommendation": string,
    "confidence": float
}`,
		record.Wallet, record.TxCount, record.TotalValueETH, record.AvgValueETH,
		record.FailedTxs, record.RecentActivityRatio, record.UniqueContracts, score)

	resp, err := a.createChatCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to explain score: %w", err)
	}

	var commentary ai.RiskCommentary
	if err := json.Unmarshal([]byte(resp), &commentary); err != nil {
		return nil, fmt.Errorf("failed to parse commentary results: %w", err)
	}

	commentary.Wallet = record.Wallet
	return &commentary, nil
}

// FlagAnomalies implements the Analyzer interface
func (a *OpenAIAnalyzer) FlagAnomalies(ctx context.Context, records []models.FeatureRecord) (*ai.AnomalyAnalysis, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no feature records provided")
	}

	// 构建批次特征描述
	batchDesc := "钱包特征批次:\n"
	for _, r := range records {
		batchDesc += fmt.Sprintf("钱包: %s, 交易次数: %d, 总额: %.4f ETH, 失败: %d, 近期活跃: %.2f, 合约数: %d\n",
			r.Wallet, r.TxCount, r.TotalValueETH, r.FailedTxs, r.RecentActivityRatio, r.UniqueContracts)
	}

	prompt := fmt.Sprintf(`分析以下一批钱包的链上活动特征，找出疑似机器人或异常高风险的钱包:
%s

判断依据可包括：异常高的交易频率、大量失败交易、极端的金额分布等。

输出格式为JSON:
{
    "wallets": ["地址1", "地址2", ...],
    "reasons": ["原因1", "原因2", ...],
    "confidence": float
}`, batchDesc)

	resp, err := a.createChatCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to flag anomalies: %w", err)
	}

	var analysis ai.AnomalyAnalysis
	if err := json.Unmarshal([]byte(resp), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse anomaly results: %w", err)
	}

	return &analysis, nil
}

// createChatCompletion is a helper function to make OpenAI API calls
func (a *OpenAIAnalyzer) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "你是一个专业的链上风控分析师，擅长解读钱包行为特征与风险评分。请始终以JSON格式返回分析结果。",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3, // 使用较低的temperature以获得更稳定的输出
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
