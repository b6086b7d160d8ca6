package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/songzhibin97/walletrisk/internal/data/collector/etherscan"

	collectorData "github.com/songzhibin97/walletrisk/internal/data/collector"

	aiOpenAI "github.com/songzhibin97/walletrisk/internal/ai/openai"

	"github.com/songzhibin97/walletrisk/internal/data/storage"
	"github.com/songzhibin97/walletrisk/internal/data/wallets"

	"github.com/songzhibin97/walletrisk/internal/ai"
	"github.com/songzhibin97/walletrisk/internal/configs"
	"github.com/songzhibin97/walletrisk/internal/data"
	"github.com/songzhibin97/walletrisk/internal/features"
	"github.com/songzhibin97/walletrisk/internal/models"
	"github.com/songzhibin97/walletrisk/internal/report"
	"github.com/songzhibin97/walletrisk/internal/scoring"
)

type ScoringSystem struct {
	config       *configs.Config
	walletSource data.WalletSource
	collector    data.TransactionCollector
	dataStorage  data.DataStorage
	scorer       scoring.Scorer
	aiAnalyzer   ai.Analyzer // 可为 nil，按配置启用
}

func NewScoringSystem(
	config *configs.Config,
	walletSource data.WalletSource,
	collector data.TransactionCollector,
	storage data.DataStorage,
	scorer scoring.Scorer,
	analyzer ai.Analyzer,
) *ScoringSystem {
	return &ScoringSystem{
		config:       config,
		walletSource: walletSource,
		collector:    collector,
		dataStorage:  storage,
		scorer:       scorer,
		aiAnalyzer:   analyzer,
	}
}

// Run 执行一轮完整的钱包风险评分
func (s *ScoringSystem) Run(ctx context.Context) error {
	// 1. 加载钱包地址列表
	walletList, err := s.walletSource.ListWallets(ctx)
	if err != nil {
		return err
	}
	if s.config.MaxWallets > 0 && len(walletList) > s.config.MaxWallets {
		walletList = walletList[:s.config.MaxWallets]
	}

	log.Info("loaded wallet list", "count", len(walletList))

	delay, err := time.ParseDuration(s.config.Etherscan.RequestDelay)
	if err != nil {
		delay = 200 * time.Millisecond
	}

	// 2. 抓取交易历史
	batch, err := s.collector.CollectBatch(ctx, walletList, delay)
	if err != nil {
		return err
	}

	log.Info("collected transaction batch", "wallets", len(batch))

	// 3. 过滤 Compound 交易并提取特征
	now := time.Now()
	records := make([]models.FeatureRecord, 0, len(batch))
	for _, wt := range batch {
		compoundTxs := features.FilterCompound(wt.Transactions)
		record := features.Extract(wt.Wallet, compoundTxs, now)

		if err := s.dataStorage.SaveFeatures(ctx, &record); err != nil {
			log.Error("failed to save features", "wallet", wt.Wallet, "err", err)
		}
		records = append(records, record)
	}

	// 4. 批量评分
	scores, err := s.scorer.ScoreBatch(records)
	if err != nil {
		return err
	}

	for i := range scores {
		// 与上一轮评分对比，便于追踪风险变化
		if prev, err := s.dataStorage.GetLatestScore(ctx, scores[i].Wallet); err == nil {
			log.Debug("score changed",
				"wallet", scores[i].Wallet,
				"previous", prev.Score,
				"current", scores[i].Score,
			)
		}

		if err := s.dataStorage.SaveScore(ctx, &scores[i]); err != nil {
			log.Error("failed to save score", "wallet", scores[i].Wallet, "err", err)
		}
	}

	// 5. 输出评分结果
	if err := report.WriteScoresCSV(s.config.Output.CSVPath, scores); err != nil {
		return err
	}

	log.Info("wallet risk scores saved", "path", s.config.Output.CSVPath, "wallets", len(scores))

	// 6. 对 0 分钱包请求风险解读
	if s.aiAnalyzer != nil {
		s.explainFlagged(ctx, records, scores)
	}

	return nil
}

// explainFlagged 对评分为 0 的钱包逐个请求 AI 解读并记录
func (s *ScoringSystem) explainFlagged(ctx context.Context, records []models.FeatureRecord, scores []models.WalletScore) {
	now := time.Now()

	for i := range scores {
		if scores[i].Score != 0 {
			continue
		}

		commentary, err := s.aiAnalyzer.ExplainScore(ctx, &records[i], scores[i].Score)
		if err != nil {
			log.Error("failed to explain score", "wallet", scores[i].Wallet, "err", err)
			continue
		}

		// 附带近30天的历史评分次数，区分持续高风险与首次命中
		history, err := s.dataStorage.GetScoreHistory(ctx, scores[i].Wallet, now.AddDate(0, 0, -30), now)
		if err != nil {
			log.Error("failed to load score history", "wallet", scores[i].Wallet, "err", err)
		}

		log.Warn("high risk wallet",
			"wallet", commentary.Wallet,
			"risk_factors", commentary.RiskFactors,
			"recommendation", commentary.Recommendation,
			"recent_scores", len(history),
		)
	}
}

var (
	flagconf string

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.json", "config path, eg: -conf config.json")
}

func main() {
	flag.Parse()

	if err := configs.LoadEnv(); err != nil {
		log.Debug("no .env file found", "err", err)
	}

	// 加载配置
	config := &configs.Config{}
	configFile, err := os.ReadFile(flagconf)
	if err != nil {
		log.Error("Error reading config file", "err", err)
		return
	}

	if err := json.Unmarshal(configFile, config); err != nil {
		log.Error("Error parsing config file", "err", err)
		return
	}

	config.ApplyEnv()
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		log.Error("Invalid config", "err", err)
		return
	}

	log.Debug("Loaded config", "sheet_url", config.SheetURL, "max_wallets", config.MaxWallets)

	// 初始化各个组件
	walletSource := wallets.NewSheetSource(config.SheetURL)

	log.Debug("init wallet source")

	collector := collectorData.NewMultiSourceCollector([]collectorData.TxSource{
		etherscan.NewEtherscanSource(config.Etherscan.APIKey),
	}, config.Etherscan.Workers, log)

	log.Debug("init collector")

	storager, err := storage.NewPostgresStorage(config.Database.ConnStr)
	if err != nil {
		log.Error("Error creating storage", "err", err)
		return
	}

	log.Debug("init storager")

	scorer := scoring.NewWeightedScorer()

	log.Debug("init scorer")

	var analyzer ai.Analyzer
	if config.AIConfig.Enabled {
		analyzer = aiOpenAI.NewOpenAIAnalyzer(config.AIConfig.APIKey, config.AIConfig.ModelType)
		log.Debug("init analyzer")
	}

	// 创建评分系统
	system := NewScoringSystem(
		config,
		walletSource,
		collector,
		storager,
		scorer,
		analyzer,
	)

	// 执行评分
	ctx := context.Background()
	if err := system.Run(ctx); err != nil {
		log.Error("System error", "err", err)
	}
}
