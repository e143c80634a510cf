package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"price-action-bot-go/internal/backtest"
	"price-action-bot-go/internal/config"
	"price-action-bot-go/internal/datafeed"
	"price-action-bot-go/internal/downloader"
	"price-action-bot-go/internal/exporter"
	"price-action-bot-go/internal/feed"
	"price-action-bot-go/internal/logger"
	"price-action-bot-go/internal/models"
	"price-action-bot-go/internal/persistence"
	"price-action-bot-go/internal/reporter"
	"price-action-bot-go/internal/strategy"

	"github.com/joho/godotenv"
)

// extractSymbolFromPath 从数据文件路径中提取交易对名称
// 例如: "data/BNBUSDT-2025-03-15-2025-06-15.csv" -> "BNBUSDT"
func extractSymbolFromPath(path string) string {
	name := strings.TrimSuffix(path, ".csv")
	parts := strings.Split(name, "/")
	fileName := parts[len(parts)-1]

	symbolParts := strings.Split(fileName, "-")
	if len(symbolParts) > 0 {
		return symbolParts[0]
	}
	return ""
}

func main() {
	// --- 命令行参数定义 ---
	configPath := flag.String("config", "config.json", "path to the config file")
	mode := flag.String("mode", "backtest", "running mode: backtest, analyze or watch")
	dataPath := flag.String("data", "", "path to historical data file")
	symbol := flag.String("symbol", "", "symbol(s) to download, comma-separated (e.g., BNBUSDT or BTCUSDT,ETHUSDT)")
	startDate := flag.String("start", "", "start date for downloading (YYYY-MM-DD)")
	endDate := flag.String("end", "", "end date for downloading (YYYY-MM-DD)")
	exportPath := flag.String("export", "", "optional path to export trades as CSV")
	dbPath := flag.String("db", "", "optional run database path (overrides config db_path)")
	flag.Parse()

	// --- 初始化日志 (提前) ---
	// 在加载.env与配置文件之前先用默认配置初始化，保证启动阶段也有日志可用
	logger.InitLogger(models.LogConfig{Level: "info", Output: "console"})

	// --- 加载 .env 文件 ---
	if err := godotenv.Load(); err != nil {
		logger.S().Info("未找到 .env 文件，将从系统环境变量中读取。")
	} else {
		logger.S().Info("成功从 .env 文件加载配置。")
	}

	// --- 加载 JSON 配置 ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.S().Fatalf("无法加载配置文件: %v", err)
	}

	// --- 使用文件中的配置重新初始化日志 ---
	logger.InitLogger(cfg.LogConfig)
	defer logger.Sync()

	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// --- 根据模式执行 ---
	switch *mode {
	case "backtest":
		// 多交易对时顺序回测，每个交易对使用全新的策略实例
		symbols := splitSymbols(*symbol)
		for _, sym := range symbols {
			finalDataPath, err := resolveDataPath(cfg, sym, *startDate, *endDate, *dataPath)
			if err != nil {
				logger.S().Fatal(err)
			}
			runBacktestMode(cfg, finalDataPath, perSymbolExportPath(*exportPath, sym, len(symbols)))
		}
	case "analyze":
		finalDataPath, err := resolveDataPath(cfg, *symbol, *startDate, *endDate, *dataPath)
		if err != nil {
			logger.S().Fatal(err)
		}
		runAnalyzeMode(cfg, finalDataPath)
	case "watch":
		runWatchMode(cfg)
	default:
		logger.S().Fatalf("未知的运行模式: %s。请选择 'backtest'、'analyze' 或 'watch'。", *mode)
	}
}

// splitSymbols 解析逗号分隔的交易对列表。空串返回单个空元素，
// 以便走 --data 指定现成文件的路径。
func splitSymbols(s string) []string {
	if s == "" {
		return []string{""}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// perSymbolExportPath 在多交易对回测时为每个交易对派生独立的导出文件名。
func perSymbolExportPath(export, sym string, total int) string {
	if export == "" || total <= 1 {
		return export
	}
	ext := filepath.Ext(export)
	return strings.TrimSuffix(export, ext) + "-" + sym + ext
}

// resolveDataPath 决定历史数据来源：提供 symbol/start/end 时先下载（带缓存），
// 否则必须通过 --data 指定现成文件。成功后返回数据文件路径。
func resolveDataPath(cfg *models.Config, symbol, startDate, endDate, dataPath string) (string, error) {
	shouldDownload := symbol != "" && startDate != "" && endDate != ""

	if shouldDownload {
		startTime, err1 := time.Parse("2006-01-02", startDate)
		endTime, err2 := time.Parse("2006-01-02", endDate)
		if err1 != nil || err2 != nil {
			return "", fmt.Errorf("日期格式错误，请使用 YYYY-MM-DD 格式。start: %v, end: %v", err1, err2)
		}

		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = "data"
		}

		dl := downloader.NewKlineDownloader(cfg.BinanceAPI, cfg.WatchInterval)
		fileName := fmt.Sprintf("%s/%s-%s-%s.csv", dataDir, symbol, startDate, endDate)
		logger.S().Infof("开始下载 %s 从 %s 到 %s 的K线数据...", symbol, startDate, endDate)

		if err := dl.DownloadKlines(symbol, fileName, startTime, endTime); err != nil {
			return "", fmt.Errorf("下载数据失败: %v", err)
		}
		return fileName, nil
	}

	if dataPath == "" {
		return "", fmt.Errorf("请通过 --data 或 --symbol/start/end 参数指定数据源")
	}
	return dataPath, nil
}

// runBacktestMode 运行回测模式
func runBacktestMode(cfg *models.Config, dataPath, exportPath string) {
	logger.S().Info("--- 启动回测模式 ---")

	// 从数据路径中提取 symbol，并用它来覆盖 config 中的值
	backtestSymbol := extractSymbolFromPath(dataPath)
	if backtestSymbol == "" {
		backtestSymbol = cfg.Symbol
	}
	if backtestSymbol == "" {
		logger.S().Fatalf("无法从数据文件路径 %s 中提取交易对，且配置未指定 symbol", dataPath)
	}

	bars, err := datafeed.LoadCSV(dataPath)
	if err != nil {
		logger.S().Fatalf("加载历史数据失败: %v", err)
	}
	logger.S().Infof("已加载 %d 根K线，开始回测...", len(bars))

	strat, err := strategy.New(cfg)
	if err != nil {
		logger.S().Fatalf("初始化策略失败: %v", err)
	}

	engine := backtest.NewEngine(backtestSymbol, strat)
	res, err := engine.Run(bars)
	if err != nil {
		logger.S().Fatalf("回测失败: %v", err)
	}

	reporter.PrintReport(res, dataPath)

	if exportPath != "" {
		if err := exporter.WriteTradesCSV(res, exportPath); err != nil {
			logger.S().Errorf("导出交易明细失败: %v", err)
		} else {
			logger.S().Infof("交易明细已导出到 %s", exportPath)
		}
	}

	if cfg.DBPath != "" {
		repo, err := persistence.NewBadgerRepository(cfg.DBPath)
		if err != nil {
			logger.S().Errorf("打开结果数据库失败: %v", err)
			return
		}
		defer repo.Close()

		id, err := repo.SaveRun(res)
		if err != nil {
			logger.S().Errorf("保存回测结果失败: %v", err)
			return
		}
		logger.S().Infof("回测结果已保存，运行ID: %s", id)
	}
}

// runAnalyzeMode 只做结构分析：跑完整个序列后报告趋势状态与区域清单，不产生交易
func runAnalyzeMode(cfg *models.Config, dataPath string) {
	logger.S().Info("--- 启动分析模式 ---")

	symbol := extractSymbolFromPath(dataPath)
	if symbol == "" {
		symbol = cfg.Symbol
	}

	bars, err := datafeed.LoadCSV(dataPath)
	if err != nil {
		logger.S().Fatalf("加载历史数据失败: %v", err)
	}

	strat := strategy.NewPriceAction(cfg)
	for i, bar := range bars {
		strat.OnBar(bar, i)
	}

	reporter.PrintAnalysis(symbol, strat.Trend(), strat.Zones())
}

// runWatchMode 订阅实时K线并在信号出现时记录日志，不下单
func runWatchMode(cfg *models.Config) {
	logger.S().Info("--- 启动观察模式 ---")
	if cfg.Symbol == "" {
		logger.S().Fatal("观察模式需要在配置中指定 symbol")
	}

	strat, err := strategy.New(cfg)
	if err != nil {
		logger.S().Fatalf("初始化策略失败: %v", err)
	}

	klineFeed := feed.NewKlineFeed(cfg)

	index := 0
	go klineFeed.Run(func(bar models.Bar) {
		sig := strat.OnBar(bar, index)
		index++
		if sig == nil {
			return
		}
		logger.S().Infof("发现信号: %s %s 入场 %.4f 止损 %.4f 止盈 %.4f (区域 #%d)",
			cfg.Symbol, sig.Direction, sig.EntryPrice, sig.StopLoss, sig.TakeProfit, sig.ZoneID)
	})

	// 等待中断信号以实现优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	klineFeed.Stop()
	logger.S().Info("观察模式已成功停止。")
}
