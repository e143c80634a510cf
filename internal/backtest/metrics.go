package backtest

import (
	"price-action-bot-go/internal/models"
)

// summarize 从逐笔交易与权益曲线汇总出报告指标。
func summarize(trades []models.Trade, equityCurve []float64) models.Summary {
	s := models.Summary{TotalTrades: len(trades)}

	var totalWin, totalLoss float64
	for _, t := range trades {
		s.CumulativePnL += t.PnL
		if t.PnL > 0 {
			s.WinningTrades++
			totalWin += t.PnL
		} else {
			s.LosingTrades++
			totalLoss += -t.PnL
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = 100 * float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if totalLoss > 0 {
		s.ProfitFactor = totalWin / totalLoss
	} else {
		// 无亏损的运行报告毛利润，保持指标单调且可JSON序列化
		s.ProfitFactor = totalWin
	}
	s.MaxDrawdown = maxDrawdown(equityCurve)

	return s
}

// maxDrawdown 返回权益曲线上最大的峰谷回撤（与盈亏同单位的价格量）。
func maxDrawdown(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	peak := curve[0]
	maxDD := 0.0
	for _, eq := range curve {
		if eq > peak {
			peak = eq
		}
		if dd := peak - eq; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
