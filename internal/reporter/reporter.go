package reporter

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"price-action-bot-go/internal/backtest"
	"price-action-bot-go/internal/logger"
	"price-action-bot-go/internal/models"
)

// PrintReport 把回测结果渲染为控制台报告：汇总指标 + 逐笔交易表格。
func PrintReport(res *backtest.Result, dataPath string) {
	log := logger.S()

	log.Info("========== 回测结果报告 ==========")
	log.Infof("数据文件:         %s", dataPath)
	log.Infof("交易对:           %s", res.Symbol)
	log.Infof("策略:             %s", res.Strategy)
	log.Infof("回测周期:         %s 到 %s (%d 根K线)",
		res.StartTime.Format("2006-01-02 15:04"),
		res.EndTime.Format("2006-01-02 15:04"),
		res.BarCount)
	log.Info("------------------------------------")
	log.Infof("总交易次数:       %d", res.Summary.TotalTrades)
	log.Infof("盈利次数:         %d", res.Summary.WinningTrades)
	log.Infof("亏损次数:         %d", res.Summary.LosingTrades)
	log.Infof("胜率:             %.2f%%", res.Summary.WinRate)
	log.Infof("累计盈亏:         %.4f", res.Summary.CumulativePnL)
	log.Infof("盈亏因子:         %.2f", res.Summary.ProfitFactor)
	log.Infof("最大回撤:         %.4f", res.Summary.MaxDrawdown)

	if res.FinalTrend != nil {
		log.Infof("期末市场结构:     %s (高点证据 %d 个, 低点证据 %d 个)",
			res.FinalTrend.State, len(res.FinalTrend.RecentHighs), len(res.FinalTrend.RecentLows))
	}
	if len(res.Zones) > 0 {
		active := 0
		for _, z := range res.Zones {
			if z.Status == models.ZoneActive {
				active++
			}
		}
		log.Infof("区域记录:         %d 个 (其中 active %d 个)", len(res.Zones), active)
	}
	log.Info("===================================")

	if len(res.Trades) > 0 {
		printTradeTable(res.Trades)
	}
}

// printTradeTable 用go-pretty渲染逐笔交易明细。
func printTradeTable(trades []models.Trade) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "方向", "入场时间", "入场价", "止损", "止盈", "出场时间", "出场价", "出场原因", "盈亏"})

	for i, tr := range trades {
		t.AppendRow(table.Row{
			i + 1,
			tr.Direction,
			tr.EntryTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", tr.EntryPrice),
			fmt.Sprintf("%.4f", tr.StopLoss),
			fmt.Sprintf("%.4f", tr.TakeProfit),
			tr.ExitTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			tr.ExitReason,
			fmt.Sprintf("%+.4f", tr.PnL),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 10, Align: text.AlignRight},
	})
	t.Render()
}

// PrintAnalysis 打印analyze模式的结构分析结果：趋势、证据摆动与区域列表。
func PrintAnalysis(symbol string, snap models.TrendSnapshot, zones []models.Zone) {
	log := logger.S()

	log.Infof("========== %s 结构分析 ==========", symbol)
	log.Infof("市场结构: %s", snap.State)
	for _, sw := range snap.RecentHighs {
		log.Infof("  证据高点: index=%d price=%.4f", sw.Index, sw.Price)
	}
	for _, sw := range snap.RecentLows {
		log.Infof("  证据低点: index=%d price=%.4f", sw.Index, sw.Price)
	}

	if len(zones) == 0 {
		log.Info("暂无区域记录")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "类型", "锚定价", "下边界", "上边界", "创建K线", "状态"})
	for _, z := range zones {
		t.AppendRow(table.Row{
			z.ID, z.Kind,
			fmt.Sprintf("%.4f", z.AnchorPrice),
			fmt.Sprintf("%.4f", z.LowerBound),
			fmt.Sprintf("%.4f", z.UpperBound),
			z.CreatedAtIndex, z.Status,
		})
	}
	t.Render()
}
