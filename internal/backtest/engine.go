package backtest

import (
	"time"

	"price-action-bot-go/internal/models"
	"price-action-bot-go/internal/strategy"
)

// Result 是一次回测运行的完整产出：逐笔交易、汇总指标、权益曲线，
// 以及（价格行为策略下）最终的趋势证据与区域arena快照。
type Result struct {
	Symbol      string                `json:"symbol"`
	Strategy    string                `json:"strategy"`
	StartTime   time.Time             `json:"start_time"`
	EndTime     time.Time             `json:"end_time"`
	BarCount    int                   `json:"bar_count"`
	Trades      []models.Trade        `json:"trades"`
	Summary     models.Summary        `json:"summary"`
	EquityCurve []float64             `json:"equity_curve"` // 每根K线收盘后的累计盈亏
	FinalTrend  *models.TrendSnapshot `json:"final_trend,omitempty"`
	Zones       []models.Zone         `json:"zones,omitempty"`
}

// position 是引擎私有的持仓簿记。同一时刻至多一个仓位。
type position struct {
	direction  models.Direction
	entryIndex int
	entryTime  time.Time
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	zoneID     int64
}

// structureReporter 由能暴露结构分析结果的策略实现（价格行为策略）。
type structureReporter interface {
	Trend() models.TrendSnapshot
	Zones() []models.Zone
}

// Engine 逐K线重放整个序列：先结算持仓出场，再在空仓时询问策略。
// 状态机只有 flat / in_position 两态；同一根K线内平仓永远先于开仓。
type Engine struct {
	symbol string
	strat  strategy.Strategy
}

// NewEngine 创建回测引擎。每次运行必须搭配独立的策略实例。
func NewEngine(symbol string, strat strategy.Strategy) *Engine {
	return &Engine{symbol: symbol, strat: strat}
}

// Run 重放K线序列并返回结果。
//
// 输入违反采集契约（时间戳非严格递增、价格非正、成交量为负）时
// 返回 *models.InvalidBarError 硬失败，绝不静默跳过。K线数量不足时
// 正常返回零交易的结果——"尚无信号"是合法状态，不是错误。
// 相同输入与配置的重复运行产出逐位一致。
func (e *Engine) Run(bars []models.Bar) (*Result, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}

	res := &Result{
		Symbol:      e.symbol,
		Strategy:    e.strat.Name(),
		Trades:      []models.Trade{},
		EquityCurve: make([]float64, 0, len(bars)),
	}
	if len(bars) == 0 {
		return res, nil
	}
	res.StartTime = bars[0].Timestamp
	res.EndTime = bars[len(bars)-1].Timestamp
	res.BarCount = len(bars)

	var pos *position
	var realized float64

	for i, bar := range bars {
		// 步骤1: 持仓中先检查出场。止损与止盈同K线内都可触及时，
		// 保守起见按止损结算。
		if pos != nil {
			if price, reason, hit := exitCheck(pos, bar); hit {
				realized += e.closePosition(res, pos, i, bar.Timestamp, price, reason)
				pos = nil
			}
		}

		// 策略每根K线都要推进，无论是否持仓
		sig := e.strat.OnBar(bar, i)

		// 步骤2: 空仓时才消费信号
		if pos == nil && sig != nil {
			pos = &position{
				direction:  sig.Direction,
				entryIndex: i,
				entryTime:  bar.Timestamp,
				entryPrice: sig.EntryPrice,
				stopLoss:   sig.StopLoss,
				takeProfit: sig.TakeProfit,
				zoneID:     sig.ZoneID,
			}
		}

		res.EquityCurve = append(res.EquityCurve, realized+unrealized(pos, bar.Close))
	}

	// 数据走完后强制平掉残余仓位
	if pos != nil {
		last := bars[len(bars)-1]
		realized += e.closePosition(res, pos, len(bars)-1, last.Timestamp, last.Close, models.ExitEndOfData)
		res.EquityCurve[len(res.EquityCurve)-1] = realized
	}

	res.Summary = summarize(res.Trades, res.EquityCurve)

	if sr, ok := e.strat.(structureReporter); ok {
		snap := sr.Trend()
		res.FinalTrend = &snap
		res.Zones = sr.Zones()
	}

	return res, nil
}

// exitCheck 判定当前K线是否触发持仓出场，返回成交价与原因。
func exitCheck(pos *position, bar models.Bar) (float64, models.ExitReason, bool) {
	if pos.direction == models.DirectionLong {
		if bar.Low <= pos.stopLoss {
			return pos.stopLoss, models.ExitStop, true
		}
		if bar.High >= pos.takeProfit {
			return pos.takeProfit, models.ExitTarget, true
		}
		return 0, "", false
	}
	// 空头镜像
	if bar.High >= pos.stopLoss {
		return pos.stopLoss, models.ExitStop, true
	}
	if bar.Low <= pos.takeProfit {
		return pos.takeProfit, models.ExitTarget, true
	}
	return 0, "", false
}

// closePosition 结算并记录一笔交易，返回已实现盈亏。
func (e *Engine) closePosition(res *Result, pos *position, exitIndex int, exitTime time.Time, exitPrice float64, reason models.ExitReason) float64 {
	pnl := exitPrice - pos.entryPrice
	if pos.direction == models.DirectionShort {
		pnl = -pnl
	}
	res.Trades = append(res.Trades, models.Trade{
		Direction:  pos.direction,
		EntryIndex: pos.entryIndex,
		EntryTime:  pos.entryTime,
		EntryPrice: pos.entryPrice,
		StopLoss:   pos.stopLoss,
		TakeProfit: pos.takeProfit,
		ExitIndex:  exitIndex,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		ZoneID:     pos.zoneID,
		PnL:        pnl,
	})
	return pnl
}

func unrealized(pos *position, close float64) float64 {
	if pos == nil {
		return 0
	}
	if pos.direction == models.DirectionLong {
		return close - pos.entryPrice
	}
	return pos.entryPrice - close
}

// validateBars 在重放开始前检查采集方契约。
func validateBars(bars []models.Bar) error {
	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return &models.InvalidBarError{Index: i, Reason: "价格必须为正数"}
		}
		if b.Volume < 0 {
			return &models.InvalidBarError{Index: i, Reason: "成交量不能为负数"}
		}
		if b.High < b.Low {
			return &models.InvalidBarError{Index: i, Reason: "最高价低于最低价"}
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return &models.InvalidBarError{Index: i, Reason: "时间戳未严格递增"}
		}
	}
	return nil
}
