package models

import (
	"time"
)

// Bar 代表一根不可变的OHLCV K线。时间戳必须严格递增且唯一。
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// IsBullish 判断该K线是否为阳线（收盘价高于开盘价）
func (b Bar) IsBullish() bool { return b.Close > b.Open }

// IsBearish 判断该K线是否为阴线（收盘价低于开盘价）
func (b Bar) IsBearish() bool { return b.Close < b.Open }

// Range 返回该K线的全幅波动 (high - low)
func (b Bar) Range() float64 { return b.High - b.Low }

// SwingKind 区分摆动高点和摆动低点
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// Swing 代表一个已确认的结构摆动点（局部极值）。
// Index 是该极值所在K线在整个序列中的下标。
type Swing struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

// TrendState 是由摆动序列推导出的市场结构状态
type TrendState string

const (
	TrendUp    TrendState = "uptrend"
	TrendDown  TrendState = "downtrend"
	TrendRange TrendState = "range" // 包括摆动数量不足的"未知"情形
)

// TrendSnapshot 携带当前趋势判定及其证据摆动子序列，便于透明回查。
type TrendSnapshot struct {
	State       TrendState `json:"state"`
	RecentHighs []Swing    `json:"recent_highs"`
	RecentLows  []Swing    `json:"recent_lows"`
}

// ZoneKind 区分供给区和需求区
type ZoneKind string

const (
	ZoneSupply ZoneKind = "supply"
	ZoneDemand ZoneKind = "demand"
)

// ZoneStatus 是区域生命周期的显式状态。一旦离开 active 便不可复活。
type ZoneStatus string

const (
	ZoneActive    ZoneStatus = "active"
	ZoneMitigated ZoneStatus = "mitigated" // 价格反向收盘穿越，区域失效
	ZoneExpired   ZoneStatus = "expired"   // 被同类新区域取代
)

// Zone 代表一个锚定在摆动点上的供需价格区间。
// 边界由锚定价 ± 波动缓冲得出，缓冲为近期K线波幅均值的可配置倍数。
type Zone struct {
	ID             int64      `json:"id"`
	Kind           ZoneKind   `json:"kind"`
	AnchorPrice    float64    `json:"anchor_price"`
	LowerBound     float64    `json:"lower_bound"`
	UpperBound     float64    `json:"upper_bound"`
	CreatedAtIndex int        `json:"created_at_index"`
	Status         ZoneStatus `json:"status"`
}

// Contains 判断价格是否落在区域边界内（含边界）
func (z Zone) Contains(price float64) bool {
	return price >= z.LowerBound && price <= z.UpperBound
}

// PatternKind 标识反转K线形态
type PatternKind string

const (
	PatternBullishEngulfing PatternKind = "bullish_engulfing"
	PatternBearishEngulfing PatternKind = "bearish_engulfing"
	PatternHammer           PatternKind = "hammer"
	PatternShootingStar     PatternKind = "shooting_star"
)

// Bullish 报告该形态是否为看涨反转形态
func (p PatternKind) Bullish() bool {
	return p == PatternBullishEngulfing || p == PatternHammer
}

// Bearish 报告该形态是否为看跌反转形态
func (p PatternKind) Bearish() bool {
	return p == PatternBearishEngulfing || p == PatternShootingStar
}

// Pattern 是在某根K线上完成的反转形态。无持久状态，逐K线重新计算。
type Pattern struct {
	Kind  PatternKind `json:"kind"`
	Index int         `json:"index"`
}

// Direction 是交易方向
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Signal 是策略在某根K线上产生的入场决定。
// 仅在生成它的那根K线内被回测引擎消费，不做持久化。
type Signal struct {
	Index      int       `json:"index"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	ZoneID     int64     `json:"zone_id"`
}

// ExitReason 记录仓位被关闭的原因
type ExitReason string

const (
	ExitStop      ExitReason = "stop"
	ExitTarget    ExitReason = "target"
	ExitEndOfData ExitReason = "end_of_data"
)

// Trade 是一笔已完成交易的完整记录，由回测引擎独占维护。
type Trade struct {
	Direction  Direction  `json:"direction"`
	EntryIndex int        `json:"entry_index"`
	EntryTime  time.Time  `json:"entry_time"`
	EntryPrice float64    `json:"entry_price"`
	StopLoss   float64    `json:"stop_loss"`
	TakeProfit float64    `json:"take_profit"`
	ExitIndex  int        `json:"exit_index"`
	ExitTime   time.Time  `json:"exit_time"`
	ExitPrice  float64    `json:"exit_price"`
	ExitReason ExitReason `json:"exit_reason"`
	ZoneID     int64      `json:"zone_id"`
	PnL        float64    `json:"pnl"`
}

// Summary 是一次回测的汇总指标
type Summary struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // 百分比
	CumulativePnL float64 `json:"cumulative_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"` // 权益曲线最大峰谷回撤，与盈亏同单位
	ProfitFactor  float64 `json:"profit_factor"`
}
