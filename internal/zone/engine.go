package zone

import (
	"price-action-bot-go/internal/models"
)

// Engine 维护供需区域的完整生命周期。
//
// 区域存放在一个容量封顶、ID单调递增的arena中，状态迁移显式可查：
// active → expired（被同类新区域取代）或 active → mitigated（价格反向
// 收盘穿越远端边界）。每类区域同一时刻至多一个active，离开active后
// 永不复活。区域宽度 = 锚定价 ± bufferMultiplier × 近期平均波幅，
// 平均波幅取最近 rangeWindow 根K线的 (high-low) 均值——刻意不使用
// 任何命名指标。
type Engine struct {
	bufferMult  float64
	rangeWindow int
	maxHistory  int

	ranges []float64 // 波动代理的滑动窗口
	zones  []models.Zone
	nextID int64

	activeDemand int // arena下标，-1 表示无
	activeSupply int
}

// NewEngine 创建一个区域引擎。参数已在配置层校验过合法性。
func NewEngine(bufferMult float64, rangeWindow, maxHistory int) *Engine {
	return &Engine{
		bufferMult:   bufferMult,
		rangeWindow:  rangeWindow,
		maxHistory:   maxHistory,
		ranges:       make([]float64, 0, rangeWindow),
		zones:        make([]models.Zone, 0, maxHistory),
		activeDemand: -1,
		activeSupply: -1,
	}
}

// ObserveRange 把当前K线的波幅纳入波动代理窗口。
// 必须在同一根K线的 ObserveSwing / CheckMitigation 之前调用。
func (e *Engine) ObserveRange(bar models.Bar) {
	e.ranges = append(e.ranges, bar.Range())
	if len(e.ranges) > e.rangeWindow {
		e.ranges = e.ranges[len(e.ranges)-e.rangeWindow:]
	}
}

// buffer 返回当前的区域缓冲宽度。窗口为空时返回0，
// 此时不应创建区域（调用序列保证窗口先于摆动被填充）。
func (e *Engine) buffer() float64 {
	if len(e.ranges) == 0 {
		return 0
	}
	var sum float64
	for _, r := range e.ranges {
		sum += r
	}
	return e.bufferMult * sum / float64(len(e.ranges))
}

// ObserveSwing 根据新确认的摆动点与当前趋势状态更新区域。
// 上升趋势中的低点摆动催生需求区，下降趋势中的高点摆动催生供给区；
// 震荡状态保留既有区域但不创建新区域。同类旧active区域先转expired。
func (e *Engine) ObserveSwing(sw models.Swing, state models.TrendState, barIndex int) {
	switch {
	case state == models.TrendUp && sw.Kind == models.SwingLow:
		e.retire(&e.activeDemand)
		e.create(models.ZoneDemand, sw.Price, barIndex)
	case state == models.TrendDown && sw.Kind == models.SwingHigh:
		e.retire(&e.activeSupply)
		e.create(models.ZoneSupply, sw.Price, barIndex)
	}
}

// CheckMitigation 用当前K线的收盘价检查active区域是否被废止。
// 需求区：收盘跌破下边界即失效；供给区：收盘突破上边界即失效。
func (e *Engine) CheckMitigation(bar models.Bar) {
	if e.activeDemand >= 0 && bar.Close < e.zones[e.activeDemand].LowerBound {
		e.zones[e.activeDemand].Status = models.ZoneMitigated
		e.activeDemand = -1
	}
	if e.activeSupply >= 0 && bar.Close > e.zones[e.activeSupply].UpperBound {
		e.zones[e.activeSupply].Status = models.ZoneMitigated
		e.activeSupply = -1
	}
}

// ActiveDemand 返回当前active需求区的副本。
func (e *Engine) ActiveDemand() (models.Zone, bool) {
	if e.activeDemand < 0 {
		return models.Zone{}, false
	}
	return e.zones[e.activeDemand], true
}

// ActiveSupply 返回当前active供给区的副本。
func (e *Engine) ActiveSupply() (models.Zone, bool) {
	if e.activeSupply < 0 {
		return models.Zone{}, false
	}
	return e.zones[e.activeSupply], true
}

// Zones 返回arena的只读快照（含已退役区域），供绘图/导出方使用。
func (e *Engine) Zones() []models.Zone {
	out := make([]models.Zone, len(e.zones))
	copy(out, e.zones)
	return out
}

func (e *Engine) retire(active *int) {
	if *active >= 0 {
		e.zones[*active].Status = models.ZoneExpired
		*active = -1
	}
}

func (e *Engine) create(kind models.ZoneKind, anchor float64, barIndex int) {
	buf := e.buffer()
	if buf <= 0 {
		// 波动窗口尚未填充，没有合理的宽度可用
		return
	}

	e.nextID++
	z := models.Zone{
		ID:             e.nextID,
		Kind:           kind,
		AnchorPrice:    anchor,
		LowerBound:     anchor - buf,
		UpperBound:     anchor + buf,
		CreatedAtIndex: barIndex,
		Status:         models.ZoneActive,
	}

	e.zones = append(e.zones, z)
	idx := len(e.zones) - 1
	if kind == models.ZoneDemand {
		e.activeDemand = idx
	} else {
		e.activeSupply = idx
	}
	e.compact()
}

// compact 在arena超出容量时从头部剔除已退役的区域，
// 并同步修正active下标。active区域永远不会被剔除。
func (e *Engine) compact() {
	for len(e.zones) > e.maxHistory {
		if e.activeDemand == 0 || e.activeSupply == 0 {
			// 头部是active区域，无法再压缩
			return
		}
		e.zones = e.zones[1:]
		if e.activeDemand > 0 {
			e.activeDemand--
		}
		if e.activeSupply > 0 {
			e.activeSupply--
		}
	}
}
