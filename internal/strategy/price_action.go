package strategy

import (
	"price-action-bot-go/internal/models"
	"price-action-bot-go/internal/pattern"
	"price-action-bot-go/internal/swing"
	"price-action-bot-go/internal/trend"
	"price-action-bot-go/internal/zone"
)

// PriceAction 把摆动提取、趋势分类、区域引擎与形态检测组合成
// 完整的价格行为信号流水线：价格回踩active区域、同K线完成同向
// 反转形态时给出入场信号，止损置于区域远端边界之外。
//
// 所有组件状态都由本实例私有持有，数据严格按时间单向流动，
// 任何阶段都不访问未来K线。
type PriceAction struct {
	extractor  *swing.Extractor
	classifier *trend.Classifier
	zones      *zone.Engine
	patterns   *pattern.Detector

	rr         float64
	stopMargin float64

	prev    models.Bar
	hasPrev bool
}

// NewPriceAction 用已校验的配置构造价格行为策略。
func NewPriceAction(cfg *models.Config) *PriceAction {
	return &PriceAction{
		extractor:  swing.NewExtractor(cfg.SwingRadius),
		classifier: trend.NewClassifier(cfg.TrendLookbackSwing),
		zones:      zone.NewEngine(cfg.BufferMultiplier, cfg.RangeWindow, cfg.MaxZoneHistory),
		patterns:   pattern.NewDetector(cfg.AllowedPatterns),
		rr:         cfg.RiskRewardRatio,
		stopMargin: cfg.StopLossMargin,
	}
}

// Name 实现 Strategy 接口。
func (s *PriceAction) Name() string { return "price_action" }

// OnBar 按固定顺序推进流水线：
// 波动窗口 → 摆动确认 → 趋势更新 → 区域创建 → 区域废止检查 → 入场判定。
// 废止检查先于入场判定，保证同一根K线上被废止的区域不再触发信号。
func (s *PriceAction) OnBar(bar models.Bar, index int) *models.Signal {
	s.zones.ObserveRange(bar)

	for _, sw := range s.extractor.Push(bar) {
		s.classifier.Observe(sw)
		s.zones.ObserveSwing(sw, s.classifier.State(), sw.Index)
	}

	s.zones.CheckMitigation(bar)

	sig := s.evaluateEntry(bar, index)

	s.prev = bar
	s.hasPrev = true
	return sig
}

// evaluateEntry 判定当前K线是否满足入场条件。
// 条件：K线波动范围与active区域相交，且同K线完成匹配方向的反转形态。
func (s *PriceAction) evaluateEntry(bar models.Bar, index int) *models.Signal {
	if !s.hasPrev {
		return nil
	}
	pat, ok := s.patterns.Detect(s.prev, bar, index)
	if !ok {
		return nil
	}

	if z, active := s.zones.ActiveDemand(); active && pat.Kind.Bullish() && intersects(bar, z) {
		return s.buildSignal(models.DirectionLong, bar, index, z)
	}
	if z, active := s.zones.ActiveSupply(); active && pat.Kind.Bearish() && intersects(bar, z) {
		return s.buildSignal(models.DirectionShort, bar, index, z)
	}
	return nil
}

// buildSignal 用固定盈亏比推导止损止盈：止损越过区域远端边界
// 一小段安全余量（按缓冲宽度的比例计），止盈 = 入场价 ± rr × 风险距离。
func (s *PriceAction) buildSignal(dir models.Direction, bar models.Bar, index int, z models.Zone) *models.Signal {
	entry := bar.Close
	halfWidth := (z.UpperBound - z.LowerBound) / 2
	margin := s.stopMargin * halfWidth

	var stop, target float64
	if dir == models.DirectionLong {
		stop = z.LowerBound - margin
		target = entry + s.rr*(entry-stop)
	} else {
		stop = z.UpperBound + margin
		target = entry - s.rr*(stop-entry)
	}

	return &models.Signal{
		Index:      index,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		ZoneID:     z.ID,
	}
}

// Trend 暴露当前趋势快照，供分析/报告方使用。
func (s *PriceAction) Trend() models.TrendSnapshot {
	return s.classifier.Snapshot()
}

// Zones 暴露区域arena快照，供绘图/导出方使用。
func (s *PriceAction) Zones() []models.Zone {
	return s.zones.Zones()
}

// intersects 判断K线的高低范围是否触及区域边界。
func intersects(bar models.Bar, z models.Zone) bool {
	return bar.Low <= z.UpperBound && bar.High >= z.LowerBound
}
