package strategy

import (
	"price-action-bot-go/internal/models"
)

// MACross 是验证 Strategy 契约可互换性的简单均线交叉策略：
// 快线上穿慢线做多，下穿做空。止损距离取近期平均波幅，
// 止盈沿用与价格行为策略相同的固定盈亏比。
type MACross struct {
	fastWindow int
	slowWindow int
	rr         float64

	closes []float64
	ranges []float64

	prevFast float64
	prevSlow float64
	primed   bool
}

// NewMACross 用已校验的配置构造均线交叉策略。
func NewMACross(cfg *models.Config) *MACross {
	return &MACross{
		fastWindow: cfg.FastWindow,
		slowWindow: cfg.SlowWindow,
		rr:         cfg.RiskRewardRatio,
	}
}

// Name 实现 Strategy 接口。
func (s *MACross) Name() string { return "ma_cross" }

// OnBar 实现 Strategy 接口。慢线窗口填满之前不产生任何信号。
func (s *MACross) OnBar(bar models.Bar, index int) *models.Signal {
	s.closes = appendBounded(s.closes, bar.Close, s.slowWindow)
	s.ranges = appendBounded(s.ranges, bar.Range(), s.slowWindow)

	if len(s.closes) < s.slowWindow {
		return nil
	}

	fast := mean(s.closes[len(s.closes)-s.fastWindow:])
	slow := mean(s.closes)

	defer func() {
		s.prevFast, s.prevSlow = fast, slow
		s.primed = true
	}()

	if !s.primed {
		return nil
	}

	var dir models.Direction
	switch {
	case s.prevFast <= s.prevSlow && fast > slow:
		dir = models.DirectionLong
	case s.prevFast >= s.prevSlow && fast < slow:
		dir = models.DirectionShort
	default:
		return nil
	}

	entry := bar.Close
	risk := mean(s.ranges)
	if risk <= 0 {
		return nil
	}

	var stop, target float64
	if dir == models.DirectionLong {
		stop = entry - risk
		target = entry + s.rr*risk
	} else {
		stop = entry + risk
		target = entry - s.rr*risk
	}

	return &models.Signal{
		Index:      index,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
	}
}

func appendBounded(s []float64, v float64, limit int) []float64 {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}
