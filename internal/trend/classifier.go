package trend

import (
	"price-action-bot-go/internal/models"
)

// Classifier 根据最近的摆动序列判定市场结构。
//
// 取每类摆动的最后 lookback 个：高点与低点同时严格递增判定为上升趋势，
// 同时严格递减判定为下降趋势，其余一切情况（数量不足、方向混杂、
// 价格相等）归为震荡。不使用任何平滑或指标衍生序列。
type Classifier struct {
	lookback int
	highs    []models.Swing
	lows     []models.Swing
}

// NewClassifier 创建一个每类摆动回看 lookback 个的分类器。
func NewClassifier(lookback int) *Classifier {
	if lookback < 2 {
		lookback = 2
	}
	return &Classifier{lookback: lookback}
}

// Observe 记录一个新确认的摆动点。
func (c *Classifier) Observe(sw models.Swing) {
	switch sw.Kind {
	case models.SwingHigh:
		c.highs = appendBounded(c.highs, sw, c.lookback)
	case models.SwingLow:
		c.lows = appendBounded(c.lows, sw, c.lookback)
	}
}

// Snapshot 返回当前趋势判定及其证据摆动子序列。
func (c *Classifier) Snapshot() models.TrendSnapshot {
	snap := models.TrendSnapshot{
		State:       models.TrendRange,
		RecentHighs: append([]models.Swing(nil), c.highs...),
		RecentLows:  append([]models.Swing(nil), c.lows...),
	}

	if len(c.highs) < c.lookback || len(c.lows) < c.lookback {
		// 摆动证据不足，按震荡处理而不是报错
		return snap
	}

	switch {
	case strictlyIncreasing(c.highs) && strictlyIncreasing(c.lows):
		snap.State = models.TrendUp
	case strictlyDecreasing(c.highs) && strictlyDecreasing(c.lows):
		snap.State = models.TrendDown
	}
	return snap
}

// State 是只关心趋势标签时的便捷方法。
func (c *Classifier) State() models.TrendState {
	return c.Snapshot().State
}

func appendBounded(s []models.Swing, sw models.Swing, limit int) []models.Swing {
	s = append(s, sw)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func strictlyIncreasing(s []models.Swing) bool {
	for i := 1; i < len(s); i++ {
		if s[i].Price <= s[i-1].Price {
			return false
		}
	}
	return true
}

func strictlyDecreasing(s []models.Swing) bool {
	for i := 1; i < len(s); i++ {
		if s[i].Price >= s[i-1].Price {
			return false
		}
	}
	return true
}
