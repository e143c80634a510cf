package pattern

import (
	"math"

	"price-action-bot-go/internal/models"
)

// 单K线形态的判定阈值：实体/影线占全幅波动的比例
const (
	smallBodyMax    = 0.33 // 锤子线/射击之星要求的小实体上限
	longWickMin     = 0.5  // 主导影线至少占全幅波动的一半
	shortWickMax    = 0.1  // 另一侧影线的上限
	wickToBodyRatio = 2.0  // 主导影线至少为实体的2倍
)

// Detector 是K线形态的纯函数检测器：只看最近两根K线的开收关系
// 与实体包含情况，不保留任何状态，每根K线重新计算。
type Detector struct {
	allowed map[models.PatternKind]bool
}

// NewDetector 创建一个只报告 allowed 中形态的检测器。
func NewDetector(allowed []string) *Detector {
	m := make(map[models.PatternKind]bool, len(allowed))
	for _, a := range allowed {
		m[models.PatternKind(a)] = true
	}
	return &Detector{allowed: m}
}

// Detect 对 (prev, cur) 两根K线求值，返回在 cur 上完成的形态。
// index 是 cur 在整个序列中的下标。双K形态优先于单K形态。
func (d *Detector) Detect(prev, cur models.Bar, index int) (models.Pattern, bool) {
	checks := []struct {
		kind models.PatternKind
		hit  func() bool
	}{
		{models.PatternBullishEngulfing, func() bool { return isBullishEngulfing(prev, cur) }},
		{models.PatternBearishEngulfing, func() bool { return isBearishEngulfing(prev, cur) }},
		{models.PatternHammer, func() bool { return isHammer(cur) }},
		{models.PatternShootingStar, func() bool { return isShootingStar(cur) }},
	}
	for _, c := range checks {
		if d.allowed[c.kind] && c.hit() {
			return models.Pattern{Kind: c.kind, Index: index}, true
		}
	}
	return models.Pattern{}, false
}

// isBullishEngulfing 看涨吞没：前阴后阳，且当前实体完整包住前一实体
// （当前开盘 <= 前收盘 且 当前收盘 >= 前开盘）。
func isBullishEngulfing(prev, cur models.Bar) bool {
	if !prev.IsBearish() || !cur.IsBullish() {
		return false
	}
	return cur.Open <= prev.Close && cur.Close >= prev.Open
}

// isBearishEngulfing 看跌吞没，方向镜像。
func isBearishEngulfing(prev, cur models.Bar) bool {
	if !prev.IsBullish() || !cur.IsBearish() {
		return false
	}
	return cur.Open >= prev.Close && cur.Close <= prev.Open
}

// isHammer 锤子线：小实体位于K线上部，下影线长（>=2倍实体且>=半幅），
// 上影线几乎没有。
func isHammer(b models.Bar) bool {
	tr := b.Range()
	if tr <= 0 {
		return false
	}
	body := math.Abs(b.Close - b.Open)
	lower := math.Min(b.Open, b.Close) - b.Low
	upper := b.High - math.Max(b.Open, b.Close)

	return body/tr <= smallBodyMax &&
		lower >= wickToBodyRatio*body && lower/tr >= longWickMin &&
		upper/tr <= shortWickMax
}

// isShootingStar 射击之星：锤子线的方向镜像。
func isShootingStar(b models.Bar) bool {
	tr := b.Range()
	if tr <= 0 {
		return false
	}
	body := math.Abs(b.Close - b.Open)
	lower := math.Min(b.Open, b.Close) - b.Low
	upper := b.High - math.Max(b.Open, b.Close)

	return body/tr <= smallBodyMax &&
		upper >= wickToBodyRatio*body && upper/tr >= longWickMin &&
		lower/tr <= shortWickMax
}
