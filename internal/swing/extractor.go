package swing

import (
	"price-action-bot-go/internal/models"
)

// Extractor 以流式方式从K线序列中提取已确认的摆动点。
//
// 下标 i 处的K线要成为摆动高点，其最高价必须严格高于窗口
// [i-radius, i) 内所有K线的最高价，且不低于 (i, i+radius] 内任何K线的
// 最高价。前半段的严格不等式实现了"平台期取最早K线"的确定性并列处理；
// 摆动低点完全镜像。尾部不足 radius 根右侧K线的位置无法确认，
// 会推迟到后续K线到达，绝不提前误报。
type Extractor struct {
	radius int
	bars   []models.Bar // 仅保留确认所需的滑动尾窗
	next   int          // 下一个待判定的全局下标
	total  int          // 已接收的K线总数
}

// NewExtractor 创建一个确认半径为 radius 的提取器。
func NewExtractor(radius int) *Extractor {
	if radius < 1 {
		radius = 1
	}
	return &Extractor{
		radius: radius,
		bars:   make([]models.Bar, 0, 2*radius+1),
	}
}

// Push 吸收一根新K线，返回因此被确认的摆动点（可能为空）。
// 每根K线最多确认一个摆动：同时满足高低点条件的退化情形按高点处理。
func (e *Extractor) Push(bar models.Bar) []models.Swing {
	e.bars = append(e.bars, bar)
	e.total++

	var confirmed []models.Swing
	// 只要待判定下标拥有完整的右侧上下文就可以推进
	for e.next+e.radius < e.total {
		if e.next >= e.radius {
			if sw, ok := e.evaluate(e.next); ok {
				confirmed = append(confirmed, sw)
			}
		}
		e.next++
	}

	// 丢弃再也不会被引用的头部K线
	if keep := 2*e.radius + 1; len(e.bars) > keep {
		e.bars = e.bars[len(e.bars)-keep:]
	}

	return confirmed
}

// evaluate 判定全局下标 idx 处的K线是否为摆动点。
// 调用前提：idx 两侧各有 radius 根K线可用。
func (e *Extractor) evaluate(idx int) (models.Swing, bool) {
	base := e.total - len(e.bars) // 缓冲区头部对应的全局下标
	c := e.bars[idx-base]

	isHigh, isLow := true, true
	for j := idx - e.radius; j <= idx+e.radius; j++ {
		if j == idx {
			continue
		}
		n := e.bars[j-base]
		if j < idx {
			// 左侧要求严格，保证平台期只有最早的K线胜出
			if n.High >= c.High {
				isHigh = false
			}
			if n.Low <= c.Low {
				isLow = false
			}
		} else {
			if n.High > c.High {
				isHigh = false
			}
			if n.Low < c.Low {
				isLow = false
			}
		}
		if !isHigh && !isLow {
			return models.Swing{}, false
		}
	}

	if isHigh {
		return models.Swing{Index: idx, Price: c.High, Kind: models.SwingHigh}, true
	}
	if isLow {
		return models.Swing{Index: idx, Price: c.Low, Kind: models.SwingLow}, true
	}
	return models.Swing{}, false
}

// Pending 返回因右侧上下文不足而尚未判定的K线数量。
func (e *Extractor) Pending() int {
	return e.total - e.next
}
