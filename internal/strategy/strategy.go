package strategy

import (
	"fmt"

	"price-action-bot-go/internal/models"
)

// Strategy 是统一的信号生成契约：逐K线求值，返回至多一个信号。
// 具体策略（价格行为、均线交叉）是可互换的实现；仓位与订单管理
// 完全由回测引擎负责，策略本身不关心当前是否持仓。
type Strategy interface {
	// OnBar 吸收下标为 index 的K线，返回该K线上产生的入场信号（可为nil）。
	OnBar(bar models.Bar, index int) *models.Signal
	// Name 返回策略名，用于日志与报告。
	Name() string
}

// New 根据配置构造策略实例。每次回测运行都必须使用独立实例，
// 组件状态绝不跨运行共享。
func New(cfg *models.Config) (Strategy, error) {
	switch cfg.Strategy {
	case "price_action":
		return NewPriceAction(cfg), nil
	case "ma_cross":
		return NewMACross(cfg), nil
	default:
		return nil, fmt.Errorf("未知策略: %s", cfg.Strategy)
	}
}
