package models

import (
	"errors"
	"fmt"
)

// ErrInsufficientData 表示K线数量不足以支撑摆动/趋势计算。
// 调用方应就地降级为 range/无信号状态，而不是使整个运行失败。
var ErrInsufficientData = errors.New("数据不足")

// InvalidBarError 表示输入K线违反了数据采集方的契约
// （时间戳非单调递增、价格非正等）。该错误是硬失败：
// 必须中止运行而不是静默跳过，否则会污染区域与趋势状态。
type InvalidBarError struct {
	Index  int    // 触发问题的K线下标
	Reason string
}

func (e *InvalidBarError) Error() string {
	return fmt.Sprintf("第 %d 根K线无效: %s", e.Index, e.Reason)
}

// ConfigError 表示配置参数非法，在构造阶段即失败。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置项 %s 无效: %s", e.Field, e.Reason)
}
