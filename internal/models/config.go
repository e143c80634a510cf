package models

// Config 结构体定义了回测与分析流水线的所有配置参数
type Config struct {
	Symbol string `json:"symbol"` // 交易对，如 "BTCUSDT"

	// 结构识别参数
	SwingRadius        int `json:"swing_radius"`         // 摆动确认半径：左右各需多少根K线（默认 2）
	TrendLookbackSwing int `json:"trend_lookback_swing"` // 每类摆动参与趋势判定的数量（默认 2）

	// 区域参数
	RangeWindow      int     `json:"range_window"`      // 波动代理的滑动窗口长度（默认 14）
	BufferMultiplier float64 `json:"buffer_multiplier"` // 区域缓冲 = 倍数 × 平均波幅（默认 1.0）
	MaxZoneHistory   int     `json:"max_zone_history"`  // 区域历史的容量上限（默认 64）

	// 信号与风控参数
	RiskRewardRatio  float64  `json:"risk_reward_ratio"`  // 止盈距离 / 止损距离（默认 2.0）
	StopLossMargin   float64  `json:"stop_loss_margin"`   // 止损越过区域边界的安全余量，按缓冲宽度的比例计（默认 0.1）
	AllowedPatterns  []string `json:"allowed_patterns"`   // 允许触发入场的形态，空则默认两种吞没形态
	Strategy         string   `json:"strategy"`           // "price_action" 或 "ma_cross"
	FastWindow       int      `json:"fast_window"`        // ma_cross 策略的快线窗口（默认 9）
	SlowWindow       int      `json:"slow_window"`        // ma_cross 策略的慢线窗口（默认 21）

	// 数据与输出
	DBPath     string `json:"db_path"`     // 回测结果数据库路径，空则不落库
	DataDir    string `json:"data_dir"`    // K线CSV缓存目录
	BinanceAPI string `json:"binance_api"` // 下载数据用的REST地址，空用官方默认

	// 实时观察模式
	WSBaseURL                string `json:"ws_base_url"`                 // 行情WebSocket基础地址
	WatchInterval            string `json:"watch_interval"`              // 观察模式K线周期，如 "1m"
	WebSocketPingIntervalSec int    `json:"websocket_ping_interval_sec"` // WebSocket Ping消息发送间隔(秒)

	LogConfig LogConfig `json:"log"` // 日志配置
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level      string `json:"level"`       // 日志级别, e.g., "debug", "info", "warn", "error"
	Output     string `json:"output"`      // 输出模式: "console", "file", "both"
	File       string `json:"file"`        // 日志文件路径
	MaxSize    int    `json:"max_size"`    // 单个日志文件的最大大小 (MB)
	MaxBackups int    `json:"max_backups"` // 保留的旧日志文件最大数量
	MaxAge     int    `json:"max_age"`     // 旧日志文件的最大保留天数
	Compress   bool   `json:"compress"`    // 是否压缩旧日志文件
}

// ApplyDefaults 为未设置的参数填入文档化的默认值
func (c *Config) ApplyDefaults() {
	if c.SwingRadius == 0 {
		c.SwingRadius = 2
	}
	if c.TrendLookbackSwing == 0 {
		c.TrendLookbackSwing = 2
	}
	if c.RangeWindow == 0 {
		c.RangeWindow = 14
	}
	if c.BufferMultiplier == 0 {
		c.BufferMultiplier = 1.0
	}
	if c.MaxZoneHistory == 0 {
		c.MaxZoneHistory = 64
	}
	if c.RiskRewardRatio == 0 {
		c.RiskRewardRatio = 2.0
	}
	if c.StopLossMargin == 0 {
		c.StopLossMargin = 0.1
	}
	if len(c.AllowedPatterns) == 0 {
		c.AllowedPatterns = []string{
			string(PatternBullishEngulfing),
			string(PatternBearishEngulfing),
		}
	}
	if c.Strategy == "" {
		c.Strategy = "price_action"
	}
	if c.FastWindow == 0 {
		c.FastWindow = 9
	}
	if c.SlowWindow == 0 {
		c.SlowWindow = 21
	}
	if c.WatchInterval == "" {
		c.WatchInterval = "1m"
	}
	if c.WebSocketPingIntervalSec == 0 {
		c.WebSocketPingIntervalSec = 30
	}
}

// Validate 在处理任何K线之前对参数做快速失败检查
func (c *Config) Validate() error {
	if c.SwingRadius < 1 {
		return &ConfigError{Field: "swing_radius", Reason: "必须 >= 1"}
	}
	if c.TrendLookbackSwing < 2 {
		return &ConfigError{Field: "trend_lookback_swing", Reason: "必须 >= 2，否则无法比较摆动走向"}
	}
	if c.RangeWindow < 1 {
		return &ConfigError{Field: "range_window", Reason: "必须 >= 1"}
	}
	if c.BufferMultiplier <= 0 {
		return &ConfigError{Field: "buffer_multiplier", Reason: "必须为正数"}
	}
	if c.MaxZoneHistory < 2 {
		return &ConfigError{Field: "max_zone_history", Reason: "必须 >= 2，需同时容纳供给与需求区"}
	}
	if c.RiskRewardRatio <= 0 {
		return &ConfigError{Field: "risk_reward_ratio", Reason: "必须为正数"}
	}
	if c.StopLossMargin < 0 {
		return &ConfigError{Field: "stop_loss_margin", Reason: "不能为负数"}
	}
	for _, p := range c.AllowedPatterns {
		switch PatternKind(p) {
		case PatternBullishEngulfing, PatternBearishEngulfing, PatternHammer, PatternShootingStar:
		default:
			return &ConfigError{Field: "allowed_patterns", Reason: "未知形态: " + p}
		}
	}
	switch c.Strategy {
	case "price_action", "ma_cross":
	default:
		return &ConfigError{Field: "strategy", Reason: "未知策略: " + c.Strategy}
	}
	if c.FastWindow < 1 {
		return &ConfigError{Field: "fast_window", Reason: "必须 >= 1"}
	}
	if c.SlowWindow < 2 {
		return &ConfigError{Field: "slow_window", Reason: "必须 >= 2"}
	}
	if c.Strategy == "ma_cross" && c.FastWindow >= c.SlowWindow {
		return &ConfigError{Field: "fast_window", Reason: "快线窗口必须小于慢线窗口"}
	}
	return nil
}
