package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"price-action-bot-go/internal/logger"
	"price-action-bot-go/internal/models"
)

const defaultWSBaseURL = "wss://stream.binance.com:9443"

// BarHandler 在每根收盘K线到达时被调用。只有收盘K线会进入流水线，
// 未收盘的中间更新一律丢弃，保证与回测消费同样的序列。
type BarHandler func(bar models.Bar)

// KlineFeed 订阅币安K线推送，是观察模式的数据源。
// 它负责维持连接、心跳与断线重连，把收盘K线交给上层处理。
type KlineFeed struct {
	symbol       string
	interval     string
	baseURL      string
	pingInterval time.Duration

	conn        *websocket.Conn
	stopChannel chan struct{}
}

// NewKlineFeed 创建一个K线订阅器。baseURL 为空时使用官方行情地址。
func NewKlineFeed(cfg *models.Config) *KlineFeed {
	baseURL := cfg.WSBaseURL
	if baseURL == "" {
		baseURL = defaultWSBaseURL
	}
	return &KlineFeed{
		symbol:       cfg.Symbol,
		interval:     cfg.WatchInterval,
		baseURL:      baseURL,
		pingInterval: time.Duration(cfg.WebSocketPingIntervalSec) * time.Second,
		stopChannel:  make(chan struct{}),
	}
}

// Run 阻塞运行，直到 Stop 被调用。连接断开后会自动重连。
func (f *KlineFeed) Run(handler BarHandler) {
	for {
		select {
		case <-f.stopChannel:
			logger.S().Info("K线订阅循环已停止。")
			return
		default:
			if err := f.connect(); err != nil {
				logger.S().Warnf("WebSocket连接失败: %v。5秒后重试...", err)
				time.Sleep(5 * time.Second)
				continue
			}

			logger.S().Infof("WebSocket连接成功: %s@kline_%s", strings.ToLower(f.symbol), f.interval)
			// handleMessages会阻塞直到连接断开
			if err := f.handleMessages(handler); err != nil {
				logger.S().Warnf("WebSocket处理时发生错误: %v", err)
			}
			if f.conn != nil {
				f.conn.Close()
			}
			logger.S().Info("WebSocket连接已断开，准备重连...")
			time.Sleep(5 * time.Second)
		}
	}
}

// Stop 通知订阅循环优雅退出。
func (f *KlineFeed) Stop() {
	close(f.stopChannel)
}

func (f *KlineFeed) connect() error {
	wsURL := fmt.Sprintf("%s/ws/%s@kline_%s", f.baseURL, strings.ToLower(f.symbol), f.interval)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("无法连接到 %s: %v", wsURL, err)
	}
	f.conn = conn
	return nil
}

// klineEvent 对应币安K线推送的负载结构
type klineEvent struct {
	Kline struct {
		StartTime int64  `json:"t"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		IsFinal   bool   `json:"x"` // K线是否已收盘
	} `json:"k"`
}

// handleMessages 为一个已建立的连接处理消息，并实现心跳机制
func (f *KlineFeed) handleMessages(handler BarHandler) error {
	pongWait := f.pingInterval * 2

	f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		f.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingTicker := time.NewTicker(f.pingInterval)
	defer pingTicker.Stop()

	pingStop := make(chan struct{})
	defer close(pingStop)

	go func() {
		for {
			select {
			case <-pingTicker.C:
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					logger.S().Warnf("发送Ping失败: %v", err)
					return
				}
			case <-pingStop:
				return
			case <-f.stopChannel:
				return
			}
		}
	}()

	for {
		select {
		case <-f.stopChannel:
			err := f.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				return fmt.Errorf("发送WebSocket关闭帧失败: %v", err)
			}
			return nil
		default:
			_, message, err := f.conn.ReadMessage()
			if err != nil {
				// 任何读取错误都意味着连接已损坏，返回错误交给Run重连
				return fmt.Errorf("读取消息失败: %v", err)
			}

			var event klineEvent
			if err := json.Unmarshal(message, &event); err != nil {
				logger.S().Warnf("解析K线推送失败: %v", err)
				continue
			}
			if !event.Kline.IsFinal {
				continue // 只消费收盘K线
			}

			bar, err := parseKline(&event)
			if err != nil {
				logger.S().Warnf("转换K线数据失败: %v", err)
				continue
			}
			handler(bar)
		}
	}
}

func parseKline(event *klineEvent) (models.Bar, error) {
	k := &event.Kline
	vals := make([]float64, 5)
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("数值字段解析失败: %v", err)
		}
		vals[i] = v
	}
	return models.Bar{
		Timestamp: time.UnixMilli(k.StartTime),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
