package downloader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adshao/go-binance/v2"

	"price-action-bot-go/internal/logger"
)

// KlineDownloader 用于从币安下载历史K线数据，供回测与分析模式使用。
// 核心流水线只消费CSV，下载器是独立于核心的数据采集协作方。
type KlineDownloader struct {
	client   *binance.Client
	interval string
}

// NewKlineDownloader 创建一个新的下载器实例。apiURL 为空时使用官方地址。
func NewKlineDownloader(apiURL, interval string) *KlineDownloader {
	client := binance.NewClient("", "") // 公共接口不需要API Key
	if apiURL != "" {
		client.BaseURL = apiURL
	}
	if interval == "" {
		interval = "1m"
	}
	return &KlineDownloader{client: client, interval: interval}
}

// DownloadKlines 下载指定交易对和时间范围内的K线数据并保存到CSV文件。
// 如果文件已存在，则跳过下载直接使用缓存。
func (d *KlineDownloader) DownloadKlines(symbol, filePath string, startTime, endTime time.Time) error {
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		logger.S().Infof("从缓存加载数据: %s", filePath)
		return nil
	}

	// 在创建文件前确保目录存在
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建目录 %s: %w", dir, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("无法创建文件 %s: %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"open_time", "open", "high", "low", "close", "volume", "close_time"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for t := startTime; t.Before(endTime); {
		klines, err := d.client.NewKlinesService().
			Symbol(symbol).
			Interval(d.interval).
			StartTime(t.UnixMilli()).
			EndTime(endTime.UnixMilli()).
			Limit(1000). // 币安单次请求最多1000条
			Do(context.Background())
		if err != nil {
			return fmt.Errorf("下载K线数据失败: %w", err)
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			record := []string{
				fmt.Sprintf("%d", k.OpenTime),
				k.Open,
				k.High,
				k.Low,
				k.Close,
				k.Volume,
				fmt.Sprintf("%d", k.CloseTime),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("写入CSV记录失败: %w", err)
			}
		}

		t = time.UnixMilli(klines[len(klines)-1].CloseTime + 1)
		logger.S().Infof("已下载数据至 %s", t.Format("2006-01-02 15:04:05"))
		time.Sleep(200 * time.Millisecond) // 避免过于频繁的请求
	}

	logger.S().Infof("成功下载K线数据到 %s", filePath)
	return nil
}
