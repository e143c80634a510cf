package datafeed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"price-action-bot-go/internal/models"
)

// LoadCSV 读取下载器产出格式的K线CSV文件：
// open_time(毫秒), open, high, low, close, volume, ...（多余列忽略）。
// 首行若为表头则自动跳过。返回的序列保证时间戳严格递增、价格为正、最高价不低于最低价，
// 违反契约的行会以 *models.InvalidBarError 硬失败并指明行号。
func LoadCSV(path string) ([]models.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开历史数据文件: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // 允许下载器附带的额外列
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("无法读取CSV记录: %w", err)
	}

	// 跳过表头（首列无法解析为整数即视为表头）
	if len(records) > 0 {
		if _, err := strconv.ParseInt(records[0][0], 10, 64); err != nil {
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("历史数据文件为空: %w", models.ErrInsufficientData)
	}

	bars := make([]models.Bar, 0, len(records))
	for i, record := range records {
		if len(record) < 6 {
			return nil, &models.InvalidBarError{Index: i, Reason: "列数不足6列"}
		}
		bar, err := parseRecord(record)
		if err != nil {
			return nil, &models.InvalidBarError{Index: i, Reason: err.Error()}
		}
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return nil, &models.InvalidBarError{Index: i, Reason: "价格必须为正数"}
		}
		if bar.Volume < 0 {
			return nil, &models.InvalidBarError{Index: i, Reason: "成交量不能为负数"}
		}
		if bar.High < bar.Low {
			return nil, &models.InvalidBarError{Index: i, Reason: "最高价低于最低价"}
		}
		if len(bars) > 0 && !bar.Timestamp.After(bars[len(bars)-1].Timestamp) {
			return nil, &models.InvalidBarError{Index: i, Reason: "时间戳未严格递增"}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseRecord(record []string) (models.Bar, error) {
	ms, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("时间戳解析失败: %v", err)
	}
	vals := make([]float64, 5)
	for j, name := range []string{"open", "high", "low", "close", "volume"} {
		v, err := strconv.ParseFloat(record[j+1], 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("%s 解析失败: %v", name, err)
		}
		vals[j] = v
	}
	return models.Bar{
		Timestamp: time.UnixMilli(ms),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
