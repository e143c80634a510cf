package config

import (
	"encoding/json"
	"os"

	"price-action-bot-go/internal/models"
)

// LoadConfig 从指定路径加载JSON配置文件并解析到Config结构体中。
// 解析成功后填入默认值并做快速失败校验，保证任何K线被处理之前配置即已合法。
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	config := &models.Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
