package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config 定義 Log 輸出設定
type Config struct {
	Level  string `yaml:"level"`  // Log 等級: "debug", "info", "warn", "error"
	Format string `yaml:"format"` // 輸出格式: "json", "console"
}

// New 建立 zap Logger
//
// 參數:
//
//	cfg: Config - Log 設定 (空字串使用預設值 info/json)
//	out: zapcore.WriteSyncer - 輸出目的地 (CLI 使用 stderr，stdout 保留給帳戶快照)
//
// 回傳值:
//
//	*zap.Logger: Logger 實例
//	error: 設定值不合法時回傳錯誤
func New(cfg Config, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", FormatJSON:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return zap.New(zapcore.NewCore(encoder, out, level)), nil
}
