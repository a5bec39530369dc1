package logger

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger 全局日志实例，Init 之前丢弃所有输出
var Logger = discard()

func discard() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// Init 初始化 zerolog 日志
// level: 日志级别 ("trace", "debug", "info", "warn", "error")
// file: 日志文件路径，为空时仅输出到控制台
func Init(level string, file string) error {
	logLevel := ParseLevel(level)

	// 终端下使用控制台友好的格式，管道或重定向时输出 JSON
	var console io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	}

	output := console
	if file != "" {
		// 如果指定了文件，同时输出到文件和控制台
		fileWriter, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		output = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
	Logger = &logger
	return nil
}

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 返回全局 logger 实例
// 如果 logger 未初始化，返回输出到 /dev/null 的默认 logger
func Get() *zerolog.Logger {
	return Logger
}

// With 返回附加了一个字段的子 logger
func With(key, value string) zerolog.Logger {
	return Get().With().Str(key, value).Logger()
}

// Attach 给全局 logger 附加一个字段，之后所有日志都会带上它
func Attach(key, value string) {
	logger := With(key, value)
	Logger = &logger
}

// Progress 输出进度信息
func Progress(current, total int, message string) {
	if total > 0 {
		percentage := float64(current) / float64(total) * 100
		Get().Info().
			Int("current", current).
			Int("total", total).
			Float64("percentage", percentage).
			Msg(message)
	} else {
		Get().Info().
			Int("current", current).
			Msg(message)
	}
}
