package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger debug 環境輸出 console 格式, 其餘輸出 json
// extra writer 例如 KafkaLogWriter 會一併收到 json 格式的 log
func NewLogger(env string, moduleName string, extra ...io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if constants.ENV(env) == constants.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{out}
	writers = append(writers, extra...)

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("module", moduleName).
		Logger()
}

// SetGlobal 讓 github.com/rs/zerolog/log 使用同一個 logger
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
}
