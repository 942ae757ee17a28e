package log

import (
	"os"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05.000"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

// SetLevel 设置全局日志级别，level取值 debug/info/warn/error
func SetLevel(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		logger.Warn().Msgf("unknown log level %q", level)
		return
	}
	logger = logger.Level(l)
}

func Debugf(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}
