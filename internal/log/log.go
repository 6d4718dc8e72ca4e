// Package log is the application-wide logging facade, backed by zerolog.
package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// SetLevel sets the global log level from a string (debug, info, warn,
// error); anything unrecognized falls back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetApplication tags every subsequent log line with the application name.
func SetApplication(name string) {
	logger = logger.With().Str("app", name).Logger()
}

// Debug logs msg at debug severity.
func Debug(msg string) { logger.Debug().Msg(msg) }

// Debugln logs the concatenation of args at debug severity.
func Debugln(args ...interface{}) { logger.Debug().Msg(concat(args)) }

// Debugf logs a formatted message at debug severity.
func Debugf(format string, args ...interface{}) { logger.Debug().Msgf(format, args...) }

// Info logs msg at info severity.
func Info(msg string) { logger.Info().Msg(msg) }

// Infoln logs the concatenation of args at info severity.
func Infoln(args ...interface{}) { logger.Info().Msg(concat(args)) }

// Infof logs a formatted message at info severity.
func Infof(format string, args ...interface{}) { logger.Info().Msgf(format, args...) }

// Warnln logs the concatenation of args at warn severity.
func Warnln(args ...interface{}) { logger.Warn().Msg(concat(args)) }

// Warnf logs a formatted message at warn severity.
func Warnf(format string, args ...interface{}) { logger.Warn().Msgf(format, args...) }

// Error logs msg at error severity.
func Error(msg string) { logger.Error().Msg(msg) }

// Errorln logs the concatenation of args at error severity.
func Errorln(args ...interface{}) { logger.Error().Msg(concat(args)) }

// Errorf logs a formatted message at error severity.
func Errorf(format string, args ...interface{}) { logger.Error().Msgf(format, args...) }

func concat(args []interface{}) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(fmt.Sprint(a))
	}
	return b.String()
}
