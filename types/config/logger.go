package config

import (
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

var (
	logger     echo.Logger
	onceLogger sync.Once
)

// ParseLogLevel maps a config level name to a gommon level. Unknown names
// resolve to WARN.
func ParseLogLevel(level string) log.Lvl {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DEBUG
	case "INFO":
		return log.INFO
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	}

	return log.WARN
}

func GetLogger() echo.Logger {
	onceLogger.Do(func() {
		config := GetConfig()
		e := echo.New()
		e.Logger.SetLevel(ParseLogLevel(config.Log.Level))
		e.Logger.SetPrefix("blocks-api")

		logger = e.Logger
	})
	return logger
}
