package middlewares

import (
	"github.com/labstack/echo/v4"

	"blocks-api/types/config"
)

const CONFIG_CONTEXT_KEY = "Config"

func ConfigMiddleware(_config config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CONFIG_CONTEXT_KEY, _config)

			return next(c)
		}
	}
}

// ConfigFromContext returns the config stored by ConfigMiddleware.
func ConfigFromContext(c echo.Context) (config.Config, bool) {
	_config, ok := c.Get(CONFIG_CONTEXT_KEY).(config.Config)
	return _config, ok
}
