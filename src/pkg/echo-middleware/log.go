package echomw

import (
	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// HealthPath is logged at verbose level only, since probes hit it constantly.
const HealthPath = "/healthz"

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		defer LogRouteAccess(c, tl.Info1, "Route accessed", palette.Green)
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)
		return next(c)
	}
}

// LogRouteAccess logs method, path, query and client IP of the current request.
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == HealthPath {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(
		logLevel, colorizer, "%s: Method='%s', Path='%s', Query='%s', ClientIP='%s'",
		actionName, c.Request().Method, c.Path(), c.QueryString(), c.RealIP(),
	)
}
