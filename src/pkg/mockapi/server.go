// Package mockapi serves a local stand-in for the remote sales API.
package mockapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"

	echomw "sales-report/src/pkg/echo-middleware"
	"sales-report/src/pkg/util"
)

// DefaultMaxDays bounds the range a single request may ask for.
const DefaultMaxDays = 366

type Options struct {
	APIKey            string `json:"-"`
	RequestsPerSecond int    `json:"requests_per_second"`
	Burst             int    `json:"burst"`
	MaxDays           int    `json:"max_days"`
}

type salesHandler struct {
	maxDays int
}

/*
NewServer wires the mock API routes:

	GET /healthz
	GET /sales?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD   (Bearer auth)

Responses are brotli or gzip encoded when the client accepts it.
*/
func NewServer(options Options) *echo.Echo {
	if options.MaxDays <= 0 {
		options.MaxDays = DefaultMaxDays
	}

	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	limiter := echomw.NewRateLimiter(options.RequestsPerSecond, options.Burst)
	server.Use(echomw.RouteAccessLoggerMiddleware, limiter.Middleware)

	handler := salesHandler{maxDays: options.MaxDays}
	server.GET(echomw.HealthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	server.GET("/sales", handler.listSales, echomw.RequireBearerToken(options.APIKey))

	return server
}

func (h salesHandler) listSales(c echo.Context) error {
	start, err := util.ParseDay(c.QueryParam("start_date"))
	if err != nil {
		return badRequest(c, fmt.Sprintf("start_date: %s", err))
	}
	end, err := util.ParseDay(c.QueryParam("end_date"))
	if err != nil {
		return badRequest(c, fmt.Sprintf("end_date: %s", err))
	}
	if end.Before(start) {
		return badRequest(c, "end_date is before start_date")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > h.maxDays {
		return badRequest(c, fmt.Sprintf("range of %d days exceeds the limit of %d", days, h.maxDays))
	}

	body, err := json.Marshal(GenerateOrders(start, end))
	if err != nil {
		return err
	}

	return writeEncoded(c, body)
}

// writeEncoded compresses body with the best encoding the client accepts.
func writeEncoded(c echo.Context, body []byte) error {
	acceptEncoding := c.Request().Header.Get(echo.HeaderAcceptEncoding)
	c.Response().Header().Set(echo.HeaderVary, echo.HeaderAcceptEncoding)

	var buffer bytes.Buffer
	switch {
	case strings.Contains(acceptEncoding, "br"):
		writer := brotli.NewWriter(&buffer)
		if _, err := writer.Write(body); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentEncoding, "br")
	case strings.Contains(acceptEncoding, "gzip"):
		writer := gzip.NewWriter(&buffer)
		if _, err := writer.Write(body); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentEncoding, "gzip")
	default:
		return c.JSONBlob(http.StatusOK, body)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buffer.Bytes())
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}
