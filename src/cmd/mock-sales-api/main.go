package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
	echomw "sales-report/src/pkg/echo-middleware"
	"sales-report/src/pkg/mockapi"
)

/*
main serves a local sales API that sales-report can fetch from.

It reads API_KEY (the bearer token clients must send) from the environment
or .env, and listens on echo_middleware.address:port from the config file.

Point sales-report at it with API_BASE_URL=http://127.0.0.1:8401
*/
func main() {
	config.LoadDotEnv()
	config.CheckIfEnvVarsPresent(config.EnvAPIKey)

	// common flags
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// program's custom flags
	maxDays := flag.Int("max-days", mockapi.DefaultMaxDays, "Longest period a single request may ask for.")

	// parse and init config
	flag.Parse()
	config.InitializeConfig(*configPath).QuitIf("error")

	apiKey := strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	if apiKey == "" {
		xerr.QuitIfError(&config.ConfigurationError{Settings: []string{config.EnvAPIKey}, Reason: "the mock API needs a bearer token"}, "Unable to start mock sales API")
	}

	server := mockapi.NewServer(mockapi.Options{
		APIKey:            apiKey,
		RequestsPerSecond: echomw.Cfg.MiddlewareRateLimit,
		Burst:             echomw.Cfg.MiddlewareBurst,
		MaxDays:           *maxDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	address := echomw.Cfg.ListenAddress()
	tl.Log(tl.Notice, palette.BlueBold, "%s on '%s'", "Serving mock sales API", address)

	err := server.Start(address)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		xerr.QuitIfError(err, "Mock sales API stopped")
	}
	tl.Log(tl.Notice, palette.Green, "Mock sales API %s", "stopped")
}
