package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"blocks-api/api"
	"blocks-api/types/config"
)

func main() {
	httpAPIPort := flag.Int("http-api-port", 0, "HTTP API port (overrides config)")
	configPath := flag.String("config", "", "Path to the config file (overrides CONFIG_FILE)")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("CONFIG_FILE", *configPath)
	}

	_config := config.GetConfig()
	if *httpAPIPort > 0 {
		_config.SetHTTPAPIPort(*httpAPIPort)
	}
	logger := config.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := api.NewServerFromConfig(ctx, _config)
	if err != nil {
		logger.Fatalf("Failed to initialize server: %v", err)
	}

	server.AddMiddleware(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: uuid.NewString,
		}),
		middleware.Gzip(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{
				"https://localhost",
				"http://localhost:*",
				"http://127.0.0.1:*",
			},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}),
	)

	go func() {
		if err := server.Start(); err != nil {
			logger.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(time.Second * 5); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
}
