package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"blocks-api/api/handlers"
	workerMiddleware "blocks-api/api/middleware"
	"blocks-api/types"
	"blocks-api/types/config"
	"blocks-api/types/interfaces"
)

const (
	BLOCKS_PREFIX   = "api/blocks"
	BLOCKS_BASENAME = "blocks"
)

type Server struct {
	host   string
	port   int
	config config.Config

	echo    *echo.Echo
	mdns    *types.MDNS
	router  *Router
	metrics *workerMiddleware.Metrics
	storage interfaces.BlockStorage
}

// NewServer wires the blocks resource over storage. The server owns storage
// and closes it on Shutdown.
func NewServer(_config config.Config, storage interfaces.BlockStorage) *Server {
	_echo := echo.New()
	_echo.HideBanner = true
	_echo.HidePort = true
	_echo.Logger.SetLevel(config.ParseLogLevel(_config.Log.Level))
	_echo.HTTPErrorHandler = HTTPErrorHandler

	// "/api/blocks" and "/api/blocks/" reach the same route.
	_echo.Pre(middleware.AddTrailingSlash())

	metrics := workerMiddleware.NewMetrics()

	var server = &Server{
		host:    _config.HTTPAPIServer.Host,
		port:    _config.HTTPAPIServer.Port,
		config:  _config,
		echo:    _echo,
		mdns:    types.NewMDNS(_config),
		router:  NewRouter(_echo),
		metrics: metrics,
		storage: storage,
	}
	server.echo.Use(middleware.Logger())
	server.echo.Use(metrics.Middleware())
	server.echo.Use(middleware.Recover())
	server.echo.Use(
		workerMiddleware.ConfigMiddleware(_config),
	)

	server.router.RegisterAPIRoot()
	server.router.Register(
		BLOCKS_PREFIX,
		BLOCKS_BASENAME,
		handlers.NewBlockViewSet(storage),
	)
	server.AddHTTPAPIRoute(http.MethodGet, "/health/", handlers.HealthHandler)
	server.AddHTTPAPIRoute(http.MethodGet, "/metrics/", metrics.Handler())

	server.mdns.SetResources(server.router.GetPrefixes())

	return server
}

// NewServerFromConfig opens the configured storage and builds the server on it.
func NewServerFromConfig(ctx context.Context, _config config.Config) (*Server, error) {
	storage, err := types.NewStorage(ctx, _config.Storage)
	if err != nil {
		return nil, err
	}

	return NewServer(_config, storage), nil
}

func (s *Server) AddMiddleware(middleware ...echo.MiddlewareFunc) {
	s.echo.Use(middleware...)
}

func (s *Server) AddHTTPAPIRoute(method string, path string, handlerFunc echo.HandlerFunc) {
	s.echo.Add(method, path, handlerFunc)
}

// Start serves until Shutdown. A failed DNS-SD announcement is logged and
// does not stop the server.
func (s *Server) Start() error {
	if err := s.mdns.Announce(); err != nil {
		s.echo.Logger.Warnf("DNS-SD disabled: %v", err)
	}

	address := fmt.Sprintf("%s:%d", s.host, s.port)
	s.echo.Logger.Infof(
		"Serving %s on %s with %s storage",
		BLOCKS_PREFIX, address, s.storage.GetStorageName(),
	)

	err := s.echo.Start(address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.mdns.Shutdown()

	err := s.echo.Shutdown(ctx)
	if closeErr := s.storage.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

func (s *Server) NewContext(request *http.Request, writer http.ResponseWriter) echo.Context {
	return s.echo.NewContext(request, writer)
}

func (s *Server) GetHost() string {
	return s.host
}

func (s *Server) GetPort() int {
	return s.port
}

func (s *Server) GetEcho() *echo.Echo {
	return s.echo
}

func (s *Server) GetMDNS() *types.MDNS {
	return s.mdns
}

func (s *Server) GetConfig() config.Config {
	return s.config
}

func (s *Server) GetRouter() *Router {
	return s.router
}

func (s *Server) GetMetrics() *workerMiddleware.Metrics {
	return s.metrics
}

func (s *Server) GetStorage() interfaces.BlockStorage {
	return s.storage
}
