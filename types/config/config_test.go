package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/suite"

	"blocks-api/types/config"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFileUsesDefaults() {
	_config, err := config.LoadConfig(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Nil(err)
	suite.Equal(config.DefaultConfig(), _config)

	suite.Equal("0.0.0.0", _config.HTTPAPIServer.Host)
	suite.Equal(8080, _config.HTTPAPIServer.Port)
	suite.Equal(config.STORAGE_BACKEND_BOLT, _config.Storage.Backend)
	suite.Equal(time.Second, _config.Storage.Bolt.Timeout)
	suite.Equal("blocks", _config.Storage.Postgres.Table)
}

func (suite *ConfigTestSuite) TestLoadConfigEmptyFile() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", "")

	_config, err := config.LoadConfig(path)
	suite.Nil(err)
	suite.Equal(config.DefaultConfig(), _config)
}

func (suite *ConfigTestSuite) TestLoadConfigOverridesDefaults() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", `
log:
  level: debug
http_api_server:
  host: 127.0.0.1
  port: 9090
dns_sd:
  enabled: true
  service_name: blocks-test
  service_port: 0
storage:
  backend: bolt
  bolt:
    path: /tmp/blocks-test.db
    timeout: 2s
`)

	_config, err := config.LoadConfig(path)
	suite.Nil(err)

	suite.Equal("debug", _config.Log.Level)
	suite.Equal("127.0.0.1", _config.HTTPAPIServer.Host)
	suite.Equal(9090, _config.HTTPAPIServer.Port)

	suite.True(_config.DNSSD.Enabled)
	suite.Equal("blocks-test", _config.DNSSD.ServiceName)
	suite.Equal("_http._tcp", _config.DNSSD.ServiceType)
	suite.Equal(9090, _config.DNSSD.ServicePort)

	suite.Equal("/tmp/blocks-test.db", _config.Storage.Bolt.Path)
	suite.Equal(2*time.Second, _config.Storage.Bolt.Timeout)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidYAML() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", "log: [unterminated")

	_, err := config.LoadConfig(path)
	suite.NotNil(err)
}

func (suite *ConfigTestSuite) TestLoadConfigUnknownBackend() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", "storage:\n  backend: sqlite\n")

	_, err := config.LoadConfig(path)
	suite.ErrorContains(err, "sqlite")
}

func (suite *ConfigTestSuite) TestPostgresURLFromEnv() {
	suite.T().Setenv("BLOCKS_CONFIG_TEST_URL", "postgres://env@localhost/blocks")
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", `
storage:
  backend: postgres
  postgres:
    env_var_name: BLOCKS_CONFIG_TEST_URL
    url: postgres://file@localhost/blocks
`)

	_config, err := config.LoadConfig(path)
	suite.Nil(err)
	suite.Equal("postgres://env@localhost/blocks", _config.Storage.Postgres.Url)
}

func (suite *ConfigTestSuite) TestPostgresURLFromCredentialsFallback() {
	dir := suite.T().TempDir()
	suite.writeFile(dir, "postgres.json", `{"url": "postgres://credentials@localhost/blocks"}`)
	path := suite.writeFile(dir, "config.yaml", `
storage:
  backend: postgres
  postgres:
    env_var_name: BLOCKS_CONFIG_TEST_UNSET_URL
    credentials_path: not/here/postgres.json
`)

	_config, err := config.LoadConfig(path)
	suite.Nil(err)
	suite.Equal("postgres://credentials@localhost/blocks", _config.Storage.Postgres.Url)
}

func (suite *ConfigTestSuite) TestPostgresURLFromFile() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", `
storage:
  backend: postgres
  postgres:
    env_var_name: BLOCKS_CONFIG_TEST_UNSET_URL
    url: postgres://file@localhost/blocks
`)

	_config, err := config.LoadConfig(path)
	suite.Nil(err)
	suite.Equal("postgres://file@localhost/blocks", _config.Storage.Postgres.Url)
}

func (suite *ConfigTestSuite) TestPostgresWithoutURL() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", `
storage:
  backend: postgres
  postgres:
    env_var_name: BLOCKS_CONFIG_TEST_UNSET_URL
`)

	_, err := config.LoadConfig(path)
	suite.NotNil(err)
}

func (suite *ConfigTestSuite) TestGetConfigForceNewInstance() {
	path := suite.writeFile(suite.T().TempDir(), "config.yaml", "http_api_server:\n  port: 9191\n")
	suite.T().Setenv("CONFIG_FILE", path)

	_config := config.GetConfig(true)
	suite.Equal(9191, _config.HTTPAPIServer.Port)
	suite.Equal(_config, config.GetConfig())
}

func (suite *ConfigTestSuite) TestSetHTTPAPIPort() {
	_config := config.DefaultConfig()
	_config.SetHTTPAPIPort(7070)

	suite.Equal(7070, _config.HTTPAPIServer.Port)
	suite.Equal(7070, _config.DNSSD.ServicePort)
}

func (suite *ConfigTestSuite) TestParseLogLevel() {
	cases := map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		"warn":    log.WARN,
		"Error":   log.ERROR,
		"off":     log.OFF,
		"verbose": log.WARN,
		"":        log.WARN,
	}
	for level, expected := range cases {
		suite.Equal(expected, config.ParseLogLevel(level), level)
	}
}

func (suite *ConfigTestSuite) TestGetLogger() {
	suite.NotNil(config.GetLogger())
	suite.Equal(config.GetLogger(), config.GetLogger())
}
