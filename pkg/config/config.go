package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultAppName = "modulemd"

const (
	HeaderRequestId     = "X-Request-Id"
	RequestIdLoggingKey = "request_id"
)

type Configuration struct {
	Logging Logging
	Loaded  bool
	Options Options
	Server  Server
	Metrics Metrics
	Clients Clients `mapstructure:"clients"`
}

type Clients struct {
	Redis Redis `mapstructure:"redis"`
}

type Logging struct {
	Level   string
	Console bool
}

type Redis struct {
	Host       string
	Port       int
	Username   string
	Password   string
	DB         int
	Expiration time.Duration
}

// https://stackoverflow.com/questions/54844546/how-to-unmarshal-golang-viper-snake-case-values
type Options struct {
	// Strict is the default unknown key policy of the cli and the service.
	Strict           bool  `mapstructure:"strict"`
	MaxDocumentBytes int64 `mapstructure:"max_document_bytes"`
}

type Server struct {
	Port int `mapstructure:"port"`
}

type Metrics struct {
	// Defines the path to the metrics server that the app should be configured to
	// listen on for metric traffic.
	Path string `mapstructure:"path"`

	// Defines the metrics port that the app should be configured to listen on for
	// metric traffic.
	Port int `mapstructure:"port"`
}

const (
	DefaultMaxDocumentBytes = 1 << 20
	DefaultServerPort       = 8000
	DefaultMetricsPort      = 9000
)

var LoadedConfig Configuration

func Get() *Configuration {
	if !LoadedConfig.Loaded {
		Load()
	}
	return &LoadedConfig
}

func RedisUrl() string {
	return fmt.Sprintf("%s:%d", Get().Clients.Redis.Host, Get().Clients.Redis.Port)
}

func readConfigFile(v *viper.Viper) {
	v.SetConfigName("config.yaml")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs/")
	v.AddConfigPath("../../configs/")
	v.AddConfigPath("../../../configs")

	if path, ok := os.LookupEnv("CONFIG_PATH"); ok {
		v.AddConfigPath(path)
	}
	err := v.ReadInConfig()
	if err != nil {
		log.Logger.Warn().Msgf("config.yaml file not loaded: %s", err.Error())
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Loaded", true)
	// In viper you have to set defaults, otherwise loading from ENV doesn't work
	//   without a config file present
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("options.strict", false)
	v.SetDefault("options.max_document_bytes", DefaultMaxDocumentBytes)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", DefaultMetricsPort)

	v.SetDefault("clients.redis.host", "")
	v.SetDefault("clients.redis.port", "")
	v.SetDefault("clients.redis.username", "")
	v.SetDefault("clients.redis.password", "")
	v.SetDefault("clients.redis.db", 0)
	v.SetDefault("clients.redis.expiration", 1*time.Minute)
}

func Load() {
	var err error
	v := viper.New()

	readConfigFile(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err = v.Unmarshal(&LoadedConfig)
	if err != nil {
		panic(err)
	}

	if LoadedConfig.Options.MaxDocumentBytes <= 0 {
		log.Warn().Msgf("options.max_document_bytes must be positive, using %d", DefaultMaxDocumentBytes)
		LoadedConfig.Options.MaxDocumentBytes = DefaultMaxDocumentBytes
	}

	if LoadedConfig.Clients.Redis.Host == "" {
		log.Warn().Msg("Caching is disabled.")
	}
}

func ProgramString() string {
	return strings.Join(os.Args, " ")
}

// SkipLogging drops the noisy health and metrics endpoints from request logs.
func SkipLogging(c echo.Context) bool {
	p := c.Request().URL.Path
	if p == "/ping" || p == "/ping/" {
		return true
	}
	return p == Get().Metrics.Path
}

func CustomHTTPErrorHandler(err error, c echo.Context) {
	var code int
	var message ce.ErrorResponse

	if c.Response().Committed {
		c.Logger().Error(err)
		return
	}

	if errResp, ok := err.(ce.ErrorResponse); ok {
		code = ce.GetGeneralResponseCode(errResp)
		message = errResp
	} else if he, ok := err.(*echo.HTTPError); ok {
		errResp := ce.NewErrorResponseFromEchoError(he)
		code = errResp.Errors[0].Status
		message = errResp
	} else {
		code = http.StatusInternalServerError
		message = ce.NewErrorResponse(code, "", http.StatusText(http.StatusInternalServerError))
	}

	// Send response
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}
	if err != nil {
		log.Logger.Error().Err(err)
	}
}
