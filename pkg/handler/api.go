package handler

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const ApiVersion = "1.0"
const ApiVersionMajor = "1"

// nolint: lll
// @title ModulemdBackend
// @version  v1.0.0
// @description Validation and canonical formatting of modulemd YAML documents
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0
// @Host api.example.com
// @BasePath /api/modulemd/v1/

func RegisterRoutes(engine *echo.Echo, validator validation.Validator) {
	paths := []string{fullRootPath(), majorRootPath()}
	for i := 0; i < len(paths); i++ {
		group := engine.Group(paths[i])
		RegisterModulemdRoutes(group, validator)
	}

	data, err := json.MarshalIndent(engine.Routes(), "", "  ")
	if err == nil {
		log.Debug().Msg(string(data))
	}
}

func RegisterPing(engine *echo.Echo) {
	engine.GET("/ping", ping)
	engine.GET("/ping/", ping)
}

func ping(c echo.Context) error {
	return c.JSON(200, echo.Map{
		"message": "pong",
	})
}

func rootPrefix() string {
	pathPrefix, present := os.LookupEnv("PATH_PREFIX")
	if !present {
		pathPrefix = "api"
	}

	appName, present := os.LookupEnv("APP_NAME")
	if !present {
		appName = config.DefaultAppName
	}
	return filepath.Join("/", pathPrefix, appName)
}

func fullRootPath() string {
	return filepath.Join(rootPrefix(), "v"+ApiVersion)
}
func majorRootPath() string {
	return filepath.Join(rootPrefix(), "v"+ApiVersionMajor)
}
