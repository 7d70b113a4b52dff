package middleware

import (
	"mime"
	"net/http"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

const YAMLMimeType = "application/yaml"

var yamlMimeTypes = map[string]bool{
	YAMLMimeType:         true,
	"application/x-yaml": true,
	"text/yaml":          true,
	"text/x-yaml":        true,
	"text/plain":         true,
}

func enforceYAMLContentTypeSkipper(c echo.Context) bool {
	return c.Request().Body == http.NoBody
}

// EnforceYAMLContentType rejects request bodies that are not sent as yaml.
func EnforceYAMLContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if enforceYAMLContentTypeSkipper(c) {
			return next(c)
		}
		mediatype, _, err := mime.ParseMediaType(c.Request().Header.Get("Content-Type"))
		if err != nil {
			return ce.NewErrorResponse(http.StatusUnsupportedMediaType, "Error parsing content type", err.Error())
		}
		if !yamlMimeTypes[mediatype] {
			return ce.NewErrorResponse(http.StatusUnsupportedMediaType, "Incorrect content type", "Content-Type must be application/yaml")
		}
		return next(c)
	}
}
