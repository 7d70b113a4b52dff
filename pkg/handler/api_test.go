package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/test/mocks"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveRouter(validator *mocks.Validator, req *http.Request) (int, []byte, error) {
	router := echo.New()
	router.HTTPErrorHandler = config.CustomHTTPErrorHandler
	RegisterPing(router)
	RegisterRoutes(router, validator)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	response := rr.Result()
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	return response.StatusCode, body, err
}

func TestPing(t *testing.T) {
	paths := []string{"/ping", "/ping/"}
	for _, path := range paths {
		req, _ := http.NewRequest("GET", path, nil)
		code, body, err := serveRouter(&mocks.Validator{}, req)
		assert.Nil(t, err)
		assert.Equal(t, http.StatusOK, code)

		expected := "{\"message\":\"pong\"}\n"
		assert.Equal(t, expected, string(body))
	}
}

func TestPingV1IsNotAvailable(t *testing.T) {
	paths := []string{
		fullRootPath() + "/ping",
		fullRootPath() + "/ping/",
		majorRootPath() + "/ping",
		majorRootPath() + "/ping/",
	}
	for _, path := range paths {
		t.Log(path)
		req, _ := http.NewRequest("GET", path, nil)
		code, body, err := serveRouter(&mocks.Validator{}, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, code)

		expected := "{\"errors\":[{\"status\":404,\"detail\":\"Not Found\"}]}\n"
		assert.Equal(t, expected, string(body))
	}
}

func TestRootPaths(t *testing.T) {
	assert.Equal(t, "/api/"+config.DefaultAppName+"/v1.0", fullRootPath())
	assert.Equal(t, "/api/"+config.DefaultAppName+"/v1", majorRootPath())

	t.Setenv("PATH_PREFIX", "beta/api")
	assert.Equal(t, "/beta/api/"+config.DefaultAppName+"/v1", majorRootPath())
}
