package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/content-services/modulemd-backend/pkg/instrumentation"
	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConfigureEcho(t *testing.T) {
	type TestCaseExpected map[string]map[string]string

	testCases := TestCaseExpected{
		"/ping": {
			"GET": "github.com/content-services/modulemd-backend/pkg/handler.ping",
		},
		"/api/modulemd/v1/validate": {
			"POST": "github.com/content-services/modulemd-backend/pkg/handler.(*ModulemdHandler).validate-fm",
		},
		"/api/modulemd/v1.0/validate": {
			"POST": "github.com/content-services/modulemd-backend/pkg/handler.(*ModulemdHandler).validate-fm",
		},
		"/api/modulemd/v1/reformat": {
			"POST": "github.com/content-services/modulemd-backend/pkg/handler.(*ModulemdHandler).reformat-fm",
		},
	}

	e := ConfigureEcho(validation.NewValidator(nil, nil))
	require.NotNil(t, e)

	for path, endpoints := range testCases {
		for method, fnc := range endpoints {
			found := false

			for _, route := range e.Routes() {
				if route.Path == path && method == route.Method {
					found = true
					assert.Equal(t, fnc, route.Name)
				}
			}
			assert.True(t, found, "Could not find route for %v: %v", method, path)
		}
	}
}

func TestEchoWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := instrumentation.NewMetrics(reg)
	var e *echo.Echo
	require.NotPanics(t, func() {
		e = ConfigureEchoWithMetrics(validation.NewValidator(nil, metrics), metrics)
	})
	assert.NotNil(t, e)
}

func TestValidateEndToEnd(t *testing.T) {
	e := ConfigureEcho(validation.NewValidator(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/modulemd/v1/validate", strings.NewReader(test.ModuleStreamV2()))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)
	assert.NotEmpty(t, rec.Header().Get(config.HeaderRequestId))
}

func TestWrongContentType(t *testing.T) {
	e := ConfigureEcho(validation.NewValidator(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/modulemd/v1/reformat", strings.NewReader(test.ModuleStreamV3()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetricsEcho(t *testing.T) {
	metrics := instrumentation.NewMetrics(prometheus.NewRegistry())
	metrics.RecordValidation(true)
	e := ConfigureMetricsEcho(metrics)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.Get().Metrics.Path, http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), instrumentation.NameSpace+"_"+instrumentation.ValidationRequests)
}
