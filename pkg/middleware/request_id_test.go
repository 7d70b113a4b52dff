package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRequestId(t *testing.T) {
	type TestCase struct {
		Name  string
		Given string
	}
	testCases := []TestCase{
		{Name: "header given", Given: "b5d2b4c0-0c3a-4b8a-9bd5-f2f7ea1e2fa3"},
		{Name: "header missing", Given: ""},
	}

	for _, testCase := range testCases {
		t.Log(testCase.Name)
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		if testCase.Given != "" {
			req.Header.Set(config.HeaderRequestId, testCase.Given)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var stored string
		h := AddRequestId(func(c echo.Context) error {
			stored, _ = c.Get(config.HeaderRequestId).(string)
			return c.NoContent(http.StatusNoContent)
		})
		require.NoError(t, h(c))

		if testCase.Given != "" {
			assert.Equal(t, testCase.Given, stored)
		} else {
			_, err := uuid.Parse(stored)
			assert.NoError(t, err)
		}
		assert.Equal(t, stored, rec.Header().Get(config.HeaderRequestId))
		assert.Equal(t, stored, req.Header.Get(config.HeaderRequestId))
	}
}
