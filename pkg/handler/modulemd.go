package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/content-services/modulemd-backend/pkg/config"
	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/labstack/echo/v4"
)

const YAMLMimeType = "application/yaml"

type ModulemdHandler struct {
	Validator validation.Validator
}

func RegisterModulemdRoutes(engine *echo.Group, validator validation.Validator) {
	h := ModulemdHandler{
		Validator: validator,
	}

	engine.POST("/validate", h.validate)
	engine.POST("/validate/", h.validate)
	engine.POST("/reformat", h.reformat)
	engine.POST("/reformat/", h.reformat)
}

// validate godoc
// @Summary      Validate modulemd documents
// @ID           validate
// @Description  Parse and validate every document of a modulemd YAML stream. Responds 422 when any document is invalid.
// @Tags         modulemd
// @Accept       application/yaml
// @Produce      json
// @Param        strict  query  bool  false  "fail on unknown keys"
// @Param        body  body   string  true  "modulemd YAML stream"
// @Success      200   {object}  api.ValidationResponse
// @Failure      400 {object} ce.ErrorResponse
// @Failure      413 {object} ce.ErrorResponse
// @Failure      415 {object} ce.ErrorResponse
// @Failure      422 {object} api.ValidationResponse
// @Failure      500 {object} ce.ErrorResponse
// @Router       /validate [post]
func (h *ModulemdHandler) validate(c echo.Context) error {
	strict, body, err := readRequest(c)
	if err != nil {
		return err
	}

	response, err := h.Validator.Validate(c.Request().Context(), body, strict)
	if err != nil {
		return ce.NewErrorResponseFromError("Error reading documents", err)
	}

	status := http.StatusOK
	if !response.Valid {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, response)
}

// reformat godoc
// @Summary      Reformat modulemd documents
// @ID           reformat
// @Description  Re-emit a modulemd YAML stream in canonical form
// @Tags         modulemd
// @Accept       application/yaml
// @Produce      application/yaml
// @Param        strict  query  bool  false  "fail on unknown keys"
// @Param        body  body   string  true  "modulemd YAML stream"
// @Success      200   {string}  string
// @Failure      400 {object} ce.ErrorResponse
// @Failure      413 {object} ce.ErrorResponse
// @Failure      415 {object} ce.ErrorResponse
// @Failure      422 {object} ce.ErrorResponse
// @Failure      500 {object} ce.ErrorResponse
// @Router       /reformat [post]
func (h *ModulemdHandler) reformat(c echo.Context) error {
	strict, body, err := readRequest(c)
	if err != nil {
		return err
	}

	out, err := h.Validator.Reformat(c.Request().Context(), body, strict)
	if err != nil {
		return ce.NewErrorResponseFromError("Error reformatting documents", err)
	}
	return c.Blob(http.StatusOK, YAMLMimeType, []byte(out))
}

// readRequest reads the strict query parameter and the request body,
// refusing bodies larger than the configured limit.
func readRequest(c echo.Context) (bool, []byte, error) {
	strict := config.Get().Options.Strict
	if err := echo.QueryParamsBinder(c).Bool("strict", &strict).BindError(); err != nil {
		return false, nil, ce.NewErrorResponse(http.StatusBadRequest, "Error binding parameters", err.Error())
	}

	limit := config.Get().Options.MaxDocumentBytes
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return false, nil, ce.NewErrorResponse(http.StatusBadRequest, "Error reading request body", err.Error())
	}
	if int64(len(body)) > limit {
		return false, nil, ce.NewErrorResponse(http.StatusRequestEntityTooLarge, "Document too large",
			fmt.Sprintf("Request body exceeds %d bytes", limit))
	}
	if len(body) == 0 {
		return false, nil, ce.NewErrorResponse(http.StatusBadRequest, "Empty request body", "A modulemd YAML stream is required")
	}
	return strict, body, nil
}
