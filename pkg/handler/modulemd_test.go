package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/config"
	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/test"
	"github.com/content-services/modulemd-backend/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModulemdSuite struct {
	suite.Suite
	validator *mocks.Validator
}

func TestModulemdSuite(t *testing.T) {
	suite.Run(t, new(ModulemdSuite))
}

func (s *ModulemdSuite) SetupTest() {
	s.validator = &mocks.Validator{}
}

func (s *ModulemdSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
}

func newYAMLRequest(path string, body string) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", YAMLMimeType)
	return req
}

func (s *ModulemdSuite) TestValidate() {
	t := s.T()
	body := test.ModuleStreamV2()
	expected := api.ValidationResponse{
		Valid:     true,
		Documents: []api.DocumentResult{{Document: "modulemd", Version: 2, Valid: true}},
	}
	s.validator.On("Validate", mock.Anything, []byte(body), config.Get().Options.Strict).Return(expected, nil)

	code, respBody, err := serveRouter(s.validator, newYAMLRequest(majorRootPath()+"/validate", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	var response api.ValidationResponse
	require.NoError(t, json.Unmarshal(respBody, &response))
	assert.Equal(t, expected, response)
}

func (s *ModulemdSuite) TestValidateInvalidDocuments() {
	t := s.T()
	body := test.Mixed()
	expected := api.ValidationResponse{
		Valid:  false,
		Strict: true,
		Documents: []api.DocumentResult{
			{Document: "modulemd", Version: 2, Valid: true},
			{Version: 2, Line: 12, Error: "No document type specified"},
		},
	}
	s.validator.On("Validate", mock.Anything, []byte(body), true).Return(expected, nil)

	code, respBody, err := serveRouter(s.validator, newYAMLRequest(fullRootPath()+"/validate?strict=true", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	var response api.ValidationResponse
	require.NoError(t, json.Unmarshal(respBody, &response))
	assert.Equal(t, expected, response)
}

func (s *ModulemdSuite) TestValidateUnreadableStream() {
	t := s.T()
	body := "document: [unterminated\n"
	s.validator.On("Validate", mock.Anything, []byte(body), false).
		Return(api.ValidationResponse{}, ce.NewMalformedEvent(1, 11, "Failed to parse YAML stream"))

	code, respBody, err := serveRouter(s.validator, newYAMLRequest(majorRootPath()+"/validate?strict=false", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(respBody), "Error reading documents")
}

func (s *ModulemdSuite) TestBadStrictParameter() {
	t := s.T()
	code, respBody, err := serveRouter(s.validator, newYAMLRequest(majorRootPath()+"/validate?strict=sometimes", "document: modulemd"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(respBody), "Error binding parameters")
}

func (s *ModulemdSuite) TestEmptyBody() {
	t := s.T()
	code, respBody, err := serveRouter(s.validator, newYAMLRequest(majorRootPath()+"/validate", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(respBody), "Empty request body")
}

func (s *ModulemdSuite) TestBodyTooLarge() {
	t := s.T()
	previous := config.Get().Options.MaxDocumentBytes
	config.Get().Options.MaxDocumentBytes = 16
	defer func() { config.Get().Options.MaxDocumentBytes = previous }()

	code, respBody, err := serveRouter(s.validator, newYAMLRequest(majorRootPath()+"/reformat", test.ModuleStreamV3()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Contains(t, string(respBody), "Request body exceeds 16 bytes")
}

func (s *ModulemdSuite) TestReformat() {
	t := s.T()
	body := test.ModuleStreamV3()
	s.validator.On("Reformat", mock.Anything, []byte(body), true).Return("---\ndocument: modulemd\n...\n", nil)

	req := newYAMLRequest(majorRootPath()+"/reformat?strict=true", body)
	code, respBody, err := serveRouter(s.validator, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "---\ndocument: modulemd\n...\n", string(respBody))
}

func (s *ModulemdSuite) TestReformatErrors() {
	t := s.T()
	type TestCase struct {
		Name     string
		Given    error
		Expected int
	}
	testCases := []TestCase{
		{Name: "missing field", Given: ce.NewMissingRequired("No document type specified"), Expected: http.StatusUnprocessableEntity},
		{Name: "unknown key", Given: ce.NewUnknownKey(3, 3, "bogus"), Expected: http.StatusBadRequest},
		{Name: "unexpected failure", Given: errors.New("disk full"), Expected: http.StatusInternalServerError},
	}
	for _, testCase := range testCases {
		t.Log(testCase.Name)
		validator := &mocks.Validator{}
		validator.On("Reformat", mock.Anything, mock.Anything, mock.Anything).Return("", testCase.Given)

		code, respBody, err := serveRouter(validator, newYAMLRequest(majorRootPath()+"/reformat", test.PackagerV3()))
		require.NoError(t, err)
		assert.Equal(t, testCase.Expected, code)

		var response ce.ErrorResponse
		require.NoError(t, json.Unmarshal(respBody, &response))
		require.Len(t, response.Errors, 1)
		assert.Equal(t, "Error reformatting documents", response.Errors[0].Title)
		validator.AssertExpectations(t)
	}
}
