// Package validation reads modulemd YAML streams and reports on every
// document they contain.
package validation

import (
	"context"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/cache"
	"github.com/content-services/modulemd-backend/pkg/instrumentation"
	"github.com/content-services/modulemd-backend/pkg/modulemd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Validator interface {
	// Validate reports on every document of body. Only an unreadable
	// YAML stream is returned as an error.
	Validate(ctx context.Context, body []byte, strict bool) (api.ValidationResponse, error)
	// Reformat re-emits body canonically. Any document that fails to
	// read or validate fails the whole call.
	Reformat(ctx context.Context, body []byte, strict bool) (string, error)
}

type validatorImpl struct {
	cache   cache.Cache
	metrics *instrumentation.Metrics
}

// NewValidator returns a Validator. A nil cache disables caching and nil
// metrics disables recording.
func NewValidator(c cache.Cache, metrics *instrumentation.Metrics) Validator {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &validatorImpl{cache: c, metrics: metrics}
}

func (v *validatorImpl) Validate(ctx context.Context, body []byte, strict bool) (api.ValidationResponse, error) {
	logger := log.Ctx(ctx)
	key := cache.ValidationKey(strict, body)
	cached, err := v.cache.GetValidation(ctx, key)
	if err == nil {
		v.metrics.RecordCacheLookup(true)
		return *cached, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		logger.Warn().Err(err).Msg("Validation cache lookup failed")
	}
	v.metrics.RecordCacheLookup(false)

	index, err := modulemd.ReadBytes(body, strict)
	if err != nil {
		return api.ValidationResponse{}, err
	}
	response := v.responseFromIndex(index, strict)
	v.metrics.RecordValidation(response.Valid)

	if err = v.cache.SetValidation(ctx, key, response); err != nil {
		logger.Warn().Err(err).Msg("Could not store validation result")
	}
	return response, nil
}

func (v *validatorImpl) Reformat(ctx context.Context, body []byte, strict bool) (string, error) {
	index, err := modulemd.ReadBytes(body, strict)
	if err != nil {
		return "", err
	}
	for _, failure := range index.Failures {
		v.metrics.RecordSubdocumentFailure(failure.DocType)
	}
	if len(index.Failures) > 0 {
		failure := index.Failures[0]
		return "", errors.Wrapf(failure.Err, "document at line %d could not be read", failure.Line)
	}
	out, err := modulemd.EmitString(index.Documents...)
	if err != nil {
		return "", err
	}
	log.Ctx(ctx).Debug().Int("documents", len(index.Documents)).Msg("Reformatted documents")
	return out, nil
}

func (v *validatorImpl) responseFromIndex(index *modulemd.Index, strict bool) api.ValidationResponse {
	response := api.ValidationResponse{Valid: true, Strict: strict, Documents: []api.DocumentResult{}}
	for _, doc := range index.Documents {
		result := api.DocumentResult{
			Document: doc.DocumentType(),
			Version:  doc.MdVersion(),
			Valid:    true,
		}
		if s, ok := doc.(modulemd.ModuleStream); ok {
			result.Stream = StreamFromModuleStream(s)
		}
		if err := doc.Validate(); err != nil {
			result.Valid = false
			result.Error = err.Error()
			v.metrics.RecordSubdocumentFailure(result.Document)
		} else {
			v.metrics.RecordDocument(result.Document, result.Version)
		}
		response.Documents = append(response.Documents, result)
	}
	for _, failure := range index.Failures {
		response.Documents = append(response.Documents, api.DocumentResult{
			Document: failure.DocType,
			Version:  failure.Version,
			Line:     failure.Line,
			Error:    failure.Error(),
		})
		v.metrics.RecordSubdocumentFailure(failure.DocType)
	}
	response.Valid = response.Failed() == 0
	return response
}
