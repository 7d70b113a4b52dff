package mocks

import (
	"context"
	"fmt"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/stretchr/testify/mock"
)

type Validator struct {
	mock.Mock
}

func (v *Validator) Validate(ctx context.Context, body []byte, strict bool) (api.ValidationResponse, error) {
	args := v.Called(ctx, body, strict)
	response, ok := args.Get(0).(api.ValidationResponse)
	if !ok {
		panic(fmt.Sprintf("assert: arguments: Get(%d) failed because object wasn't correct type: %v", 0, args.Get(0)))
	}
	return response, args.Error(1)
}

func (v *Validator) Reformat(ctx context.Context, body []byte, strict bool) (string, error) {
	args := v.Called(ctx, body, strict)
	return args.String(0), args.Error(1)
}
