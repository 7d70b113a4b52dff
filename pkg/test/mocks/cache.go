package mocks

import (
	"context"
	"fmt"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/stretchr/testify/mock"
)

type Cache struct {
	mock.Mock
}

func (c *Cache) GetValidation(ctx context.Context, key string) (*api.ValidationResponse, error) {
	args := c.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	response, ok := args.Get(0).(*api.ValidationResponse)
	if !ok {
		panic(fmt.Sprintf("assert: arguments: Get(%d) failed because object wasn't correct type: %v", 0, args.Get(0)))
	}
	return response, args.Error(1)
}

func (c *Cache) SetValidation(ctx context.Context, key string, response api.ValidationResponse) error {
	args := c.Called(ctx, key, response)
	return args.Error(0)
}
