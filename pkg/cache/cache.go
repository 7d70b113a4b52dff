// Package cache provides the validation result cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("not found in cache")

type Cache interface {
	GetValidation(ctx context.Context, key string) (*api.ValidationResponse, error)
	SetValidation(ctx context.Context, key string, response api.ValidationResponse) error
}

func Initialize() Cache {
	if config.Get().Clients.Redis.Host != "" {
		return NewRedisCache()
	} else {
		log.Logger.Warn().Msg("No application cache in use")
		return NewNoOpCache()
	}
}

// ValidationKey is the digest of the strictness and the exact request body.
func ValidationKey(strict bool, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatBool(strict)))
	h.Write([]byte{0})
	h.Write(body)
	return "validation:" + hex.EncodeToString(h.Sum(nil))
}
