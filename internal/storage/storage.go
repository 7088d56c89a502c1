// Package storage holds what the cache, snapshot and event stores share.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"city-weather/pkg/apperr"
)

// CreateThenRetry runs op. When op reports a missing bucket or table it calls
// create once and runs op one more time. Whatever the retry returns is final.
func CreateThenRetry(ctx context.Context, op, create func(context.Context) error) error {
	err := op(ctx)
	if err == nil || !apperr.IsResourceMissing(err) {
		return err
	}

	if cerr := create(ctx); cerr != nil {
		return errors.Wrap(cerr, "create missing resource")
	}

	return op(ctx)
}
