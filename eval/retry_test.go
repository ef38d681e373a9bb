//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetries(t *testing.T) {
	orig := retryBackoff
	retryBackoff = 0
	defer func() { retryBackoff = orig }()

	t.Run("passes on first attempt", func(t *testing.T) {
		attempts := 0
		fn := WithRetries(func(_ context.Context) *Result {
			attempts++
			return &Result{Passed: true}
		}, 3)

		result := fn(context.Background())
		assert.True(t, result.Passed)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries failed verdicts up to the bound", func(t *testing.T) {
		attempts := 0
		fn := WithRetries(func(_ context.Context) *Result {
			attempts++
			return &Result{Passed: attempts >= 3}
		}, 3)

		result := fn(context.Background())
		assert.True(t, result.Passed)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns the last result when all attempts fail", func(t *testing.T) {
		attempts := 0
		fn := WithRetries(func(_ context.Context) *Result {
			attempts++
			return &Result{Err: errors.New("step failed")}
		}, 2)

		result := fn(context.Background())
		require.Error(t, result.Err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		fn := WithRetries(func(_ context.Context) *Result {
			attempts++
			cancel()
			return &Result{}
		}, 5)

		result := fn(ctx)
		assert.False(t, result.Passed)
		assert.Equal(t, 1, attempts)
	})

	t.Run("non-positive bound runs once", func(t *testing.T) {
		attempts := 0
		fn := WithRetries(func(_ context.Context) *Result {
			attempts++
			return &Result{}
		}, 0)

		fn(context.Background())
		assert.Equal(t, 1, attempts)
	})
}
