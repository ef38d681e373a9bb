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
	"time"

	"trpc.group/trpc-go/tempoeval/log"
)

// retryBackoff is the linear backoff unit between attempts.
var retryBackoff = time.Second

// ScenarioFunc runs one complete scenario attempt.
type ScenarioFunc func(ctx context.Context) *Result

// WithRetries wraps a scenario function so that it re-runs on an error or a
// failed verdict, up to maxAttempts times with linear backoff in between.
// The wrapped function stays deterministic; no state carries across
// attempts. The last attempt's result is returned.
func WithRetries(fn ScenarioFunc, maxAttempts int) ScenarioFunc {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return func(ctx context.Context) *Result {
		var result *Result
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			result = fn(ctx)
			if result.Err == nil && result.Passed {
				return result
			}
			if attempt == maxAttempts {
				break
			}
			log.Warnf("run %s: attempt %d/%d failed (err=%v), retrying",
				result.ID, attempt, maxAttempts, result.Err)
			select {
			case <-ctx.Done():
				return result
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		return result
	}
}
