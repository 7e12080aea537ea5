// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled reports that a run was aborted by the caller (disconnect or
// timeout) before completion. Distinguished from generation and validation
// failures so callers can tell "gave up" from "broke".
var ErrCancelled = errors.New("research run cancelled")

// GenerationError reports that the AI port failed or returned an unusable
// response for one pipeline stage.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// stageError wraps an AI port failure for stage, folding caller cancellation
// into ErrCancelled.
func stageError(ctx context.Context, stage string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
	return &GenerationError{Stage: stage, Err: err}
}
