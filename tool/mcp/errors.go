//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package mcp

import "fmt"

// AdapterError reports a tool descriptor whose schema cannot be represented
// as a JSON schema object. It is fatal to the scenario and never masked.
type AdapterError struct {
	// ToolName is the name of the offending tool descriptor.
	ToolName string
	// Err is the underlying conversion failure.
	Err error
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	return fmt.Sprintf("tool catalog: descriptor %q has an unrepresentable schema: %v", e.ToolName, e.Err)
}

// Unwrap returns the underlying error.
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// ProviderError reports a failed tool invocation on the provider side.
// It propagates up unmodified; the scenario-level retry policy decides
// whether to re-run the whole scenario.
type ProviderError struct {
	// ToolName is the name of the invoked tool.
	ToolName string
	// Err is the underlying provider failure.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: tool %q failed: %v", e.ToolName, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
