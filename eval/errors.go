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
	"fmt"
	"strings"

	"trpc.group/trpc-go/tempoeval/model"
)

// UnexpectedResponseError reports that the model answered in free text when
// a tool call was required. It carries the raw response text for diagnosis.
type UnexpectedResponseError struct {
	Content string
}

// Error implements the error interface.
func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("model answered in free text instead of a tool call: %q", e.Content)
}

// WrongToolError reports that the model invoked a tool other than the one
// the current step requires, or more than one tool in a single turn.
type WrongToolError struct {
	Expected string
	Calls    []model.ToolCall
}

// Error implements the error interface.
func (e *WrongToolError) Error() string {
	names := make([]string, len(e.Calls))
	for i, call := range e.Calls {
		names[i] = call.Function.Name
	}
	return fmt.Sprintf("expected tool %q, model called [%s]", e.Expected, strings.Join(names, ", "))
}
