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
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/tempoeval/log"
	"trpc.group/trpc-go/tempoeval/model"
	"trpc.group/trpc-go/tempoeval/tool"
)

// tracer emits spans at the three suspension points of a scenario: the model
// call, the tool execution, and the judge call. No exporter is configured
// here; wiring a provider is the embedding application's concern.
var tracer = otel.Tracer("tempoeval")

// runStep drives one forced tool invocation. It issues exactly one model
// call with the full tool catalog exposed and tool choice set to required,
// validates that the response is a single call to the expected tool,
// executes the call with the model's own arguments, and returns the
// conversation extended with the assistant turn and the tool result turn.
//
// On any failure the input conversation is returned unchanged, so a failed
// step never leaves a half-appended pair behind.
func runStep(
	ctx context.Context,
	m model.Model,
	conversation []model.Message,
	tools map[string]tool.Tool,
	expectedTool string,
) ([]model.Message, error) {
	spanCtx, span := tracer.Start(ctx, "call_model",
		trace.WithAttributes(
			attribute.String("model.name", m.Info().Name),
			attribute.String("step.expected_tool", expectedTool),
		))
	rsp, err := m.GenerateContent(spanCtx, &model.Request{
		Messages:   conversation,
		Tools:      tools,
		ToolChoice: model.ToolChoiceRequired,
	})
	span.End()
	if err != nil {
		return conversation, fmt.Errorf("model call for tool %s: %w", expectedTool, err)
	}

	calls := rsp.ToolCalls()
	if len(calls) == 0 {
		return conversation, &UnexpectedResponseError{Content: rsp.Content()}
	}
	// A turn with multiple tool calls is as wrong as a mismatched name.
	if len(calls) > 1 || calls[0].Function.Name != expectedTool {
		return conversation, &WrongToolError{Expected: expectedTool, Calls: calls}
	}

	call := calls[0]
	callable, err := lookupCallable(tools, call.Function.Name)
	if err != nil {
		return conversation, err
	}

	log.Debugf("executing tool %s, args=%s", call.Function.Name, call.Function.Arguments)
	spanCtx, span = tracer.Start(ctx, "execute_tool",
		trace.WithAttributes(attribute.String("tool.name", call.Function.Name)))
	result, err := callable.Call(spanCtx, call.Function.Arguments)
	span.End()
	if err != nil {
		return conversation, err
	}

	resultText, err := serializeResult(result)
	if err != nil {
		return conversation, fmt.Errorf("serialize result of tool %s: %w", call.Function.Name, err)
	}

	assistantMsg := model.NewAssistantMessage(rsp.Content())
	assistantMsg.ToolCalls = calls
	return append(conversation,
		assistantMsg,
		model.NewToolMessage(call.ID, call.Function.Name, resultText),
	), nil
}

// lookupCallable resolves a tool name against the catalog.
func lookupCallable(tools map[string]tool.Tool, name string) (tool.CallableTool, error) {
	t, ok := tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %s not found in catalog", name)
	}
	callable, ok := t.(tool.CallableTool)
	if !ok {
		return nil, fmt.Errorf("tool %s is not callable", name)
	}
	return callable, nil
}

// serializeResult folds a tool result back into message content. Text
// results pass through, structured results are JSON-encoded once.
func serializeResult(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
