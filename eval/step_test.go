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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/tempoeval/model"
	"trpc.group/trpc-go/tempoeval/tool"
)

// scriptedModel replays a fixed sequence of responses and records requests.
type scriptedModel struct {
	name      string
	responses []*model.Response
	err       error
	requests  []*model.Request
}

func (m *scriptedModel) GenerateContent(_ context.Context, request *model.Request) (*model.Response, error) {
	m.requests = append(m.requests, request)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.requests) > len(m.responses) {
		return nil, fmt.Errorf("no scripted response for call %d", len(m.requests))
	}
	return m.responses[len(m.requests)-1], nil
}

func (m *scriptedModel) Info() model.Info {
	if m.name == "" {
		return model.Info{Name: "scripted"}
	}
	return model.Info{Name: m.name}
}

// toolCallResponse builds an assistant response carrying the given tool calls.
func toolCallResponse(calls ...model.ToolCall) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{Role: model.RoleAssistant, ToolCalls: calls},
		}},
	}
}

// textResponse builds an assistant response carrying plain text.
func textResponse(content string) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{Role: model.RoleAssistant, Content: content},
		}},
	}
}

func toolCall(id, name, args string) model.ToolCall {
	return model.ToolCall{
		ID:   id,
		Type: "function",
		Function: model.FunctionDefinitionParam{
			Name:      name,
			Arguments: []byte(args),
		},
	}
}

// fakeCallable is a callable tool with a canned result.
type fakeCallable struct {
	decl    *tool.Declaration
	result  any
	err     error
	gotArgs []byte
}

func (f *fakeCallable) Declaration() *tool.Declaration { return f.decl }

func (f *fakeCallable) Call(_ context.Context, jsonArgs []byte) (any, error) {
	f.gotArgs = jsonArgs
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newFakeCallable(name string, result any) *fakeCallable {
	return &fakeCallable{
		decl:   &tool.Declaration{Name: name, InputSchema: &tool.Schema{Type: "object"}},
		result: result,
	}
}

func baseConversation() []model.Message {
	return []model.Message{
		model.NewSystemMessage(systemPrompt),
		model.NewUserMessage("Search for traces."),
	}
}

func TestRunStepAppendsOnePair(t *testing.T) {
	search := newFakeCallable("search_tempo_traces", `{"traces":[{"traceID":"abc123"}]}`)
	tools := map[string]tool.Tool{"search_tempo_traces": search}
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse(toolCall("call_1", "search_tempo_traces", `{"datasourceUid":"tempo","limit":10}`)),
	}}

	conversation := baseConversation()
	extended, err := runStep(context.Background(), m, conversation, tools, "search_tempo_traces")
	require.NoError(t, err)

	// Exactly one assistant/tool pair appended, reference IDs matching.
	require.Len(t, extended, len(conversation)+2)
	assistantMsg := extended[len(extended)-2]
	toolMsg := extended[len(extended)-1]
	assert.Equal(t, model.RoleAssistant, assistantMsg.Role)
	require.Len(t, assistantMsg.ToolCalls, 1)
	assert.Equal(t, model.RoleTool, toolMsg.Role)
	assert.Equal(t, assistantMsg.ToolCalls[0].ID, toolMsg.ToolID)
	assert.Equal(t, `{"traces":[{"traceID":"abc123"}]}`, toolMsg.Content)

	// The tool sees the model's own arguments, verbatim.
	assert.JSONEq(t, `{"datasourceUid":"tempo","limit":10}`, string(search.gotArgs))

	// The step call is tool-constrained.
	require.Len(t, m.requests, 1)
	assert.Equal(t, model.ToolChoiceRequired, m.requests[0].ToolChoice)
}

func TestRunStepFreeTextFails(t *testing.T) {
	tools := map[string]tool.Tool{"search_tempo_traces": newFakeCallable("search_tempo_traces", "")}
	m := &scriptedModel{responses: []*model.Response{
		textResponse("I cannot search traces right now."),
	}}

	conversation := baseConversation()
	got, err := runStep(context.Background(), m, conversation, tools, "search_tempo_traces")

	var unexpected *UnexpectedResponseError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "I cannot search traces right now.", unexpected.Content)
	// Atomicity: nothing appended on failure.
	assert.Len(t, got, len(conversation))
}

func TestRunStepWrongToolFails(t *testing.T) {
	tools := map[string]tool.Tool{
		"search_tempo_traces": newFakeCallable("search_tempo_traces", ""),
		"get_tempo_trace":     newFakeCallable("get_tempo_trace", ""),
	}
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse(toolCall("call_1", "get_tempo_trace", `{}`)),
	}}

	conversation := baseConversation()
	got, err := runStep(context.Background(), m, conversation, tools, "search_tempo_traces")

	var wrongTool *WrongToolError
	require.ErrorAs(t, err, &wrongTool)
	assert.Equal(t, "search_tempo_traces", wrongTool.Expected)
	require.Len(t, wrongTool.Calls, 1)
	assert.Equal(t, "get_tempo_trace", wrongTool.Calls[0].Function.Name)
	assert.Len(t, got, len(conversation))
}

func TestRunStepMultipleToolCallsFail(t *testing.T) {
	tools := map[string]tool.Tool{"search_tempo_traces": newFakeCallable("search_tempo_traces", "")}
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse(
			toolCall("call_1", "search_tempo_traces", `{}`),
			toolCall("call_2", "search_tempo_traces", `{}`),
		),
	}}

	_, err := runStep(context.Background(), m, baseConversation(), tools, "search_tempo_traces")

	var wrongTool *WrongToolError
	require.ErrorAs(t, err, &wrongTool)
	assert.Len(t, wrongTool.Calls, 2)
}

func TestRunStepProviderErrorPropagates(t *testing.T) {
	failing := newFakeCallable("search_tempo_traces", "")
	failing.err = errors.New("connection refused")
	tools := map[string]tool.Tool{"search_tempo_traces": failing}
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse(toolCall("call_1", "search_tempo_traces", `{}`)),
	}}

	conversation := baseConversation()
	got, err := runStep(context.Background(), m, conversation, tools, "search_tempo_traces")
	require.ErrorContains(t, err, "connection refused")
	assert.Len(t, got, len(conversation))
}

func TestRunStepModelErrorPropagates(t *testing.T) {
	tools := map[string]tool.Tool{"search_tempo_traces": newFakeCallable("search_tempo_traces", "")}
	m := &scriptedModel{err: errors.New("backend unavailable")}

	conversation := baseConversation()
	got, err := runStep(context.Background(), m, conversation, tools, "search_tempo_traces")
	require.ErrorContains(t, err, "backend unavailable")
	assert.Len(t, got, len(conversation))
}

func TestSerializeResult(t *testing.T) {
	t.Run("string passes through", func(t *testing.T) {
		got, err := serializeResult(`{"already":"json"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"already":"json"}`, got)
	})

	t.Run("structured result is encoded", func(t *testing.T) {
		got, err := serializeResult(map[string]any{"traces": []any{}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"traces":[]}`, got)
	})
}
