//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package tempo

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/tempoeval/eval"
	"trpc.group/trpc-go/tempoeval/model"
	"trpc.group/trpc-go/tempoeval/tempo/tempotest"
	mcptool "trpc.group/trpc-go/tempoeval/tool/mcp"
)

// scriptedModel replays a fixed sequence of responses.
type scriptedModel struct {
	responses []*model.Response
	calls     int
}

func (m *scriptedModel) GenerateContent(_ context.Context, _ *model.Request) (*model.Response, error) {
	m.calls++
	if m.calls > len(m.responses) {
		return nil, fmt.Errorf("no scripted response for call %d", m.calls)
	}
	return m.responses[m.calls-1], nil
}

func (m *scriptedModel) Info() model.Info { return model.Info{Name: "scripted"} }

func toolCallResponse(id, name, args string) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{
				Role: model.RoleAssistant,
				ToolCalls: []model.ToolCall{{
					ID:   id,
					Type: "function",
					Function: model.FunctionDefinitionParam{
						Name:      name,
						Arguments: []byte(args),
					},
				}},
			},
		}},
	}
}

func textResponse(content string) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{Role: model.RoleAssistant, Content: content},
		}},
	}
}

// newTempoToolSet serves the fake Tempo MCP server and connects a toolset.
func newTempoToolSet(t *testing.T) *mcptool.ToolSet {
	t.Helper()
	httpServer := httptest.NewServer(tempotest.NewServer().HTTPHandler())
	t.Cleanup(httpServer.Close)

	toolSet := mcptool.NewToolSet(mcptool.ConnectionConfig{
		Transport: "streamable",
		ServerURL: httpServer.URL + "/mcp",
	})
	t.Cleanup(func() { _ = toolSet.Close() })
	return toolSet
}

func passingJudge() *eval.Judge {
	return eval.NewJudge(&scriptedModel{responses: []*model.Response{
		textResponse(`{"reasoning": ["answer covers the rubric"], "passed": [true]}`),
	}})
}

func scenarioByName(t *testing.T, name string) eval.Scenario {
	t.Helper()
	for _, scenario := range Scenarios() {
		if scenario.Name == name {
			return scenario
		}
	}
	t.Fatalf("unknown scenario %s", name)
	return eval.Scenario{}
}

func TestScenarioDefinitions(t *testing.T) {
	scenarios := Scenarios()
	require.Len(t, scenarios, 3)
	for _, scenario := range scenarios {
		assert.NotEmpty(t, scenario.Name)
		assert.NotEmpty(t, scenario.Prompt)
		assert.NotEmpty(t, scenario.Rubric)
		assert.NotEmpty(t, scenario.Steps)
	}
	assert.Equal(t, "search_tempo_traces", scenarios[0].Steps[0].Tool)
	assert.Equal(t, "list_tempo_tag_names", scenarios[1].Steps[0].Tool)
	assert.Equal(t, "list_tempo_tag_values", scenarios[1].Steps[1].Tool)
	assert.NotNil(t, scenarios[2].Steps[1].Seed)
}

func TestSearchTracesScenario(t *testing.T) {
	toolSet := newTempoToolSet(t)
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse("call_1", "search_tempo_traces", `{"datasourceUid":"tempo","limit":10}`),
		textResponse("Traces come from checkout (1230ms), payments (452ms) and cart (8ms); " +
			"the slowest is trace 2f3e0cee77ae5dc9c17ade3689eb2e54."),
	}}

	result := eval.Run(context.Background(), m, passingJudge(), toolSet,
		scenarioByName(t, "tempo_search_traces"))

	require.NoError(t, result.Err)
	assert.True(t, result.Passed)
	assert.Contains(t, result.FinalAnswer, "checkout")
}

func TestTagExplorationScenario(t *testing.T) {
	toolSet := newTempoToolSet(t)
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse("call_1", "list_tempo_tag_names", `{"datasourceUid":"tempo"}`),
		toolCallResponse("call_2", "list_tempo_tag_values", `{"datasourceUid":"tempo","tagName":"service.name"}`),
		textResponse("Available tags include service.name, cluster and http.method; " +
			"service.name values are checkout, payments, cart and inventory."),
	}}

	result := eval.Run(context.Background(), m, passingJudge(), toolSet,
		scenarioByName(t, "tempo_tag_exploration"))

	require.NoError(t, result.Err)
	assert.True(t, result.Passed)
}

func TestTraceAnalysisScenario(t *testing.T) {
	toolSet := newTempoToolSet(t)
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse("call_1", "search_tempo_traces", `{"datasourceUid":"tempo","minDuration":"10ms","limit":1}`),
		toolCallResponse("call_2", "get_tempo_trace", `{"datasourceUid":"tempo","traceId":"2f3e0cee77ae5dc9c17ade3689eb2e54"}`),
		textResponse("Trace 2f3e0cee77ae5dc9c17ade3689eb2e54 took 1230ms across checkout, " +
			"payments and inventory; the charge card span dominates at 970ms."),
	}}

	result := eval.Run(context.Background(), m, passingJudge(), toolSet,
		scenarioByName(t, "tempo_trace_analysis"))

	require.NoError(t, result.Err)
	assert.True(t, result.Passed)
}

func TestTraceAnalysisScenarioEmptyBranch(t *testing.T) {
	toolSet := newTempoToolSet(t)
	// The model's filter matches nothing, so the fetch step must be skipped
	// and the scenario still reaches the judge.
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse("call_1", "search_tempo_traces", `{"datasourceUid":"tempo","minDuration":"10s","limit":1}`),
		textResponse("No trace longer than 10s was found, so there is nothing to analyze."),
	}}
	judge := eval.NewJudge(&scriptedModel{responses: []*model.Response{
		textResponse(`{"reasoning": ["no trace analysis is possible"], "passed": [false]}`),
	}})

	result := eval.Run(context.Background(), m, judge, toolSet,
		scenarioByName(t, "tempo_trace_analysis"))

	// A judge fail on the empty branch is an accepted non-pass outcome.
	require.NoError(t, result.Err)
	assert.False(t, result.Passed)
	assert.Equal(t, "no trace analysis is possible", result.Rationale)
	assert.Equal(t, 2, m.calls)
}

func TestWrongToolFailsScenario(t *testing.T) {
	toolSet := newTempoToolSet(t)
	m := &scriptedModel{responses: []*model.Response{
		toolCallResponse("call_1", "get_tempo_trace", `{"datasourceUid":"tempo","traceId":"x"}`),
	}}

	result := eval.Run(context.Background(), m, passingJudge(), toolSet,
		scenarioByName(t, "tempo_search_traces"))

	require.Error(t, result.Err)
	var wrongTool *eval.WrongToolError
	assert.ErrorAs(t, result.Err, &wrongTool)
	assert.False(t, result.Passed)
}
