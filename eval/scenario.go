//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package eval drives multi-step tool-calling scenarios against an MCP tool
// provider and judges the final answer with a secondary model call.
package eval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"trpc.group/trpc-go/tempoeval/log"
	"trpc.group/trpc-go/tempoeval/model"
	"trpc.group/trpc-go/tempoeval/tool"
)

// systemPrompt opens every scenario conversation.
const systemPrompt = "You are a helpful assistant."

// Step is one forced tool invocation within a scenario.
type Step struct {
	// Tool is the name the model must call on this turn.
	Tool string
	// Args are seed arguments. They prime the scenario prompt and are
	// never substituted for what the model actually emits.
	Args map[string]any
	// Seed, when set, derives this step's seed arguments from the previous
	// step's tool result. Returning false skips this and all remaining
	// steps; the scenario proceeds straight to the final answer.
	Seed func(prev gjson.Result) (map[string]any, bool)
}

// Scenario is one complete tool-orchestration-and-judgment case.
type Scenario struct {
	Name   string
	Prompt string
	Rubric string
	Steps  []Step
}

// Result is the terminal outcome of one scenario run.
type Result struct {
	// ID uniquely identifies the run.
	ID string
	// Scenario is the scenario name.
	Scenario string
	// Model is the evaluated model name.
	Model string
	// Passed reports whether the run reached a positive judge verdict.
	Passed bool
	// Rationale is the judge's reasoning, empty when Err is set.
	Rationale string
	// FinalAnswer is the model's final natural-language answer.
	FinalAnswer string
	// Err is the step or infrastructure error that aborted the run, if any.
	Err error
}

// Run executes one scenario against the given model: it fetches the tool
// catalog, drives the steps in order, issues the final unconstrained model
// call and judges the answer. Any step error short-circuits to a failed
// result with the error recorded. The run owns its conversation; nothing is
// shared with concurrent runs.
func Run(ctx context.Context, m model.Model, judge *Judge, toolSet tool.ToolSet, scenario Scenario) *Result {
	result := &Result{
		ID:       uuid.NewString(),
		Scenario: scenario.Name,
		Model:    m.Info().Name,
	}
	log.Infof("run %s: scenario=%s model=%s", result.ID, scenario.Name, result.Model)

	tools, err := fetchTools(ctx, toolSet)
	if err != nil {
		result.Err = err
		return result
	}

	conversation := []model.Message{
		model.NewSystemMessage(systemPrompt),
		model.NewUserMessage(scenario.Prompt),
	}
	for i, step := range scenario.Steps {
		if step.Seed != nil {
			prev := lastToolResult(conversation)
			args, ok := step.Seed(gjson.Parse(prev))
			if !ok {
				log.Infof("run %s: precondition for step %d (%s) absent, skipping to final answer",
					result.ID, i+1, step.Tool)
				break
			}
			log.Debugf("run %s: step %d seeded with %v", result.ID, i+1, args)
		}
		conversation, err = runStep(ctx, m, conversation, tools, step.Tool)
		if err != nil {
			result.Err = fmt.Errorf("step %d (%s): %w", i+1, step.Tool, err)
			return result
		}
	}

	answer, err := finalAnswer(ctx, m, conversation, tools)
	if err != nil {
		result.Err = err
		return result
	}
	result.FinalAnswer = answer

	verdict, err := judge.Evaluate(ctx, scenario.Prompt, answer, scenario.Rubric)
	if err != nil {
		result.Err = err
		return result
	}
	result.Passed = verdict.Passed
	result.Rationale = verdict.Rationale
	log.Infof("run %s: passed=%v", result.ID, result.Passed)
	return result
}

// fetchTools lists the catalog once per run and indexes it by name.
func fetchTools(ctx context.Context, toolSet tool.ToolSet) (map[string]tool.Tool, error) {
	listed, err := toolSet.Tools(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tool catalog: %w", err)
	}
	tools := make(map[string]tool.Tool, len(listed))
	for _, t := range listed {
		tools[t.Declaration().Name] = t
	}
	return tools, nil
}

// finalAnswer issues the one unconstrained model call that produces the
// natural-language answer. Tools stay exposed but no call is required.
func finalAnswer(ctx context.Context, m model.Model, conversation []model.Message, tools map[string]tool.Tool) (string, error) {
	spanCtx, span := tracer.Start(ctx, "call_model")
	rsp, err := m.GenerateContent(spanCtx, &model.Request{
		Messages: conversation,
		Tools:    tools,
	})
	span.End()
	if err != nil {
		return "", fmt.Errorf("final answer call: %w", err)
	}
	return rsp.Content(), nil
}

// lastToolResult returns the content of the most recent tool message.
func lastToolResult(conversation []model.Message) string {
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == model.RoleTool {
			return conversation[i].Content
		}
	}
	return ""
}
