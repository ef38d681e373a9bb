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
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"trpc.group/trpc-go/tempoeval/model"
)

var (
	// judgePrompt is the template fed to the judge model.
	judgePrompt = `You are an expert rater for an AI assistant. The assistant was asked to answer a user query by calling tracing tools and summarizing the results. Your task is to decide whether the assistant's final answer satisfies the pass condition below.

You should follow these rules when rating:
- Judge content, not style: allow list vs. sentence formatting, abbreviations, and extra information beyond what the pass condition asks for.
- The answer passes only if every element named in the pass condition is present in some form.
- Do not perform your own calculations or lookups; rate only what the answer states.

Below are the inputs:
{
  "User prompt": {{.Input}},
  "Assistant answer": {{.Output}},
  "Pass condition": {{.Rubric}},
}

The answer should be a json alone which follows the json structure below:
{
  "reasoning": [reasoning],
  "passed": [true or false],
}
Answer with assertiveness:
`
	// judgePromptTemplate renders the judge prompt with data.
	judgePromptTemplate = template.Must(template.New("judgePrompt").Parse(judgePrompt))
	// labelMatchPassedRe extracts the pass label from judge output.
	labelMatchPassedRe = regexp.MustCompile(`"passed"\s*:\s*\[?\s*"?([A-Za-z_]+)"?\s*\]?`)
	// reasoningMatchRe extracts the free-text reasoning from judge output.
	reasoningMatchRe = regexp.MustCompile(`"reasoning"\s*:\s*\[?\s*"?([^"\]]*)"?\s*\]?`)
)

// Verdict is the judge's classification of one final answer.
type Verdict struct {
	Passed    bool
	Rationale string
}

// Judge classifies final answers against a natural-language rubric using a
// secondary model call.
type Judge struct {
	model model.Model
}

// NewJudge builds a judge backed by the given model.
func NewJudge(m model.Model) *Judge {
	return &Judge{model: m}
}

// Evaluate renders the boolean-evaluator prompt, invokes the judge model and
// extracts the verdict. A negative verdict is a normal result, not an error;
// the returned error covers only judge invocation failures.
func (j *Judge) Evaluate(ctx context.Context, input, output, rubric string) (*Verdict, error) {
	data := judgePromptData{Input: input, Output: output, Rubric: rubric}
	var buf bytes.Buffer
	if err := judgePromptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute judge prompt template: %w", err)
	}

	spanCtx, span := tracer.Start(ctx, "judge")
	rsp, err := j.model.GenerateContent(spanCtx, &model.Request{
		Messages: []model.Message{model.NewUserMessage(buf.String())},
	})
	span.End()
	if err != nil {
		return nil, fmt.Errorf("judge model call: %w", err)
	}

	responseText := rsp.Content()
	if responseText == "" {
		return nil, fmt.Errorf("empty judge response")
	}
	return &Verdict{
		Passed:    extractPassed(responseText),
		Rationale: extractRationale(responseText),
	}, nil
}

// judgePromptData feeds values into the judge prompt template.
type judgePromptData struct {
	Input  string // Input is the original user prompt text.
	Output string // Output is the final answer to be judged.
	Rubric string // Rubric is the pass condition for this scenario.
}

// extractPassed extracts the pass label from the judge response. Anything
// that is not an affirmative label counts as a fail.
func extractPassed(response string) bool {
	match := labelMatchPassedRe.FindStringSubmatch(response)
	if len(match) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(match[1]), "true")
}

// extractRationale extracts the reasoning text from the judge response,
// falling back to the raw response when the shape is unexpected.
func extractRationale(response string) string {
	match := reasoningMatchRe.FindStringSubmatch(response)
	if len(match) < 2 || strings.TrimSpace(match[1]) == "" {
		return strings.TrimSpace(response)
	}
	return strings.TrimSpace(match[1])
}
