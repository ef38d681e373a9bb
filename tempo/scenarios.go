//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package tempo defines the evaluation scenarios for the Tempo tracing
// tools.
package tempo

import (
	"github.com/tidwall/gjson"

	"trpc.group/trpc-go/tempoeval/eval"
)

// Scenarios returns the three canonical Tempo scenarios: trace search, tag
// exploration and trace analysis. Each call returns a fresh slice so
// concurrent runs never share scenario state.
func Scenarios() []eval.Scenario {
	return []eval.Scenario{
		{
			Name: "tempo_search_traces",
			Prompt: "Can you search for recent traces in Tempo and show me what services " +
				"are generating traces? Please limit to 10 traces.",
			Rubric: "Does the response contain specific information about traces found in Tempo? " +
				"It should mention trace IDs, service names, durations, or other trace metadata.",
			Steps: []eval.Step{
				{
					Tool: "search_tempo_traces",
					Args: map[string]any{"datasourceUid": "tempo", "limit": 10},
				},
			},
		},
		{
			Name: "tempo_tag_exploration",
			Prompt: "What tags are available in Tempo for searching traces? " +
				"Can you also show me some values for the service.name tag?",
			Rubric: "Does the response contain information about available tags in Tempo " +
				"and specific values for the service.name tag? It should list various " +
				"tag names and show actual service names found in the traces.",
			Steps: []eval.Step{
				{
					Tool: "list_tempo_tag_names",
					Args: map[string]any{"datasourceUid": "tempo"},
				},
				{
					Tool: "list_tempo_tag_values",
					Args: map[string]any{"datasourceUid": "tempo", "tagName": "service.name"},
				},
			},
		},
		{
			Name:   "tempo_trace_analysis",
			Prompt: "Can you find a trace with a duration longer than 10ms and analyze its structure?",
			Rubric: "Does the response contain an analysis of a specific trace? " +
				"It should mention the trace ID, duration, service names involved, " +
				"and potentially information about spans within the trace.",
			Steps: []eval.Step{
				{
					Tool: "search_tempo_traces",
					Args: map[string]any{"datasourceUid": "tempo", "minDuration": "10ms", "limit": 1},
				},
				{
					// Only runs when the search matched at least one trace.
					Tool: "get_tempo_trace",
					Seed: func(prev gjson.Result) (map[string]any, bool) {
						traceID := prev.Get("traces.0.traceID")
						if !traceID.Exists() {
							return nil, false
						}
						return map[string]any{"datasourceUid": "tempo", "traceId": traceID.String()}, true
					},
				},
			},
		},
	}
}
