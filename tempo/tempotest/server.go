//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package tempotest provides an in-process MCP server that mimics the
// Grafana Tempo tracing tools over canned data. It backs the end-to-end
// tests and the runner's self-test mode.
package tempotest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

const (
	// defaultTraceLimit is the number of traces returned when no limit is given.
	defaultTraceLimit = 20
	// maxTraceLimit caps the number of traces a single search can request.
	maxTraceLimit = 100
)

// traceResult mirrors the shape of one Tempo search result.
type traceResult struct {
	TraceID           string `json:"traceID"`
	RootServiceName   string `json:"rootServiceName"`
	RootTraceName     string `json:"rootTraceName"`
	StartTimeUnixNano string `json:"startTimeUnixNano"`
	DurationMs        int    `json:"durationMs"`
}

// searchResponse mirrors the shape of the Tempo search endpoint response.
type searchResponse struct {
	Traces []traceResult `json:"traces"`
}

// tagValuesResponse mirrors the shape of the Tempo tag values response.
type tagValuesResponse struct {
	TagValues []string `json:"tagValues"`
}

// span is one node of a canned trace structure.
type span struct {
	SpanID      string `json:"spanID"`
	Name        string `json:"name"`
	ServiceName string `json:"serviceName"`
	DurationMs  int    `json:"durationMs"`
}

// cannedTraces is the fixed data set the server serves. Durations are spread
// so minDuration filters have observable effect.
var cannedTraces = []traceResult{
	{
		TraceID:           "2f3e0cee77ae5dc9c17ade3689eb2e54",
		RootServiceName:   "checkout",
		RootTraceName:     "HTTP POST /api/checkout",
		StartTimeUnixNano: "1756600000000000000",
		DurationMs:        1230,
	},
	{
		TraceID:           "6a2e9f4c81d04b7e9f31c5a67d8e0b12",
		RootServiceName:   "payments",
		RootTraceName:     "HTTP POST /api/charge",
		StartTimeUnixNano: "1756600003000000000",
		DurationMs:        452,
	},
	{
		TraceID:           "9c1d47aa03f64d2c8be2706c54f1e388",
		RootServiceName:   "cart",
		RootTraceName:     "HTTP GET /api/cart",
		StartTimeUnixNano: "1756600007000000000",
		DurationMs:        8,
	},
}

// cannedSpans holds the per-trace span structure for get_tempo_trace.
var cannedSpans = map[string][]span{
	"2f3e0cee77ae5dc9c17ade3689eb2e54": {
		{SpanID: "a1", Name: "HTTP POST /api/checkout", ServiceName: "checkout", DurationMs: 1230},
		{SpanID: "a2", Name: "charge card", ServiceName: "payments", DurationMs: 970},
		{SpanID: "a3", Name: "reserve stock", ServiceName: "inventory", DurationMs: 180},
	},
	"6a2e9f4c81d04b7e9f31c5a67d8e0b12": {
		{SpanID: "b1", Name: "HTTP POST /api/charge", ServiceName: "payments", DurationMs: 452},
		{SpanID: "b2", Name: "provider call", ServiceName: "payments", DurationMs: 401},
	},
	"9c1d47aa03f64d2c8be2706c54f1e388": {
		{SpanID: "c1", Name: "HTTP GET /api/cart", ServiceName: "cart", DurationMs: 8},
	},
}

// cannedTags holds tag names per scope, mirroring the scoped response shape
// of the Tempo tags endpoint before flattening.
var cannedTags = map[string][]string{
	"resource":  {"service.name", "cluster", "k8s.namespace.name"},
	"span":      {"http.method", "http.status_code", "db.system"},
	"intrinsic": {"duration", "name", "status"},
}

// cannedTagValues holds values for the tags the scenarios look at.
var cannedTagValues = map[string][]string{
	"service.name":     {"checkout", "payments", "cart", "inventory"},
	"http.method":      {"GET", "POST"},
	"http.status_code": {"200", "500"},
}

// NewServer builds the fake Tempo MCP server with all four tracing tools
// registered. Mount HTTPHandler on an HTTP server to expose it; the MCP
// endpoint is served under /mcp.
func NewServer() *mcp.Server {
	server := mcp.NewServer("tempo-mcp", "1.0.0")

	searchTool := mcp.NewTool("search_tempo_traces",
		mcp.WithDescription("Search for traces in Tempo using TraceQL queries or tags. "+
			"Returns a list of matching traces with metadata like trace ID, service name, "+
			"duration, and start time. Supports filtering by duration and time range."),
		mcp.WithString("datasourceUid", mcp.Description("The UID of the datasource to query"), mcp.Required()),
		mcp.WithString("query", mcp.Description("The TraceQL query to execute")),
		mcp.WithString("minDuration", mcp.Description("Minimum duration of traces (e.g. '100ms', '1s')")),
		mcp.WithString("maxDuration", mcp.Description("Maximum duration of traces (e.g. '100ms', '1s')")),
		mcp.WithNumber("limit", mcp.Description("The maximum number of traces to return (default: 20, max: 100)")),
	)
	server.RegisterTool(searchTool, handleSearchTraces)

	getTraceTool := mcp.NewTool("get_tempo_trace",
		mcp.WithDescription("Retrieve a specific trace from Tempo by its trace ID. "+
			"Returns the complete trace data including all spans, their relationships, "+
			"attributes, and timing information."),
		mcp.WithString("datasourceUid", mcp.Description("The UID of the datasource to query"), mcp.Required()),
		mcp.WithString("traceId", mcp.Description("The trace ID to retrieve"), mcp.Required()),
	)
	server.RegisterTool(getTraceTool, handleGetTrace)

	tagNamesTool := mcp.NewTool("list_tempo_tag_names",
		mcp.WithDescription("List all available tag names in Tempo. Can be filtered by scope "+
			"(intrinsic, span, resource). Returns a list of tag names that can be used for "+
			"searching traces."),
		mcp.WithString("datasourceUid", mcp.Description("The UID of the datasource to query"), mcp.Required()),
		mcp.WithString("scope", mcp.Description("The scope of tags to retrieve"),
			mcp.Enum("intrinsic", "span", "resource")),
	)
	server.RegisterTool(tagNamesTool, handleListTagNames)

	tagValuesTool := mcp.NewTool("list_tempo_tag_values",
		mcp.WithDescription("List all values for a specific tag name in Tempo. Useful for "+
			"discovering what values are available for filtering traces."),
		mcp.WithString("datasourceUid", mcp.Description("The UID of the datasource to query"), mcp.Required()),
		mcp.WithString("tagName", mcp.Description("The tag name to get values for"), mcp.Required()),
	)
	server.RegisterTool(tagValuesTool, handleListTagValues)

	return server
}

// handleSearchTraces filters the canned traces by duration and limit.
func handleSearchTraces(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := req.Params.Arguments["datasourceUid"].(string); !ok {
		return mcp.NewErrorResult("datasourceUid parameter is required and must be a string"), nil
	}

	minDuration, err := durationArg(req, "minDuration")
	if err != nil {
		return mcp.NewErrorResult(err.Error()), nil
	}
	maxDuration, err := durationArg(req, "maxDuration")
	if err != nil {
		return mcp.NewErrorResult(err.Error()), nil
	}

	limit := defaultTraceLimit
	if raw, ok := req.Params.Arguments["limit"].(float64); ok && int(raw) > 0 {
		limit = int(raw)
	}
	if limit > maxTraceLimit {
		limit = maxTraceLimit
	}

	matched := make([]traceResult, 0, len(cannedTraces))
	for _, trace := range cannedTraces {
		duration := time.Duration(trace.DurationMs) * time.Millisecond
		if minDuration > 0 && duration < minDuration {
			continue
		}
		if maxDuration > 0 && duration > maxDuration {
			continue
		}
		matched = append(matched, trace)
		if len(matched) == limit {
			break
		}
	}
	return jsonResult(searchResponse{Traces: matched})
}

// handleGetTrace serves the full span structure of one canned trace.
func handleGetTrace(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	traceID, ok := req.Params.Arguments["traceId"].(string)
	if !ok || traceID == "" {
		return mcp.NewErrorResult("traceId parameter is required and must be a string"), nil
	}

	spans, ok := cannedSpans[traceID]
	if !ok {
		return mcp.NewErrorResult(fmt.Sprintf("trace %s not found", traceID)), nil
	}
	for _, trace := range cannedTraces {
		if trace.TraceID == traceID {
			return jsonResult(map[string]any{
				"traceID":         trace.TraceID,
				"rootServiceName": trace.RootServiceName,
				"rootTraceName":   trace.RootTraceName,
				"durationMs":      trace.DurationMs,
				"spans":           spans,
			})
		}
	}
	return mcp.NewErrorResult(fmt.Sprintf("trace %s not found", traceID)), nil
}

// handleListTagNames flattens the scoped tag sets into one sorted list.
func handleListTagNames(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, _ := req.Params.Arguments["scope"].(string)

	tagSet := make(map[string]bool)
	for name, tags := range cannedTags {
		if scope != "" && scope != name {
			continue
		}
		for _, tag := range tags {
			tagSet[tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return jsonResult(tags)
}

// handleListTagValues serves the canned values of one tag. Unknown tags
// yield an empty list, matching the behavior of the real endpoint.
func handleListTagValues(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tagName, ok := req.Params.Arguments["tagName"].(string)
	if !ok || tagName == "" {
		return mcp.NewErrorResult("tagName parameter is required and must be a string"), nil
	}
	values := cannedTagValues[tagName]
	if values == nil {
		values = []string{}
	}
	return jsonResult(tagValuesResponse{TagValues: values})
}

// durationArg parses an optional duration string argument.
func durationArg(req *mcp.CallToolRequest, name string) (time.Duration, error) {
	raw, ok := req.Params.Arguments[name].(string)
	if !ok || raw == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return duration, nil
}

// jsonResult encodes a value as a single text content block.
func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewTextResult(string(data)), nil
}
