//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"trpc.group/trpc-go/tempoeval/tool"
)

// convertDeclaration converts an MCP tool descriptor to a tool.Declaration.
// A descriptor whose input schema is not representable as a JSON schema
// object yields an AdapterError.
func convertDeclaration(t mcp.Tool) (*tool.Declaration, error) {
	schema, err := convertSchema(t.InputSchema)
	if err != nil {
		return nil, &AdapterError{ToolName: t.Name, Err: err}
	}
	return &tool.Declaration{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}, nil
}

// convertSchema converts a provider schema value into the canonical
// tool.Schema. The value is round-tripped through JSON exactly once.
func convertSchema(raw any) (*tool.Schema, error) {
	schemaBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	// A missing schema means "no arguments", which is a valid empty object.
	if bytes.Equal(bytes.TrimSpace(schemaBytes), []byte("null")) {
		return &tool.Schema{Type: "object"}, nil
	}
	if trimmed := bytes.TrimSpace(schemaBytes); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("schema is not a JSON object: %s", schemaBytes)
	}

	var schema tool.Schema
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return &schema, nil
}

// decodeArguments decodes the model-emitted JSON arguments into the map
// shape the MCP call expects. Empty arguments become an empty object.
func decodeArguments(jsonArgs []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(jsonArgs)) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(jsonArgs, &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}

// contentToResult converts MCP result content to a value suitable for
// folding back into the conversation: a single text block becomes a string,
// anything else is returned as generic JSON-serializable data.
func contentToResult(content []mcp.Content) any {
	if len(content) == 0 {
		return ""
	}
	if len(content) == 1 {
		return convertContent(content[0])
	}
	results := make([]any, len(content))
	for i, item := range content {
		results[i] = convertContent(item)
	}
	return results
}

// convertContent converts a single MCP content item.
func convertContent(content mcp.Content) any {
	switch c := content.(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		// Fallback: round-trip the content through JSON.
		contentBytes, err := json.Marshal(content)
		if err != nil {
			return fmt.Sprintf("unrepresentable content: %v", err)
		}
		var result any
		if err := json.Unmarshal(contentBytes, &result); err != nil {
			return string(contentBytes)
		}
		return result
	}
}
