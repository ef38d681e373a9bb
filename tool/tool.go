//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package tool provides tool interfaces and declarations for the eval harness.
package tool

import "context"

// Tool represents a named, schema-described operation exposed by an
// external capability provider.
type Tool interface {
	// Declaration returns the declaration of the tool.
	Declaration() *Declaration
}

// CallableTool is a tool that can be executed with JSON-encoded arguments.
type CallableTool interface {
	Tool

	// Call executes the tool with the given JSON arguments and returns the
	// result, either a string or a JSON-serializable value.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// Declaration describes a tool: its name, description and schemas.
type Declaration struct {
	// Name is the name of the tool, unique within a catalog.
	Name string `json:"name"`
	// Description describes what the tool does.
	Description string `json:"description"`
	// InputSchema is the JSON schema of the tool arguments.
	InputSchema *Schema `json:"input_schema,omitempty"`
	// OutputSchema is the JSON schema of the tool result, if declared.
	OutputSchema *Schema `json:"output_schema,omitempty"`
}

// Schema is the canonical in-memory representation of a JSON schema.
// Provider descriptors are converted into it exactly once at the catalog
// boundary; downstream code never re-parses raw schema JSON.
type Schema struct {
	// Type is the JSON schema type, e.g. "object", "string", "number".
	Type string `json:"type,omitempty"`
	// Description describes the schema node.
	Description string `json:"description,omitempty"`
	// Properties holds the object properties.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Required lists the required property names.
	Required []string `json:"required,omitempty"`
	// Items is the schema of array items.
	Items *Schema `json:"items,omitempty"`
	// Enum lists the allowed values.
	Enum []any `json:"enum,omitempty"`
	// Default is the default value.
	Default any `json:"default,omitempty"`
	// AdditionalProperties carries the additionalProperties schema node as-is.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}
