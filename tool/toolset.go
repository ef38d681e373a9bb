//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package tool

import "context"

// ToolSet defines an interface for managing a set of tools.
// It provides methods to retrieve the current tools and to perform cleanup.
type ToolSet interface {
	// Tools returns the Tool instances available in the set. Fetching twice
	// yields structurally identical declarations.
	Tools(ctx context.Context) ([]Tool, error)

	// Close releases any resources held by the ToolSet.
	Close() error

	// Name returns the name of the ToolSet for identification.
	Name() string
}

// Filter defines a filter function for tools based on their names.
type Filter func(string) bool

// FilterTools returns the subset of tools whose names pass the filter.
func FilterTools(tools []Tool, filter Filter) []Tool {
	if filter == nil {
		return tools
	}
	var result []Tool
	for _, t := range tools {
		if filter(t.Declaration().Name) {
			result = append(result, t)
		}
	}
	return result
}

// IncludeNames creates a Filter that includes only the specified tool names.
func IncludeNames(names ...string) Filter {
	allowed := make(map[string]bool)
	for _, name := range names {
		allowed[name] = true
	}
	return func(name string) bool {
		return allowed[name]
	}
}

// ExcludeNames creates a Filter that excludes the specified tool names.
func ExcludeNames(names ...string) Filter {
	excluded := make(map[string]bool)
	for _, name := range names {
		excluded[name] = true
	}
	return func(name string) bool {
		return !excluded[name]
	}
}
