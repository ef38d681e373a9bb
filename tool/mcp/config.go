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
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"trpc.group/trpc-go/tempoeval/tool"
)

// transport specifies the transport method: "stdio" or "streamable".
type transport string

const (
	// transportStdio is the stdio transport.
	transportStdio transport = "stdio"
	// transportStreamable is the streamable HTTP transport.
	transportStreamable transport = "streamable"
)

// defaultClientInfo identifies this harness to MCP servers.
var defaultClientInfo = mcp.Implementation{
	Name:    "tempoeval",
	Version: "1.0.0",
}

// ConnectionConfig defines the configuration for connecting to an MCP server.
type ConnectionConfig struct {
	// Transport specifies the transport method: "stdio" or "streamable".
	Transport string `json:"transport"`

	// Streamable HTTP configuration.
	ServerURL string            `json:"server_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`

	// STDIO configuration.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`

	// Common configuration.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Advanced configuration.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// toolSetConfig holds the resolved ToolSet configuration.
type toolSetConfig struct {
	connectionConfig ConnectionConfig
	toolFilter       tool.Filter
	name             string
}

// Option configures a ToolSet.
type Option func(*toolSetConfig)

// WithToolFilter restricts the tools exposed by the set to those whose
// names pass the filter.
func WithToolFilter(filter tool.Filter) Option {
	return func(cfg *toolSetConfig) {
		cfg.toolFilter = filter
	}
}

// WithName sets the name of the tool set.
func WithName(name string) Option {
	return func(cfg *toolSetConfig) {
		cfg.name = name
	}
}
