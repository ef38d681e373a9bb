//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package mcp exposes the tools of an MCP server as a tool.ToolSet.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"trpc.group/trpc-go/tempoeval/log"
	"trpc.group/trpc-go/tempoeval/tool"
)

// ToolSet implements the tool.ToolSet interface for MCP tools.
type ToolSet struct {
	config  toolSetConfig
	session *sessionManager
}

// NewToolSet creates a new MCP tool set with the given configuration.
func NewToolSet(config ConnectionConfig, opts ...Option) *ToolSet {
	cfg := toolSetConfig{
		connectionConfig: config,
		name:             "mcp",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.connectionConfig.ClientInfo.Name == "" {
		cfg.connectionConfig.ClientInfo = defaultClientInfo
	}
	return &ToolSet{
		config:  cfg,
		session: newSessionManager(cfg.connectionConfig),
	}
}

// Tools implements the tool.ToolSet interface. The catalog is fetched fresh
// on every call; callers that need a stable view fetch once and hold the
// slice. Repeated fetches yield structurally identical declarations.
func (ts *ToolSet) Tools(ctx context.Context) ([]tool.Tool, error) {
	if !ts.session.isConnected() {
		if err := ts.session.connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to MCP server: %w", err)
		}
	}

	mcpTools, err := ts.session.listTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools from MCP server: %w", err)
	}
	log.Debugf("listed %d tools from MCP server", len(mcpTools))

	tools := make([]tool.Tool, 0, len(mcpTools))
	for _, t := range mcpTools {
		decl, err := convertDeclaration(t)
		if err != nil {
			// An unrepresentable descriptor schema is fatal, not masked.
			return nil, err
		}
		tools = append(tools, &mcpTool{decl: decl, session: ts.session})
	}

	if ts.config.toolFilter != nil {
		tools = tool.FilterTools(tools, ts.config.toolFilter)
	}
	return tools, nil
}

// Close implements the tool.ToolSet interface.
func (ts *ToolSet) Close() error {
	return ts.session.close()
}

// Name implements the tool.ToolSet interface.
func (ts *ToolSet) Name() string {
	return ts.config.name
}

// mcpTool adapts one MCP tool descriptor to the tool.CallableTool interface.
type mcpTool struct {
	decl    *tool.Declaration
	session *sessionManager
}

// Declaration implements the tool.Tool interface.
func (t *mcpTool) Declaration() *tool.Declaration {
	return t.decl
}

// Call implements the tool.CallableTool interface. The JSON arguments are
// forwarded to the provider as-is; argument validation is the provider's
// concern.
func (t *mcpTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	args, err := decodeArguments(jsonArgs)
	if err != nil {
		return nil, &ProviderError{ToolName: t.decl.Name, Err: err}
	}
	content, err := t.session.callTool(ctx, t.decl.Name, args)
	if err != nil {
		return nil, &ProviderError{ToolName: t.decl.Name, Err: err}
	}
	return contentToResult(content), nil
}

// sessionManager manages the MCP client connection and session.
type sessionManager struct {
	config      ConnectionConfig
	mu          sync.RWMutex
	client      mcp.Connector
	connected   bool
	initialized bool
}

// newSessionManager creates a new MCP session manager.
func newSessionManager(config ConnectionConfig) *sessionManager {
	return &sessionManager{config: config}
}

// connect establishes the connection to the MCP server and initializes the
// session.
func (m *sessionManager) connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	log.Infof("connecting to MCP server, transport=%s", m.config.Transport)
	client, err := m.createClient()
	if err != nil {
		return fmt.Errorf("create MCP client: %w", err)
	}

	initResp, err := client.Initialize(ctx, &mcp.InitializeRequest{})
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("close client after failed initialization: %v", closeErr)
		}
		return fmt.Errorf("initialize MCP session: %w", err)
	}
	log.Infof("MCP session initialized, server=%s version=%s",
		initResp.ServerInfo.Name, initResp.ServerInfo.Version)

	m.client = client
	m.connected = true
	m.initialized = true
	return nil
}

// createClient creates the appropriate MCP client for the configured transport.
func (m *sessionManager) createClient() (mcp.Connector, error) {
	clientInfo := m.config.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}

	switch transport(m.config.Transport) {
	case transportStdio:
		config := mcp.StdioTransportConfig{
			ServerParams: mcp.StdioServerParameters{
				Command: m.config.Command,
				Args:    m.config.Args,
			},
			Timeout: m.config.Timeout,
		}
		return mcp.NewStdioClient(config, clientInfo)

	case transportStreamable:
		var options []mcp.ClientOption
		if len(m.config.Headers) > 0 {
			headers := http.Header{}
			for k, v := range m.config.Headers {
				headers.Set(k, v)
			}
			options = append(options, mcp.WithHTTPHeaders(headers))
		}
		return mcp.NewClient(m.config.ServerURL, clientInfo, options...)

	default:
		return nil, fmt.Errorf("unsupported transport: %s", m.config.Transport)
	}
}

// listTools retrieves the list of available tools from the MCP server.
func (m *sessionManager) listTools(ctx context.Context) ([]mcp.Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || !m.initialized {
		return nil, fmt.Errorf("MCP session not connected or initialized")
	}

	listResp, err := m.client.ListTools(ctx, &mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	return listResp.Tools, nil
}

// callTool executes a tool call on the MCP server.
func (m *sessionManager) callTool(ctx context.Context, name string, arguments map[string]any) ([]mcp.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || !m.initialized {
		return nil, fmt.Errorf("MCP session not connected or initialized")
	}

	log.Debugf("calling tool %s", name)
	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = arguments

	callResp, err := m.client.CallTool(ctx, callReq)
	if err != nil {
		return nil, err
	}
	if callResp.IsError {
		return nil, fmt.Errorf("tool returned error: %s", extractErrorText(callResp.Content))
	}
	return callResp.Content, nil
}

// close closes the MCP session and client connection.
func (m *sessionManager) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.client == nil {
		return nil
	}

	err := m.client.Close()
	m.connected = false
	m.initialized = false
	m.client = nil
	if err != nil {
		return fmt.Errorf("close MCP client: %w", err)
	}
	return nil
}

// isConnected returns whether the session is connected and initialized.
func (m *sessionManager) isConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected && m.initialized
}

// extractErrorText extracts error information from MCP content.
func extractErrorText(contents []mcp.Content) string {
	for _, content := range contents {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
	}
	return "unknown error"
}
