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
	"os"
	"strconv"
	"strings"
)

// Default configuration values, overridable via the environment.
const (
	defaultJudgeModel  = "gpt-4o"
	defaultServerURL   = "http://localhost:3000/mcp"
	defaultMaxAttempts = 3
)

// Config carries the runner configuration. Model identifiers are an
// explicit value passed into the entry point, never a package constant.
type Config struct {
	// EvalModels are the model identifiers under evaluation.
	EvalModels []string
	// JudgeModel is the model identifier used for judging.
	JudgeModel string
	// ServerURL is the MCP endpoint exposing the tracing tools.
	ServerURL string
	// MaxAttempts bounds whole-scenario retries.
	MaxAttempts int
}

// LoadConfig reads the configuration from the environment:
// EVAL_MODELS (comma separated), JUDGE_MODEL, MCP_SERVER_URL and
// EVAL_MAX_ATTEMPTS. Unset values fall back to defaults.
func LoadConfig() Config {
	cfg := Config{
		EvalModels:  []string{defaultJudgeModel},
		JudgeModel:  defaultJudgeModel,
		ServerURL:   defaultServerURL,
		MaxAttempts: defaultMaxAttempts,
	}
	if val, ok := os.LookupEnv("EVAL_MODELS"); ok {
		if models := splitModels(val); len(models) > 0 {
			cfg.EvalModels = models
		}
	}
	if val, ok := os.LookupEnv("JUDGE_MODEL"); ok && val != "" {
		cfg.JudgeModel = val
	}
	if val, ok := os.LookupEnv("MCP_SERVER_URL"); ok && val != "" {
		cfg.ServerURL = val
	}
	if val, ok := os.LookupEnv("EVAL_MAX_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	return cfg
}

// splitModels splits a comma separated model list, dropping empty entries.
func splitModels(val string) []string {
	var models []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return models
}
