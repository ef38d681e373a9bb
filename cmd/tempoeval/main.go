//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// tempoeval runs the Tempo tool-calling scenarios against one or more
// OpenAI-compatible models and reports pass/fail per model and scenario.
//
// Configuration comes from the environment: EVAL_MODELS (comma separated),
// JUDGE_MODEL, MCP_SERVER_URL, EVAL_MAX_ATTEMPTS, plus OPENAI_API_KEY and
// OPENAI_BASE_URL for the model backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/tempoeval/eval"
	"trpc.group/trpc-go/tempoeval/log"
	"trpc.group/trpc-go/tempoeval/model"
	"trpc.group/trpc-go/tempoeval/model/openai"
	"trpc.group/trpc-go/tempoeval/tempo"
	"trpc.group/trpc-go/tempoeval/tempo/tempotest"
	"trpc.group/trpc-go/tempoeval/tool"
	mcptool "trpc.group/trpc-go/tempoeval/tool/mcp"
)

// runParam carries one model x scenario job through the worker pool.
type runParam struct {
	ctx      context.Context
	model    model.Model
	judge    *eval.Judge
	toolSet  tool.ToolSet
	scenario eval.Scenario
	attempts int
	idx      int
	results  []*eval.Result
	wg       *sync.WaitGroup
}

func main() {
	selfTest := flag.Bool("selftest", false,
		"serve the built-in fake Tempo MCP server and evaluate against it")
	parallelism := flag.Int("parallelism", 4, "maximum concurrent scenario runs")
	flag.Parse()

	cfg := eval.LoadConfig()

	serverURL := cfg.ServerURL
	if *selfTest {
		url, stop, err := startSelfTestServer()
		if err != nil {
			log.Fatalf("start self-test server: %v", err)
		}
		defer stop()
		serverURL = url
		log.Infof("self-test Tempo MCP server listening at %s", serverURL)
	}

	toolSet := mcptool.NewToolSet(mcptool.ConnectionConfig{
		Transport: "streamable",
		ServerURL: serverURL,
	}, mcptool.WithName("tempo"))
	defer func() {
		if err := toolSet.Close(); err != nil {
			log.Errorf("close toolset: %v", err)
		}
	}()

	judge := eval.NewJudge(openai.New(cfg.JudgeModel))
	scenarios := tempo.Scenarios()

	results, err := runAll(context.Background(), cfg, judge, toolSet, scenarios, *parallelism)
	if err != nil {
		log.Fatalf("run scenarios: %v", err)
	}

	failed := 0
	for _, result := range results {
		switch {
		case result.Err != nil:
			failed++
			log.Errorf("FAIL %s/%s: %v", result.Model, result.Scenario, result.Err)
		case !result.Passed:
			failed++
			log.Warnf("FAIL %s/%s: %s", result.Model, result.Scenario, result.Rationale)
		default:
			log.Infof("PASS %s/%s", result.Model, result.Scenario)
		}
	}
	log.Infof("%d/%d runs passed", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

// runAll fans the model x scenario matrix out over a bounded worker pool.
// Every run owns its conversation; the toolset is shared.
func runAll(
	ctx context.Context,
	cfg eval.Config,
	judge *eval.Judge,
	toolSet tool.ToolSet,
	scenarios []eval.Scenario,
	parallelism int,
) ([]*eval.Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	pool, err := ants.NewPoolWithFunc(parallelism, func(args any) {
		param, ok := args.(*runParam)
		if !ok {
			panic("scenario run pool args type error")
		}
		defer param.wg.Done()
		fn := eval.WithRetries(func(ctx context.Context) *eval.Result {
			return eval.Run(ctx, param.model, param.judge, param.toolSet, param.scenario)
		}, param.attempts)
		param.results[param.idx] = fn(param.ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("create scenario run pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	results := make([]*eval.Result, len(cfg.EvalModels)*len(scenarios))
	idx := 0
	for _, name := range cfg.EvalModels {
		m := openai.New(name)
		for _, scenario := range scenarios {
			wg.Add(1)
			param := &runParam{
				ctx:      ctx,
				model:    m,
				judge:    judge,
				toolSet:  toolSet,
				scenario: scenario,
				attempts: cfg.MaxAttempts,
				idx:      idx,
				results:  results,
				wg:       &wg,
			}
			if err := pool.Invoke(param); err != nil {
				wg.Done()
				results[idx] = &eval.Result{
					Scenario: scenario.Name,
					Model:    name,
					Err:      fmt.Errorf("submit run: %w", err),
				}
			}
			idx++
		}
	}
	wg.Wait()
	return results, nil
}

// startSelfTestServer serves the canned Tempo MCP server on a loopback port.
func startSelfTestServer() (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	server := &http.Server{Handler: tempotest.NewServer().HTTPHandler()}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("self-test server: %v", err)
		}
	}()
	stop := func() {
		if err := server.Close(); err != nil {
			log.Errorf("close self-test server: %v", err)
		}
	}
	return fmt.Sprintf("http://%s/mcp", listener.Addr()), stop, nil
}
