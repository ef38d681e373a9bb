//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

// Package model provides the chat data model and the interface for language models.
package model

import "context"

// Model is the interface for all language models.
type Model interface {
	// GenerateContent performs one completion call and returns the final response.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info describes a model instance.
type Info struct {
	// Name is the model identifier, e.g. "gpt-4o".
	Name string
}
