//
// Tencent is pleased to support the open source community by making tempoeval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// tempoeval is licensed under the Apache License Version 2.0.
//
//

package model

import "time"

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the message content.
	Message Message `json:"message,omitempty"`

	// FinishReason is the reason the choice was finished.
	// "stop", "length", "tool_calls", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// Response is the response from the model.
type Response struct {
	// ID is the provider-assigned response identifier.
	ID string `json:"id,omitempty"`

	// Object is the object type, e.g. "chat.completion".
	Object string `json:"object,omitempty"`

	// Created is the creation time reported by the provider.
	Created int64 `json:"created,omitempty"`

	// Model is the model that produced the response.
	Model string `json:"model,omitempty"`

	// Choices holds the completion choices.
	Choices []Choice `json:"choices,omitempty"`

	// Usage holds token usage information if reported.
	Usage *Usage `json:"usage,omitempty"`

	// Timestamp is the local time the response was received.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Message returns the first choice's message, or a zero Message when
// the response carries no choices.
func (r *Response) Message() Message {
	if r == nil || len(r.Choices) == 0 {
		return Message{}
	}
	return r.Choices[0].Message
}

// Content returns the first choice's text content.
func (r *Response) Content() string {
	return r.Message().Content
}

// ToolCalls returns the first choice's tool calls.
func (r *Response) ToolCalls() []ToolCall {
	return r.Message().ToolCalls
}
