// Package provider defines the upstream chat model interface and implementations.
package provider

import "github.com/ZaguanLabs/culturo"

// ChatModel is the interface for chat-completion backends.
// This is an alias to the main package interface for convenience.
type ChatModel = culturo.ChatModel

// CompletionRequest is an alias to the main package type.
type CompletionRequest = culturo.CompletionRequest
