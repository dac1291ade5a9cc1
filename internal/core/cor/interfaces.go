// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks for the
// clip pipelines. A workflow is a Chain of Commands that share a Context: each
// command reads its input from the context, does one unit of work, and writes
// its output back for the next command. The interfaces here keep commands,
// chains, and contexts interchangeable so pipelines can be assembled and
// tested piecewise.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default context key for a command's primary input. A chain
	// populates it with the previous command's output.
	CtxIn = "__IN__"
	// CtxOut is the default context key where a command places its primary
	// output for the chain to pipe forward.
	CtxOut = "__OUT__"
)

// Context is the shared state bag passed through a chain. It carries the Go
// context (cancellation, trace propagation), arbitrary keyed data, the errors
// recorded by commands, and the temporary files to remove when the workflow
// finishes.
type Context interface {
	// SetContext swaps the Go context; the chain uses this to nest each
	// command's span under the chain span.
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a failure, keyed by the command that produced it.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool

	// AddTempFile registers a file or directory for removal in Close.
	AddTempFile(file string)
	GetTempFiles() []string

	// Close removes all registered temporary files. Defer it at workflow
	// start so cleanup runs on every exit path.
	Close()
}

// Executable is anything with a single unit of business logic.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, observable unit of work within a chain.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable reports whether the command's preconditions hold for the
	// current context state.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest.
type Chain interface {
	Command

	// ContinueOnFailure controls whether the chain keeps executing after a
	// command records an error. The default is to stop at the first failure.
	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
