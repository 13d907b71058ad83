// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a call is moved to a state it cannot reach.
var ErrInvalidTransition = errors.New("invalid call state transition")

// State is the lifecycle position of one inbound call.
type State int

const (
	StateReceived  State = iota // Request arrived, nothing bound yet
	StateParsed                 // Request value constructed
	StateValidated              // Validation passed
	StateExecuting              // Inside stage k, or the handler when k equals the stage count
	StateCompleted              // A result was produced (including a short-circuit)
	StateFaulted                // The call ended with an error
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateParsed:
		return "parsed"
	case StateValidated:
		return "validated"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFaulted
}

// Event describes one state transition.
type Event struct {
	State State
	Stage int    // Stage position while executing; the stage count means the handler
	Name  string // Stage name while executing
	Err   error  // Set when faulted
	At    time.Time
}

// Observer receives the transitions of a call. Observers run synchronously
// on the call's goroutine and must not block.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(ctx context.Context, e Event)

// Observe implements [Observer].
func (f ObserverFunc) Observe(ctx context.Context, e Event) {
	f(ctx, e)
}

// HandlerName is the event name reported when the handler runs.
const HandlerName = "handler"

// Call is the state machine of a single inbound call. A Call is owned by
// the goroutine serving the request and is not safe for concurrent use.
//
//	Received -> Parsed -> Validated -> Executing(0..n) -> Completed | Faulted
//
// Validation failure moves straight from Parsed to Completed. Any
// non-terminal state may fault.
type Call[Req, Resp any] struct {
	chain *Chain[Req, Resp]
	state State
	stage int
}

// State returns the current state.
func (c *Call[Req, Resp]) State() State {
	return c.state
}

// Stage returns the position of the stage currently executing, or -1.
func (c *Call[Req, Resp]) Stage() int {
	return c.stage
}

// Parsed records that the request value was constructed.
func (c *Call[Req, Resp]) Parsed(ctx context.Context) error {
	return c.move(ctx, StateParsed, nil)
}

// Validated records that validation passed.
func (c *Call[Req, Resp]) Validated(ctx context.Context) error {
	return c.move(ctx, StateValidated, nil)
}

// Complete records that a result was produced.
func (c *Call[Req, Resp]) Complete(ctx context.Context) error {
	return c.move(ctx, StateCompleted, nil)
}

// Fault records that the call ended with err.
func (c *Call[Req, Resp]) Fault(ctx context.Context, err error) error {
	return c.move(ctx, StateFaulted, err)
}

// Run executes the chain and the handler. The call must be validated.
func (c *Call[Req, Resp]) Run(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	if c.state != StateValidated {
		return zero, fmt.Errorf("%w: run from %s", ErrInvalidTransition, c.state)
	}

	entries := c.chain.entries
	handler := c.chain.handler

	next := Next[Resp](func(ctx context.Context) (Resp, error) {
		c.enter(ctx, len(entries), HandlerName)
		return handler(ctx, req)
	})
	for k := len(entries) - 1; k >= 0; k-- {
		entry := entries[k]
		inner := next
		next = func(ctx context.Context) (Resp, error) {
			c.enter(ctx, k, entry.Name)
			return entry.Stage.Handle(ctx, req, inner)
		}
	}

	resp, err := next(ctx)
	if err != nil {
		_ = c.Fault(ctx, err)
		return resp, err
	}
	_ = c.Complete(ctx)
	return resp, nil
}

func (c *Call[Req, Resp]) enter(ctx context.Context, k int, name string) {
	c.state = StateExecuting
	c.stage = k
	c.notify(ctx, Event{State: StateExecuting, Stage: k, Name: name})
}

func (c *Call[Req, Resp]) move(ctx context.Context, to State, err error) error {
	if !allowed(c.state, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.state, to)
	}
	c.state = to
	c.stage = -1
	c.notify(ctx, Event{State: to, Stage: -1, Err: err})
	return nil
}

func (c *Call[Req, Resp]) notify(ctx context.Context, e Event) {
	if c.chain.observer == nil {
		return
	}
	e.At = time.Now()
	c.chain.observer.Observe(ctx, e)
}

func allowed(from, to State) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StateFaulted:
		return true
	case StateParsed:
		return from == StateReceived
	case StateValidated:
		return from == StateParsed
	case StateCompleted:
		return from == StateParsed || from == StateValidated || from == StateExecuting
	default:
		return false
	}
}
