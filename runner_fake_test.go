package main

import (
	"context"
	"strings"
	"sync"
)

type fakeCall struct {
	Dir  string
	Args string
}

// fakeRunner scripts git invocations for tests and records every call in
// order. The handler receives the space-joined argument list.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []fakeCall
	handler func(dir string, args string) (string, error)
}

func (f *fakeRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	if ctx != nil && ctx.Err() != nil {
		return "", context.Canceled
	}
	joined := strings.Join(args, " ")
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Dir: dir, Args: joined})
	f.mu.Unlock()
	if f.handler == nil {
		return "", nil
	}
	return f.handler(dir, joined)
}

func (f *fakeRunner) callArgs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, call := range f.calls {
		out[i] = call.Args
	}
	return out
}

func (f *fakeRunner) countCalls(prefix string) int {
	count := 0
	for _, args := range f.callArgs() {
		if strings.HasPrefix(args, prefix) {
			count++
		}
	}
	return count
}
