package cache

import (
	"context"
	"fmt"
	"sync/atomic"
)

// countingLoader returns "<key>-<n>" where n counts its invocations.
type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(_ context.Context, key string) (string, error) {
	n := l.calls.Add(1)
	return fmt.Sprintf("%s-%d", key, n), nil
}

func (l *countingLoader) count() int {
	return int(l.calls.Load())
}

// flakyLoader fails the first call for every key and succeeds afterwards.
type flakyLoader struct {
	err   error
	calls atomic.Int32
}

func (l *flakyLoader) Load(_ context.Context, key string) (string, error) {
	if l.calls.Add(1) == 1 {
		return "", l.err
	}
	return "value-" + key, nil
}
