package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// TaskFunc is one keyed piece of background work
type TaskFunc func(ctx context.Context) error

// TaskJob adapts a TaskFunc to Job, waiting on an optional limiter bucket first
type TaskJob struct {
	Key      string
	LimitKey string
	Limiter  *Limiter
	Fn       TaskFunc
}

// Execute waits for the limiter and runs the task
func (j *TaskJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil && j.LimitKey != "" {
		if err := j.Limiter.Wait(ctx, j.LimitKey); err != nil {
			return &TaskResult{Key: j.Key, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}
	return &TaskResult{Key: j.Key, Error: j.Fn(ctx)}
}

// TaskResult is the outcome of a TaskJob
type TaskResult struct {
	Key   string
	Error error
}

// GetError returns the task error
func (r *TaskResult) GetError() error {
	return r.Error
}

// Batch runs keyed tasks concurrently behind a shared limiter bucket
type Batch struct {
	pool     *Pool
	limiter  *Limiter
	limitKey string
}

// NewBatch creates a batch runner; limiter may be nil
func NewBatch(concurrency int, limiter *Limiter, limitKey string) *Batch {
	return &Batch{
		pool:     NewPool(concurrency),
		limiter:  limiter,
		limitKey: limitKey,
	}
}

// Run executes fns keyed by name and returns results in key order.
// Tasks cut off by ctx report ctx.Err().
func (b *Batch) Run(ctx context.Context, keys []string, fn func(ctx context.Context, key string) error) []*TaskResult {
	jobs := make([]Job, len(keys))
	for i, key := range keys {
		jobs[i] = &TaskJob{
			Key:      key,
			LimitKey: b.limitKey,
			Limiter:  b.limiter,
			Fn:       func(ctx context.Context) error { return fn(ctx, key) },
		}
	}

	raw := b.pool.Run(ctx, jobs)
	out := make([]*TaskResult, len(raw))
	for i, r := range raw {
		if tr, ok := r.(*TaskResult); ok {
			out[i] = tr
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("task not run")
		}
		out[i] = &TaskResult{Key: keys[i], Error: err}
	}
	return out
}

// ReadLines reads non-empty, non-comment lines from a file, deduplicated in order
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
