package analysis

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// DefaultMaxConcurrent bounds simultaneous provider calls.
const DefaultMaxConcurrent = 5

// Pool analyzes frames through a Provider with a sliding window of at most
// maxConcurrent calls in flight. One item's failure never cancels or blocks
// its siblings; failures are recorded per item and can be retried as a
// subset later.
type Pool struct {
	provider      Provider
	maxConcurrent int

	// OnProgress is called once per completed item, success or failure.
	// It is used only for reporting, never for control flow.
	OnProgress func(done, total int)

	mu        sync.Mutex
	completed int
}

// NewPool returns a pool bounded to maxConcurrent simultaneous calls.
func NewPool(provider Provider, maxConcurrent int) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Pool{provider: provider, maxConcurrent: maxConcurrent}
}

// Analyze runs every frame through the provider and returns one result per
// frame, sorted by originating index regardless of completion order.
func (p *Pool) Analyze(ctx context.Context, frames []image.Image, prompt string) []model.ImageProcessingResult {
	results := make([]model.ImageProcessingResult, len(frames))
	for i, frame := range frames {
		results[i] = model.ImageProcessingResult{Index: i, Frame: frame, Status: model.StatusPending}
	}
	p.resetProgress()
	p.run(ctx, results, allIndices(len(results)), prompt, len(results))
	return results
}

// Retry resubmits only the items currently marked failed, reusing the same
// bounded-concurrency discipline, and merges outcomes back into results.
// Already-succeeded items are never resubmitted.
func (p *Pool) Retry(ctx context.Context, results []model.ImageProcessingResult, prompt string) {
	var failed []int
	for i := range results {
		if results[i].Status == model.StatusFailed {
			failed = append(failed, i)
		}
	}
	p.resetProgress()
	p.run(ctx, results, failed, prompt, len(failed))
}

// outcome carries one completion back to the collector.
type outcome struct {
	index int
	text  string
	err   error
}

// run keeps up to maxConcurrent provider calls in flight over the backlog of
// indices, submitting in order and collecting completions as they land.
// Cancellation stops new submissions; in-flight calls drain on their own.
func (p *Pool) run(ctx context.Context, results []model.ImageProcessingResult, backlog []int, prompt string, total int) {
	if len(backlog) == 0 {
		return
	}

	sem := make(chan struct{}, p.maxConcurrent)
	completions := make(chan outcome)
	var wg sync.WaitGroup

	go func() {
		// In-flight workers must drain before the channel closes, even
		// when cancellation stops submission early.
		defer func() {
			wg.Wait()
			close(completions)
		}()
		for _, idx := range backlog {
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			results[idx].Status = model.StatusProcessing
			wg.Add(1)
			go func(idx int, frame image.Image) {
				defer wg.Done()
				defer func() { <-sem }()
				text, err := p.provider.Analyze(ctx, frame, prompt)
				completions <- outcome{index: idx, text: text, err: err}
			}(idx, results[idx].Frame)
		}
	}()

	// Collect, then order by index so downstream consumers never observe
	// provider completion order.
	collected := make([]outcome, 0, len(backlog))
	for o := range completions {
		collected = append(collected, o)
		p.bumpProgress(total)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	for _, o := range collected {
		r := &results[o.index]
		if o.err != nil {
			r.Status = model.StatusFailed
			r.Error = fmt.Errorf("%w: %v", model.ErrAnalysisFailed, o.err).Error()
			continue
		}
		r.Status = model.StatusSuccess
		r.Text = o.text
		r.Error = ""
	}
}

func (p *Pool) resetProgress() {
	p.mu.Lock()
	p.completed = 0
	p.mu.Unlock()
}

func (p *Pool) bumpProgress(total int) {
	p.mu.Lock()
	p.completed++
	done := p.completed
	cb := p.OnProgress
	p.mu.Unlock()
	if cb != nil {
		cb(done, total)
	}
}

// Completed returns the number of items finished in the current run.
func (p *Pool) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// Summarize counts successes and failures in a result set.
func Summarize(results []model.ImageProcessingResult) (succeeded, failed int) {
	for i := range results {
		switch results[i].Status {
		case model.StatusSuccess:
			succeeded++
		case model.StatusFailed:
			failed++
		}
	}
	return succeeded, failed
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
