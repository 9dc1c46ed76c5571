package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/williampepple1/vibe-scout/internal/logger"
)

// Task processes a single input. It must not panic and must always return a value.
type Task[In, Out any] func(ctx context.Context, in In) Out

// Pool runs a Task over a batch of inputs with a fixed number of workers.
// After each task a worker sleeps for Pacing before taking the next job, so at
// most Workers calls are in flight and each slot is reused no sooner than
// Pacing after its previous call finished.
type Pool[In, Out any] struct {
	Workers int
	Pacing  time.Duration
	Limiter *rate.Limiter
	Log     logger.Logger

	// OnLimiterError builds the output for a job that never ran because the
	// limiter gave up.
	OnLimiterError func(in In, err error) Out

	task Task[In, Out]
}

type job[In any] struct {
	index int
	input In
}

// NewPool creates a new worker pool
func NewPool[In, Out any](workers int, pacing time.Duration, task func(ctx context.Context, in In) Out) *Pool[In, Out] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[In, Out]{
		Workers: workers,
		Pacing:  pacing,
		Log:     logger.Nop(),
		task:    task,
	}
}

// Run processes every input and returns the outputs in input order. It
// returns only after every task has finished; one failing task never cancels
// its siblings.
func (p *Pool[In, Out]) Run(ctx context.Context, inputs []In) []Out {
	results := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	jobs := make(chan job[In], len(inputs))
	for i, in := range inputs {
		jobs <- job[In]{index: i, input: in}
	}
	close(jobs)

	workers := p.Workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, jobs, results, &wg)
	}
	wg.Wait()

	return results
}

// worker processes jobs and writes each output into its own slot
func (p *Pool[In, Out]) worker(ctx context.Context, id int, jobs <-chan job[In], results []Out, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil && p.OnLimiterError != nil {
				results[j.index] = p.OnLimiterError(j.input, err)
				continue
			}
		}

		p.Log.Debugf("worker %d processing job %d", id, j.index)
		results[j.index] = p.task(ctx, j.input)

		if p.Pacing > 0 {
			timer := time.NewTimer(p.Pacing)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
	}
}

// LimiterPerMinute builds a limiter for requestsPerMinute, or nil when the
// value is not positive.
func LimiterPerMinute(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
