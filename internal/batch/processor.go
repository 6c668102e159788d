package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the shared settings of a batch run.
type Config struct {
	Workers  int
	Label    string        // what one item is called in progress lines
	Progress time.Duration // progress interval; zero means every 2s
	Log      logrus.FieldLogger
}

// Result holds the outcome of processing one item.
type Result struct {
	Index   int
	Success bool
	Err     error
	Elapsed time.Duration
}

// Func processes item idx.
type Func func(ctx context.Context, idx int) error

// Run processes items 0..total-1 using a worker pool. Results are indexed
// like the items. Once ctx is done no new item starts and the remaining
// ones report ctx.Err().
func Run(ctx context.Context, cfg Config, total int, fn Func) []Result {
	results := make([]Result, total)
	for i := range results {
		results[i].Index = i
	}
	if total == 0 {
		return results
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	label := cfg.Label
	if label == "" {
		label = "items"
	}
	interval := cfg.Progress
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Log != nil {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						cfg.Log.WithFields(logrus.Fields{
							"done":  p,
							"total": total,
							"rate":  float64(p) / elapsed,
						}).Infof("%s progress", label)
					}
				}
			}
		}()
	}

	// Worker pool
	itemChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				results[idx] = process(ctx, idx, fn)
				processed.Add(1)
			}
		}()
	}

	// Send work
	sent := 0
send:
	for ; sent < total && ctx.Err() == nil; sent++ {
		select {
		case <-ctx.Done():
			break send
		case itemChan <- sent:
		}
	}
	close(itemChan)

	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i].Err = ctx.Err()
	}

	if cfg.Log != nil {
		cfg.Log.WithFields(logrus.Fields{
			"total":   total,
			"failed":  len(Failed(results)),
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		}).Debugf("%s done", label)
	}
	return results
}

func process(ctx context.Context, idx int, fn Func) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{Index: idx, Err: err}
	}
	if err := fn(ctx, idx); err != nil {
		return Result{Index: idx, Err: err, Elapsed: time.Since(start)}
	}
	return Result{Index: idx, Success: true, Elapsed: time.Since(start)}
}

// Failed returns the unsuccessful results in index order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// FirstError returns the error of the lowest failing index, or nil.
func FirstError(results []Result) error {
	for _, r := range results {
		if !r.Success {
			return r.Err
		}
	}
	return nil
}
