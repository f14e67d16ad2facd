package runner

import (
	"context"
	"sync"
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
)

// WorkerPool processes script files concurrently. Parsing shares no
// mutable state, so every worker runs the same Executor.
type WorkerPool struct {
	executor   *Executor
	maxWorkers int
	verbose    bool
}

// NewWorkerPool creates a new worker pool for parallel processing
func NewWorkerPool(executor *Executor, maxWorkers int, verbose bool) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		executor:   executor,
		maxWorkers: maxWorkers,
		verbose:    verbose,
	}
}

// ExecuteParallel processes files with the configured concurrency limit.
// Results keep the order of files. Files not yet started when ctx is
// cancelled come back as RunCancelled, and ctx.Err() is returned.
func (wp *WorkerPool) ExecuteParallel(ctx context.Context, files []discovery.DiscoveredFile) ([]*FileRun, error) {
	numFiles := len(files)
	if numFiles == 0 {
		return nil, nil
	}

	// If only one worker or one file, fall back to sequential execution
	if wp.maxWorkers == 1 || numFiles == 1 {
		return wp.executor.ExecuteBatch(ctx, files)
	}

	workers := min(wp.maxWorkers, numFiles)
	if wp.verbose {
		logger.Debug("Starting parallel processing with %d workers for %d files", workers, numFiles)
	}

	jobs := make(chan *fileJob, numFiles)
	results := make(chan *fileResult, numFiles)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, results, &wg)
	}

	for i := range files {
		jobs <- &fileJob{
			file:  &files[i],
			index: i,
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	runs := make([]*FileRun, numFiles)
	for result := range results {
		runs[result.index] = result.run
		if wp.verbose {
			logger.Debug("[%s] %s (worker %d)", result.run.Status, result.run.File.Path, result.workerID)
		}
	}

	return runs, ctx.Err()
}

// fileJob represents a single file to process
type fileJob struct {
	file  *discovery.DiscoveredFile
	index int
}

// fileResult carries a run back to the collector
type fileResult struct {
	run      *FileRun
	index    int
	workerID int
}

// worker is the goroutine that processes file jobs
func (wp *WorkerPool) worker(ctx context.Context, workerID int, jobs <-chan *fileJob, results chan<- *fileResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		run, _ := wp.executor.Execute(ctx, job.file)
		if run == nil {
			run = &FileRun{
				File:      job.file,
				StartTime: time.Now(),
				EndTime:   time.Now(),
				Status:    RunFailed,
			}
		}

		results <- &fileResult{
			run:      run,
			index:    job.index,
			workerID: workerID,
		}
	}
}
