package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile       *Tile
	PassNumber int
	TaskID     int // Index of the tile in the grid
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// TileExecutor runs tile tasks and hands back one result per submitted task
type TileExecutor interface {
	Start()
	Stop()
	SubmitTask(task TileTask)
	GetResult() (TileResult, bool)
	GetNumWorkers() int
}

var (
	_ TileExecutor = (*WorkerPool)(nil)
	_ TileExecutor = (*SerialExecutor)(nil)
)

// DefaultWorkerCount returns the number of logical CPUs, falling back to
// the Go runtime's view when the host cannot be queried.
func DefaultWorkerCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	renderer    *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize should be at least the number of tiles in a pass.
func NewWorkerPool(renderer *TileRenderer, numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkerCount()
	}
	queueSize = max(1, queueSize)

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, queueSize),
		resultQueue: make(chan TileResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    renderer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for _, worker := range wp.workers {
			wp.wg.Add(1)
			go worker.run(&wp.wg)
		}
	})
}

// Stop gracefully shuts down all workers after the queued tasks drain
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
	})
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- executeTile(w.renderer, task)
	}
}

// executeTile renders one task, converting a panic into a result error so a
// single bad tile cannot take down the pool.
func executeTile(renderer *TileRenderer, task TileTask) (result TileResult) {
	result.TaskID = task.TaskID
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("tile %d pass %d: panic: %v", task.Tile.ID, task.PassNumber, r)
		}
	}()

	result.Stats = renderer.RenderTile(task.Tile, task.PassNumber)
	return result
}

// SerialExecutor renders every task on the submitting goroutine
type SerialExecutor struct {
	renderer *TileRenderer
	results  []TileResult
	stopped  bool
}

// NewSerialExecutor creates an executor without worker goroutines
func NewSerialExecutor(renderer *TileRenderer) *SerialExecutor {
	return &SerialExecutor{renderer: renderer}
}

// Start is a no-op
func (se *SerialExecutor) Start() {}

// Stop discards pending results; later GetResult calls report closed
func (se *SerialExecutor) Stop() {
	se.stopped = true
	se.results = nil
}

// SubmitTask renders the tile immediately
func (se *SerialExecutor) SubmitTask(task TileTask) {
	se.results = append(se.results, executeTile(se.renderer, task))
}

// GetResult returns results in submission order
func (se *SerialExecutor) GetResult() (TileResult, bool) {
	if se.stopped || len(se.results) == 0 {
		return TileResult{}, false
	}
	result := se.results[0]
	se.results = se.results[1:]
	return result, true
}

// GetNumWorkers always returns 1
func (se *SerialExecutor) GetNumWorkers() int {
	return 1
}
