package renderer

import (
	"runtime"
	"sync"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// TileTask is one tile-by-pass unit of work for the worker pool
type TileTask struct {
	Tile       *Tile
	PassNumber int
	StepBudget int // March iteration cap for this pass
	TaskID     int
	Grid       *PixelGrid // Shared grid to write into
}

// TileResult carries a completed tile's stats back to the coordinator
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool renders tiles in parallel. Tiles have disjoint bounds, so
// workers write to the shared grid without locking; all coordination
// happens over the task and result channels.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*worker
	numWorkers  int
	wg          sync.WaitGroup
}

type worker struct {
	id          int
	renderer    *Renderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a pool with one renderer per worker. Zero
// numWorkers means one per CPU.
func NewWorkerPool(scene core.Scene, width, height int, config core.MarchConfig, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Buffer for the worst case of 8x8 tiles so submission never blocks.
	maxTiles := ((width + 7) / 8) * ((height + 7) / 8)

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),
		resultQueue: make(chan TileResult, maxTiles),
		numWorkers:  numWorkers,
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &worker{
			id:          i,
			renderer:    NewRenderer(scene, width, height, config),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp
}

// Start launches all workers
func (wp *WorkerPool) Start() {
	for _, w := range wp.workers {
		wp.wg.Add(1)
		go w.run(&wp.wg)
	}
}

// Stop drains the queues and waits for workers to exit
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a tile for rendering
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult blocks for the next completed tile
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the worker count
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range w.taskQueue {
		stats := w.renderer.RenderBounds(task.Tile.Bounds, task.Grid, task.StepBudget)
		w.resultQueue <- TileResult{TaskID: task.TaskID, Stats: stats}
	}
}
