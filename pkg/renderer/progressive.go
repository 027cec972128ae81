package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig controls progressive rendering
type ProgressiveConfig struct {
	TileSize   int              // Size of each square tile (64 recommended)
	MaxPasses  int              // Number of step-budget passes
	NumWorkers int              // Parallel workers (0 = CPU count)
	March      core.MarchConfig // Marching thresholds for the final pass
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   64,
		MaxPasses:  4,
		NumWorkers: 0,
		March:      core.DefaultMarchConfig(),
	}
}

// ProgressiveRenderer renders a scene in passes with a rising march
// step budget: early passes resolve silhouettes cheaply, the final
// pass runs the full budget. Pixels are overwritten each pass, so the
// image sharpens monotonically.
type ProgressiveRenderer struct {
	scene         core.Scene
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	grid          *PixelGrid
	workerPool    *WorkerPool
	logger        core.Logger
}

// NewProgressiveRenderer creates a progressive renderer
func NewProgressiveRenderer(scene core.Scene, width, height int, config ProgressiveConfig, logger core.Logger) *ProgressiveRenderer {
	return &ProgressiveRenderer{
		scene:      scene,
		width:      width,
		height:     height,
		config:     config,
		tiles:      NewTileGrid(width, height, config.TileSize),
		grid:       NewPixelGrid(width, height),
		workerPool: NewWorkerPool(scene, width, height, config.March, config.NumWorkers),
		logger:     logger,
	}
}

// stepBudgetForPass ramps the march budget from a quarter of MaxSteps
// up to the full budget on the last pass.
func (pr *ProgressiveRenderer) stepBudgetForPass(passNumber int) int {
	maxSteps := pr.config.March.MaxSteps
	if pr.config.MaxPasses <= 1 || passNumber >= pr.config.MaxPasses {
		return maxSteps
	}
	minBudget := maxSteps / 4
	if minBudget < 1 {
		minBudget = 1
	}
	budget := minBudget + (maxSteps-minBudget)*(passNumber-1)/(pr.config.MaxPasses-1)
	return budget
}

// RenderPass renders one pass across all tiles in parallel. The tile
// callback, if set, is invoked from this goroutine as tiles finish.
func (pr *ProgressiveRenderer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	budget := pr.stepBudgetForPass(passNumber)
	pr.logger.Printf("Pass %d: step budget %d (using %d workers)...\n",
		passNumber, budget, pr.workerPool.NumWorkers())

	if passNumber == 1 {
		pr.workerPool.Start()
	}

	for i, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:       tile,
			PassNumber: passNumber,
			StepBudget: budget,
			TaskID:     i,
			Grid:       pr.grid,
		})
	}

	var stats RenderStats
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++
		stats.Merge(result.Stats)

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   gridImage(pr.grid, tile.Bounds),
				PassNumber:  passNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}

	return gridImage(pr.grid, pr.grid.Bounds()), stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult describes one finished tile for streaming
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA
	PassNumber int

	TileNumber  int // 1-based position within the pass
	TotalTiles  int
	TotalPasses int
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to emit per-tile completion events
}

// RenderProgressive runs all passes and streams results over channels.
// The caller reads from the returned channels; cancellation of ctx
// stops rendering between passes. When options.TileUpdates is false
// the tile channel is closed immediately.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full; the next pass repaints the tile anyway.
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (avg %.1f steps/ray, %.0f%% hits)\n",
				pass, time.Since(startTime), stats.AverageSteps, stats.HitRate*100)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}
			select {
			case passChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Tile is a rectangular region of the image
type Tile struct {
	ID              int
	Bounds          image.Rectangle // Pixel bounds in global coordinates
	PassesCompleted int
}

// NewTileGrid creates tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	id := 0
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, &Tile{ID: id, Bounds: image.Rect(x0, y0, x1, y1)})
			id++
		}
	}
	return tiles
}
