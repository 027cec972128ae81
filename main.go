package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/record"
	"github.com/reactor-gpu/reactor-go/pkg/renderer"
	"github.com/reactor-gpu/reactor-go/pkg/scene"
)

func main() {
	sceneName := flag.String("scene", "default", "Scene preset: "+strings.Join(scene.SceneNames(), ", "))
	width := flag.Int("width", 800, "Image width in pixels")
	height := flag.Int("height", 450, "Image height in pixels")
	quality := flag.String("quality", "balanced", "March quality: performance, balanced, quality")
	passes := flag.Int("passes", 4, "Number of progressive passes")
	workers := flag.Int("workers", 0, "Parallel workers (0 = CPU count)")
	animTime := flag.Float64("time", 0, "Animation time for animated scenes")
	recordPath := flag.String("record", "", "Write a session recording to this path")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("SDF Renderer")
		fmt.Println("Usage: reactor-go [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	if err := run(*sceneName, *width, *height, *quality, *passes, *workers, float32(*animTime), *recordPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sceneName string, width, height int, quality string, passes, workers int, animTime float32, recordPath string) error {
	selectedScene, err := scene.NewScene(sceneName)
	if err != nil {
		return err
	}
	if animTime > 0 {
		selectedScene = selectedScene.Advance(animTime)
	}

	march, err := marchConfigFor(quality)
	if err != nil {
		return err
	}

	outputDir := filepath.Join("output", sceneName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var rec *record.Recorder
	if recordPath != "" {
		rec, err = record.CreateFile(recordPath, record.SessionMeta{
			Scene:     sceneName,
			Width:     width,
			Height:    height,
			MaxPasses: passes,
			Workers:   effectiveWorkers(workers),
			StartedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	config := renderer.ProgressiveConfig{
		TileSize:   64,
		MaxPasses:  passes,
		NumWorkers: workers,
		March:      march,
	}
	pr := renderer.NewProgressiveRenderer(selectedScene, width, height, config, renderer.NewDefaultLogger())

	startTime := time.Now()
	passChan, _, errChan := pr.RenderProgressive(context.Background(), renderer.RenderOptions{})

	var final renderer.PassResult
	passStart := startTime
	for result := range passChan {
		if rec != nil {
			if err := rec.RecordPass(record.PassRecord{
				Pass:      result.PassNumber,
				ElapsedMs: time.Since(passStart).Milliseconds(),
				Stats:     result.Stats,
			}); err != nil {
				return err
			}
		}
		passStart = time.Now()
		final = result
	}
	if err := <-errChan; err != nil {
		return err
	}
	if final.Image == nil {
		return fmt.Errorf("render produced no passes")
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Steps per ray: %.1f average, %d max; hit rate %.0f%%\n",
		final.Stats.AverageSteps, final.Stats.MaxStepsUsed, final.Stats.HitRate*100)

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	if err := savePNG(filename, final); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

func savePNG(filename string, result renderer.PassResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, result.Image); err != nil {
		return fmt.Errorf("saving PNG: %w", err)
	}
	return nil
}

func marchConfigFor(quality string) (core.MarchConfig, error) {
	switch quality {
	case "performance":
		return core.PerformanceMarchConfig(), nil
	case "balanced":
		return core.DefaultMarchConfig(), nil
	case "quality":
		return core.QualityMarchConfig(), nil
	default:
		return core.MarchConfig{}, fmt.Errorf("unknown quality %q", quality)
	}
}

func effectiveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}
