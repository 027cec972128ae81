package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/renderer"
)

// ProgressUpdate is sent after each completed pass
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// TileUpdate is sent for each completed tile when tile streaming is on
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`
	TotalTiles  int    `json:"totalTiles"`
	TotalPasses int    `json:"totalPasses"`
}

// SSEEvent funnels every event type through one writer goroutine so
// writes to the response never interleave.
type SSEEvent struct {
	Type string // "console", "tile", "progress", "error", "complete"
	Data string // JSON-encoded payload
}

// handleRender streams a progressive render over SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	events := make(chan SSEEvent, 100)
	consoleChan := make(chan ConsoleMessage, 50)

	// A single writer goroutine owns the response; the handler and the
	// renderer only queue events.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, w, events, consoleChan)
	}()
	defer func() {
		close(events)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		sendEvent(ctx, events, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	logger := NewWebLogger(consoleChan)

	s.runRender(ctx, req, logger, func(update ProgressUpdate) {
		data, err := json.Marshal(update)
		if err != nil {
			log.Printf("Error marshaling progress update: %v", err)
			return
		}
		sendEvent(ctx, events, "progress", string(data))
	}, func(update TileUpdate) {
		data, err := json.Marshal(update)
		if err != nil {
			return
		}
		sendEvent(ctx, events, "tile", string(data))
	}, func(msg string) {
		sendEvent(ctx, events, "error", msg)
	})

	sendEvent(ctx, events, "complete", "Rendering completed")
}

// runRender drives one progressive render, fanning pass, tile and
// error events into the given callbacks. Shared by the SSE and
// websocket handlers.
func (s *Server) runRender(ctx context.Context, req *RenderRequest, logger core.Logger,
	onPass func(ProgressUpdate), onTile func(TileUpdate), onError func(string)) {

	sc, err := buildScene(req)
	if err != nil {
		onError(err.Error())
		return
	}
	march, err := marchConfigFor(req.Quality)
	if err != nil {
		onError(err.Error())
		return
	}

	config := renderer.ProgressiveConfig{
		TileSize:   64,
		MaxPasses:  req.MaxPasses,
		NumWorkers: 0,
		March:      march,
	}
	pr := renderer.NewProgressiveRenderer(sc, req.Width, req.Height, config, logger)

	startTime := time.Now()
	passChan, tileChan, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: onTile != nil})

	for passChan != nil || tileChan != nil {
		select {
		case pass, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			img := pass.Image
			if req.Upscale > 1 {
				img = UpscalePreview(img, req.Upscale)
			}
			imageData, err := imageToBase64PNG(img)
			if err != nil {
				onError(fmt.Sprintf("Failed to encode image: %v", err))
				return
			}
			onPass(ProgressUpdate{
				PassNumber:  pass.PassNumber,
				TotalPasses: req.MaxPasses,
				ImageData:   imageData,
				Stats:       statsFrom(pass.Stats),
				IsComplete:  pass.IsLast,
				ElapsedMs:   time.Since(startTime).Milliseconds(),
			})

		case tile, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			if onTile == nil {
				continue
			}
			imageData, err := imageToBase64PNG(tile.TileImage)
			if err != nil {
				continue
			}
			onTile(TileUpdate{
				TileX:       tile.TileX,
				TileY:       tile.TileY,
				ImageData:   imageData,
				PassNumber:  tile.PassNumber,
				TileNumber:  tile.TileNumber,
				TotalTiles:  tile.TotalTiles,
				TotalPasses: tile.TotalPasses,
			})

		case <-ctx.Done():
			return
		}
	}

	if err := <-errChan; err != nil && err != context.Canceled {
		onError(fmt.Sprintf("Render error: %v", err))
	}
}

// writeSSEEvents is the single writer for one SSE connection. Console
// messages are folded into the same stream so writes never interleave.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent, consoleChan <-chan ConsoleMessage) {
	flusher, canFlush := w.(http.Flusher)
	write := func(event SSEEvent) bool {
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			return false
		}
		if canFlush {
			flusher.Flush()
		}
		return true
	}
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !write(event) {
				return
			}
		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}
			if !write(SSEEvent{Type: "console", Data: string(data)}) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent queues an event without blocking a disconnected client
func sendEvent(ctx context.Context, events chan<- SSEEvent, eventType, data string) {
	select {
	case events <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}
