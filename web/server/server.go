// Package server exposes the renderer over HTTP: progressive renders
// stream over SSE or a websocket, with console output multiplexed into
// the same stream so the browser sees what the CLI would print.
package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/renderer"
	"github.com/reactor-gpu/reactor-go/pkg/scene"
)

// Server handles web requests for the renderer
type Server struct {
	port      int
	staticDir string
}

// NewServer creates a web server that serves static files from
// staticDir and the render API on the given port.
func NewServer(port int, staticDir string) *Server {
	return &Server{port: port, staticDir: staticDir}
}

// RenderRequest is a parsed and validated render request
type RenderRequest struct {
	Scene     string  `json:"scene"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	MaxPasses int     `json:"maxPasses"`
	Quality   string  `json:"quality"` // "performance", "balanced", "quality"
	Time      float64 `json:"time"`    // Animation time for animated scenes
	Upscale   int     `json:"upscale"` // Preview upscale factor (1 = off)
}

// Stats is the JSON shape of renderer.RenderStats
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSteps       int     `json:"totalSteps"`
	AverageSteps     float64 `json:"averageSteps"`
	MaxStepsUsed     int     `json:"maxStepsUsed"`
	HitCount         int     `json:"hitCount"`
	HitRate          float64 `json:"hitRate"`
	MissedBySteps    int     `json:"missedBySteps"`
	MissedByDistance int     `json:"missedByDistance"`
}

func statsFrom(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:      rs.TotalPixels,
		TotalSteps:       rs.TotalSteps,
		AverageSteps:     rs.AverageSteps,
		MaxStepsUsed:     rs.MaxStepsUsed,
		HitCount:         rs.HitCount,
		HitRate:          rs.HitRate,
		MissedBySteps:    rs.MissedBySteps,
		MissedByDistance: rs.MissedByDistance,
	}
}

// Start registers routes and serves until the listener fails
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/ws/render", s.handleRenderWS)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the preset scenes the client can request
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"scenes": scene.SceneNames(),
		"limits": map[string]map[string]int{
			"width":     {"min": 16, "max": 2000},
			"height":    {"min": 16, "max": 2000},
			"maxPasses": {"min": 1, "max": 16},
			"upscale":   {"min": 1, "max": 8},
		},
	})
}

// parseRenderRequest validates query parameters against their limits
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	q := r.URL.Query()
	req := &RenderRequest{}

	req.Scene = q.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}
	req.Quality = q.Get("quality")
	if req.Quality == "" {
		req.Quality = "balanced"
	}

	var err error
	if req.Width, err = parseIntParam(q, "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(q, "height", 300, 16, 2000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(q, "maxPasses", 4, 1, 16); err != nil {
		return nil, err
	}
	if req.Upscale, err = parseIntParam(q, "upscale", 1, 1, 8); err != nil {
		return nil, err
	}
	if req.Time, err = parseFloatParam(q, "time", 0, 0, 3600); err != nil {
		return nil, err
	}
	return req, nil
}

// buildScene constructs and advances the requested preset scene
func buildScene(req *RenderRequest) (*scene.Scene, error) {
	sc, err := scene.NewScene(req.Scene)
	if err != nil {
		return nil, err
	}
	if req.Time > 0 {
		sc = sc.Advance(float32(req.Time))
	}
	return sc, nil
}

// marchConfigFor maps the quality knob onto march presets
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

func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG encodes an image for embedding in a JSON event
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
