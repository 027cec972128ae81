package server

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseRenderRequest_Defaults(t *testing.T) {
	s := NewServer(8080, "static/")
	r := httptest.NewRequest(http.MethodGet, "/api/render", nil)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		t.Fatalf("Default request must parse: %v", err)
	}
	if req.Scene != "default" || req.Quality != "balanced" {
		t.Errorf("Unexpected defaults: scene %q quality %q", req.Scene, req.Quality)
	}
	if req.Width != 400 || req.Height != 300 || req.MaxPasses != 4 {
		t.Errorf("Unexpected size defaults: %dx%d, %d passes", req.Width, req.Height, req.MaxPasses)
	}
}

func TestParseRenderRequest_Validation(t *testing.T) {
	s := NewServer(8080, "static/")
	tests := []struct {
		name  string
		query string
	}{
		{"width too small", "width=4"},
		{"width not a number", "width=abc"},
		{"too many passes", "maxPasses=100"},
		{"upscale too large", "upscale=32"},
		{"negative time", "time=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/render?"+tt.query, nil)
			if _, err := s.parseRenderRequest(r); err == nil {
				t.Errorf("Expected error for query %q", tt.query)
			}
		})
	}
}

func TestBuildScene_UnknownSceneFails(t *testing.T) {
	_, err := buildScene(&RenderRequest{Scene: "nope"})
	if err == nil {
		t.Fatal("Expected error for unknown scene")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("Error %q does not name the scene", err.Error())
	}
}

func TestMarchConfigFor_QualityKnob(t *testing.T) {
	perf, err := marchConfigFor("performance")
	if err != nil {
		t.Fatalf("performance must resolve: %v", err)
	}
	qual, err := marchConfigFor("quality")
	if err != nil {
		t.Fatalf("quality must resolve: %v", err)
	}
	if perf.MaxSteps >= qual.MaxSteps {
		t.Errorf("performance budget %d must be below quality budget %d", perf.MaxSteps, qual.MaxSteps)
	}
	if _, err := marchConfigFor("ultra"); err == nil {
		t.Error("Expected error for unknown quality")
	}
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(8080, "static/")
	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestHandleScenes_ListsPresets(t *testing.T) {
	s := NewServer(8080, "static/")
	w := httptest.NewRecorder()
	s.handleScenes(w, httptest.NewRequest(http.MethodGet, "/api/scenes", nil))

	var body struct {
		Scenes []string `json:"scenes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON body: %v", err)
	}
	if len(body.Scenes) == 0 {
		t.Error("Expected at least one scene")
	}
}

func TestHandleRender_SSEStreamsPasses(t *testing.T) {
	s := NewServer(8080, "static/")
	q := url.Values{
		"scene":     {"two-spheres"},
		"width":     {"32"},
		"height":    {"32"},
		"maxPasses": {"2"},
		"quality":   {"performance"},
	}
	r := httptest.NewRequest(http.MethodGet, "/api/render?"+q.Encode(), nil)
	w := httptest.NewRecorder()

	s.handleRender(w, r)

	body := w.Body.String()
	if !strings.Contains(body, "event: progress") {
		t.Error("Expected progress events in the SSE stream")
	}
	if !strings.Contains(body, "event: complete") {
		t.Error("Expected a complete event in the SSE stream")
	}
	if !strings.Contains(body, `"isComplete":true`) {
		t.Error("Expected the final pass to be flagged complete")
	}
	if strings.Contains(body, "event: error") {
		t.Errorf("Unexpected error event in stream:\n%s", body)
	}
}

func TestHandleRender_InvalidRequestSendsError(t *testing.T) {
	s := NewServer(8080, "static/")
	r := httptest.NewRequest(http.MethodGet, "/api/render?width=1", nil)
	w := httptest.NewRecorder()

	s.handleRender(w, r)

	if !strings.Contains(w.Body.String(), "event: error") {
		t.Error("Expected an error event for an invalid request")
	}
}

func TestUpscalePreview(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Pix[0] = 200 // Top-left red channel

	scaled := UpscalePreview(img, 3)
	if scaled.Bounds() != image.Rect(0, 0, 12, 9) {
		t.Fatalf("Unexpected scaled bounds %v", scaled.Bounds())
	}
	// Nearest-neighbor copies the source pixel into the whole block.
	if scaled.RGBAAt(2, 2).R != 200 {
		t.Errorf("Expected block-copied pixel, got %v", scaled.RGBAAt(2, 2))
	}

	if got := UpscalePreview(img, 1); got != img {
		t.Error("Factor 1 must return the input image")
	}
}
