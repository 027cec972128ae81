// Package record persists render sessions as zstd-compressed JSONL:
// one header line describing the session followed by one line per
// completed pass. Recorded sessions make perf regressions visible by
// diffing step counts and timings across runs.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/reactor-gpu/reactor-go/pkg/renderer"
)

// FormatVersion is bumped whenever the line layout changes
const FormatVersion = 1

// SessionMeta is the header line of a recording
type SessionMeta struct {
	Version   int       `json:"version"`
	Scene     string    `json:"scene"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	MaxPasses int       `json:"max_passes"`
	Workers   int       `json:"workers"`
	StartedAt time.Time `json:"started_at"`
}

// PassRecord is one completed pass
type PassRecord struct {
	Pass       int                  `json:"pass"`
	StepBudget int                  `json:"step_budget"`
	ElapsedMs  int64                `json:"elapsed_ms"`
	Stats      renderer.RenderStats `json:"stats"`
}

// Recorder streams a session to an underlying writer. Not safe for
// concurrent use; the progressive render loop emits passes one at a
// time anyway.
type Recorder struct {
	zw  *zstd.Encoder
	enc *json.Encoder
	c   io.Closer // Underlying file, nil when recording to a plain writer
}

// NewRecorder starts a recording on w and writes the header line
func NewRecorder(w io.Writer, meta SessionMeta) (*Recorder, error) {
	meta.Version = FormatVersion
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	r := &Recorder{zw: zw, enc: json.NewEncoder(zw)}
	if err := r.enc.Encode(meta); err != nil {
		zw.Close()
		return nil, fmt.Errorf("writing session header: %w", err)
	}
	return r, nil
}

// CreateFile starts a recording in a new file at path
func CreateFile(path string, meta SessionMeta) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording file: %w", err)
	}
	r, err := NewRecorder(f, meta)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.c = f
	return r, nil
}

// RecordPass appends one pass line
func (r *Recorder) RecordPass(p PassRecord) error {
	if err := r.enc.Encode(p); err != nil {
		return fmt.Errorf("writing pass %d: %w", p.Pass, err)
	}
	return nil
}

// Close flushes the compressed stream and closes the underlying file
// if the recorder owns one.
func (r *Recorder) Close() error {
	if err := r.zw.Close(); err != nil {
		if r.c != nil {
			r.c.Close()
		}
		return fmt.Errorf("closing zstd stream: %w", err)
	}
	if r.c != nil {
		return r.c.Close()
	}
	return nil
}

// Session is a fully read recording
type Session struct {
	Meta   SessionMeta
	Passes []PassRecord
}

// ReadSession decodes a recording from r
func ReadSession(r io.Reader) (*Session, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading session header: %w", err)
		}
		return nil, fmt.Errorf("recording is empty")
	}

	var session Session
	if err := json.Unmarshal(scanner.Bytes(), &session.Meta); err != nil {
		return nil, fmt.Errorf("decoding session header: %w", err)
	}
	if session.Meta.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording version %d", session.Meta.Version)
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var pass PassRecord
		if err := json.Unmarshal(line, &pass); err != nil {
			return nil, fmt.Errorf("decoding pass %d: %w", len(session.Passes)+1, err)
		}
		session.Passes = append(session.Passes, pass)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	return &session, nil
}

// ReadSessionFile decodes a recording from a file at path
func ReadSessionFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	return ReadSession(f)
}
