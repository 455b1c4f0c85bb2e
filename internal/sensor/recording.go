package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Recording layout: one meta file plus three files per frame.
const (
	metaFile        = "meta.json"
	skeletonSuffix  = ".json"
	colorSuffix     = "_color.png"
	depthSuffix     = "_depth.png"
	frameNameFormat = "%06d"
)

// RecordingMeta describes a recorded session.
type RecordingMeta struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	FPS         int         `json:"fps"`
	Multiplier  float64     `json:"multiplier"`
	ColorOffset image.Point `json:"color_offset"`
}

type frameRecord struct {
	Number      int64      `json:"number"`
	TimestampMs int64      `json:"timestamp_ms"`
	Skeletons   []Skeleton `json:"skeletons"`
}

// RecordingSensor plays back a recorded directory, releasing one frame per
// tick of its frame clock.
type RecordingSensor struct {
	dir     string
	loop    bool
	meta    RecordingMeta
	mapper  *PinholeMapper
	names   []string
	index   int
	ticker  *time.Ticker
	mu      sync.Mutex
	running bool
}

// NewRecordingSensor creates a sensor for the recording in dir.
// A non-positive fps uses the recorded rate.
func NewRecordingSensor(dir string, fps int, loop bool) *RecordingSensor {
	return &RecordingSensor{
		dir:  dir,
		loop: loop,
		meta: RecordingMeta{FPS: fps},
	}
}

// Open reads the recording index and starts the frame clock.
func (s *RecordingSensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	meta, err := readMeta(s.dir)
	if err != nil {
		return err
	}
	if s.meta.FPS > 0 {
		meta.FPS = s.meta.FPS
	}
	if meta.FPS <= 0 {
		meta.FPS = DefaultFPS
	}

	names, err := listFrames(s.dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("recording %s: %w", s.dir, ErrNoMoreFrames)
	}

	s.meta = meta
	s.mapper = &PinholeMapper{
		Width:       meta.Width,
		Height:      meta.Height,
		Multiplier:  meta.Multiplier,
		ColorOffset: meta.ColorOffset,
	}
	s.names = names
	s.index = 0
	s.ticker = time.NewTicker(time.Second / time.Duration(meta.FPS))
	s.running = true

	return nil
}

// Close stops the frame clock.
func (s *RecordingSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.running = false
	return nil
}

// NextFrame waits for the next tick and loads the next recorded frame.
func (s *RecordingSensor) NextFrame(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, ErrSensorNotOpen
	}
	tick := s.ticker.C
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-tick:
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, ErrSensorNotOpen
	}
	if s.index >= len(s.names) {
		if !s.loop {
			s.mu.Unlock()
			return nil, ErrNoMoreFrames
		}
		s.index = 0
	}
	name := s.names[s.index]
	s.index++
	meta := s.meta
	s.mu.Unlock()

	return loadFrame(s.dir, name, meta)
}

// Mapper returns the recorded coordinate mapping. It is nil before Open.
func (s *RecordingSensor) Mapper() CoordinateMapper {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mapper == nil {
		return nil
	}
	return s.mapper
}

// Resolution returns the recorded frame size.
func (s *RecordingSensor) Resolution() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Width, s.meta.Height
}

func readMeta(dir string) (RecordingMeta, error) {
	var meta RecordingMeta

	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return meta, fmt.Errorf("read recording meta: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse recording meta: %w", err)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return meta, fmt.Errorf("recording meta has invalid resolution %dx%d", meta.Width, meta.Height)
	}
	if meta.Multiplier <= 0 {
		meta.Multiplier = SkeletonToDepthMultiplier
	}
	return meta, nil
}

// listFrames returns the frame base names in playback order.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == metaFile || !strings.HasSuffix(name, skeletonSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, skeletonSuffix))
	}
	sort.Strings(names)
	return names, nil
}

func loadFrame(dir, name string, meta RecordingMeta) (*Frame, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+skeletonSuffix))
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", name, err)
	}

	var rec frameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse frame %s: %w", name, err)
	}

	depthMat := gocv.IMRead(filepath.Join(dir, name+depthSuffix), gocv.IMReadUnchanged)
	defer depthMat.Close()

	depth, err := DepthFrameFromMat(depthMat)
	if err != nil {
		return nil, fmt.Errorf("load frame %s: %w", name, err)
	}

	color := gocv.IMRead(filepath.Join(dir, name+colorSuffix), gocv.IMReadColor)
	if color.Empty() {
		color.Close()
		color = gocv.NewMatWithSize(meta.Height, meta.Width, gocv.MatTypeCV8UC3)
	}

	return &Frame{
		Number:    rec.Number,
		Timestamp: time.UnixMilli(rec.TimestampMs),
		Color:     color,
		Depth:     depth,
		Skeletons: rec.Skeletons,
	}, nil
}

// Recorder writes frames in the layout RecordingSensor reads.
type Recorder struct {
	dir   string
	meta  RecordingMeta
	count int
}

// NewRecorder creates dir if needed and writes the recording meta.
func NewRecorder(dir string, meta RecordingMeta) (*Recorder, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d", meta.Width, meta.Height)
	}
	if meta.Multiplier <= 0 {
		meta.Multiplier = SkeletonToDepthMultiplier
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create recording dir: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0644); err != nil {
		return nil, fmt.Errorf("write recording meta: %w", err)
	}

	return &Recorder{dir: dir, meta: meta}, nil
}

// Write appends a frame to the recording.
func (r *Recorder) Write(f *Frame) error {
	if f.Depth == nil {
		return errors.New("frame has no depth")
	}
	if f.Depth.Width != r.meta.Width || f.Depth.Height != r.meta.Height {
		return fmt.Errorf("frame is %dx%d, recording is %dx%d",
			f.Depth.Width, f.Depth.Height, r.meta.Width, r.meta.Height)
	}

	name := fmt.Sprintf(frameNameFormat, r.count)
	base := filepath.Join(r.dir, name)

	depthMat, err := f.Depth.ToMat()
	if err != nil {
		return err
	}
	defer depthMat.Close()

	if ok := gocv.IMWrite(base+depthSuffix, depthMat); !ok {
		return fmt.Errorf("write depth for frame %s", name)
	}

	if !f.Color.Empty() {
		if ok := gocv.IMWrite(base+colorSuffix, f.Color); !ok {
			return fmt.Errorf("write color for frame %s", name)
		}
	}

	rec := frameRecord{
		Number:      f.Number,
		TimestampMs: f.Timestamp.UnixMilli(),
		Skeletons:   f.Skeletons,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// The skeleton file goes last: its presence marks the frame complete.
	if err := os.WriteFile(base+skeletonSuffix, data, 0644); err != nil {
		return fmt.Errorf("write skeletons for frame %s: %w", name, err)
	}

	r.count++
	return nil
}

// Count returns the number of frames written.
func (r *Recorder) Count() int {
	return r.count
}
