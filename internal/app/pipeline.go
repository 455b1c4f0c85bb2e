package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/yubi/internal/detector"
	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/render"
	"github.com/ayusman/yubi/internal/sensor"
	"github.com/ayusman/yubi/internal/store"
)

// errorBackoff is the pause after a sensor read error.
const errorBackoff = 100 * time.Millisecond

// LiveMessage is broadcast to live clients for every processed frame.
type LiveMessage struct {
	Frame     int64              `json:"frame"`
	Timestamp int64              `json:"timestamp"`
	Enabled   bool               `json:"enabled"`
	Readings  []detector.Reading `json:"readings"`
}

// runPipeline pulls frames until ctx is done or the sensor runs dry.
//
// For each frame:
// 1. Estimate every tracked hand (skipped while disabled)
// 2. Record detected hands and update metrics
// 3. Run the bound action when a hand changes label
// 4. Annotate the color image and publish it with the readings
func (a *App) runPipeline(ctx context.Context) {
	lastPrune := time.Time{}

	for {
		frame, err := a.config.Sensor.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, sensor.ErrNoMoreFrames) {
				log.Println("Sensor has no more frames")
				return
			}
			a.config.Metrics.FrameErrors.Add(1)
			log.Printf("Error reading frame: %v", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}

		a.processFrame(ctx, frame)
		frame.Close()

		if a.config.Retention > 0 && time.Since(lastPrune) > pruneInterval {
			a.prune()
			lastPrune = time.Now()
		}
	}
}

// processFrame runs one frame through the pipeline. The caller closes it.
func (a *App) processFrame(ctx context.Context, frame *sensor.Frame) {
	a.config.Metrics.Frames.Add(1)

	enabled := a.Enabled()

	var readings []detector.Reading
	if enabled {
		var err error
		readings, err = a.detector.Detect(frame)
		if err != nil {
			a.config.Metrics.FrameErrors.Add(1)
			log.Printf("Error detecting hands in frame %d: %v", frame.Number, err)
			readings = nil
		}
	}

	for _, r := range readings {
		a.config.Metrics.ObserveReading(string(r.Result.Outcome), string(r.Result.Label), r.Elapsed)
		a.record(r)

		prev := a.tracker.Last(r.Key())
		if a.tracker.Update(r.Key(), r.Result.Label, r.Result.Fingers()) {
			a.gestureChanged(ctx, r, prev)
		}
	}

	if a.config.Stream != nil && !frame.Color.Empty() {
		render.Draw(&frame.Color, readings)
		if jpeg, err := render.EncodeJPEG(frame.Color); err == nil {
			a.config.Stream.Publish(jpeg)
		}
	}

	if a.config.Live != nil {
		msg := LiveMessage{
			Frame:     frame.Number,
			Timestamp: frame.Timestamp.UnixMilli(),
			Enabled:   enabled,
			Readings:  readings,
		}
		if msg.Readings == nil {
			msg.Readings = []detector.Reading{}
		}
		if err := a.config.Live.Broadcast(msg); err != nil {
			log.Printf("Error broadcasting readings: %v", err)
		}
	}
}

// record stores a detected reading.
func (a *App) record(r detector.Reading) {
	if a.config.Store == nil || !r.Result.Detected() {
		return
	}

	err := a.config.Store.Readings().Create(&store.Reading{
		ID:          uuid.New().String(),
		SkeletonID:  r.SkeletonID,
		Side:        string(r.Side),
		Outcome:     string(r.Result.Outcome),
		FingerCount: r.Result.Fingers(),
		Label:       string(r.Result.Label),
		Fingertips:  r.Result.Fingertips,
	})
	if err != nil {
		log.Printf("Failed to store reading for %s: %v", r.Key(), err)
	}
}

func (a *App) prune() {
	if a.config.Store == nil {
		return
	}
	n, err := a.config.Store.Readings().DeleteBefore(time.Now().Add(-a.config.Retention))
	if err != nil {
		log.Printf("Failed to prune readings: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d old readings", n)
	}
}

// gestureChanged notifies listeners and starts the bound action.
func (a *App) gestureChanged(ctx context.Context, r detector.Reading, prev gesture.Label) {
	change := gesture.Change{
		Key:      r.Key(),
		Previous: prev,
		Current:  r.Result.Label,
		Fingers:  r.Result.Fingers(),
		At:       time.Now(),
	}

	a.mu.RLock()
	listeners := append([]func(detector.Reading, gesture.Change){}, a.onGesture...)
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(r, change)
	}

	log.Printf("Hand %s: %s -> %s (%d fingers)", change.Key, change.Previous, change.Current, change.Fingers)

	a.actions.Add(1)
	go func() {
		defer a.actions.Done()
		a.executeAction(ctx, r, change)
	}()
}

// executeAction runs the plugin action bound to the new label, if any.
func (a *App) executeAction(ctx context.Context, r detector.Reading, change gesture.Change) {
	if a.config.Store == nil || !change.Current.Bindable() {
		return
	}

	action, err := a.config.Store.Actions().GetByLabel(string(change.Current))
	if err != nil {
		log.Printf("Failed to look up action for %s: %v", change.Current, err)
		return
	}
	if action == nil {
		return
	}

	p, err := a.pluginMgr.Resolve(action.PluginName, action.ActionName)
	if err != nil {
		a.config.Metrics.ObserveAction(err)
		log.Printf("Action %s for %s: %v", action.ID, change.Current, err)
		return
	}

	req := &plugin.Request{
		Action:     action.ActionName,
		Label:      string(change.Current),
		Side:       string(r.Side),
		SkeletonID: r.SkeletonID,
		Fingers:    change.Fingers,
		Config:     action.Config,
	}
	if change.Previous != gesture.LabelNone {
		req.Previous = string(change.Previous)
	}

	resp, err := a.pluginExec.Execute(ctx, p, req)
	if err == nil && !resp.Success {
		err = errors.New(resp.Error)
	}
	a.config.Metrics.ObserveAction(err)
	if err != nil {
		log.Printf("Plugin %s/%s failed for %s: %v", p.Manifest.Name, action.ActionName, change.Current, err)
		return
	}

	log.Printf("Ran %s/%s for %s", p.Manifest.Name, action.ActionName, change.Current)
}
