// Package app wires the sensor, the hand detector and the action plugins
// into the running gesture service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/yubi/internal/detector"
	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/metrics"
	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/sensor"
	"github.com/ayusman/yubi/internal/store"
)

// enabledSetting is the settings key that persists the on/off switch.
const enabledSetting = "enabled"

// pruneInterval is how often old readings are deleted when Retention is set.
const pruneInterval = time.Minute

// FramePublisher receives annotated JPEG frames.
type FramePublisher interface {
	Publish(jpeg []byte)
}

// Broadcaster receives per-frame reading messages.
type Broadcaster interface {
	Broadcast(v any) error
}

// Config holds configuration options for the application.
type Config struct {
	Store  *store.Store
	Sensor sensor.Sensor

	// Detector overrides the depth detector built from DetectorConfig.
	Detector       detector.Detector
	DetectorConfig detector.Config

	PluginDir     string
	PluginTimeout time.Duration

	// Retention bounds the age of stored readings. Zero keeps everything.
	Retention time.Duration

	Metrics *metrics.Metrics
	Stream  FramePublisher
	Live    Broadcaster
}

// App runs the estimation pipeline and executes actions on gesture changes.
type App struct {
	config     Config
	detector   detector.Detector
	tracker    *gesture.Tracker
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	enabled   bool
	cancel    context.CancelFunc
	done      chan struct{}
	actions   sync.WaitGroup
	onGesture []func(detector.Reading, gesture.Change)
}

// New creates a new App. Estimation starts enabled unless the store says
// otherwise.
func New(config Config) *App {
	if len(config.DetectorConfig.Sides) == 0 {
		config.DetectorConfig = detector.DefaultConfig()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}

	a := &App{
		config:     config,
		detector:   config.Detector,
		tracker:    gesture.NewTracker(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
		enabled:    true,
	}

	if config.Store != nil {
		v, err := config.Store.Settings().Get(enabledSetting)
		switch {
		case err == nil:
			if b, perr := strconv.ParseBool(v); perr == nil {
				a.enabled = b
			}
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("Failed to read %s setting: %v", enabledSetting, err)
		}
	}

	return a
}

// Enabled reports whether frames are being estimated.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetEnabled turns estimation on or off and persists the choice.
// Disabling forgets every hand's last gesture.
func (a *App) SetEnabled(enabled bool) error {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.tracker.Reset()
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(enabledSetting, strconv.FormatBool(enabled)); err != nil {
			return fmt.Errorf("save %s setting: %w", enabledSetting, err)
		}
	}
	return nil
}

// OnGesture registers fn to be called whenever a hand changes label.
func (a *App) OnGesture(fn func(detector.Reading, gesture.Change)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = append(a.onGesture, fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Metrics returns the metrics the pipeline updates.
func (a *App) Metrics() *metrics.Metrics {
	return a.config.Metrics
}

// Start opens the sensor and runs the pipeline until ctx is done, Stop is
// called, or a playback sensor runs out of frames.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.config.Sensor == nil {
		return errors.New("no sensor configured")
	}

	if err := a.config.Sensor.Open(); err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}

	if a.detector == nil {
		d, err := detector.NewDepthDetector(a.config.DetectorConfig, a.config.Sensor.Mapper())
		if err != nil {
			a.config.Sensor.Close()
			return fmt.Errorf("create detector: %w", err)
		}
		a.detector = d
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		a.runPipeline(ctx)
	}(a.done)

	log.Println("Estimation pipeline started")
	return nil
}

// Done is closed when the pipeline goroutine exits. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Stop halts the pipeline, waits for running actions and releases the
// sensor and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	a.actions.Wait()

	if err := a.config.Sensor.Close(); err != nil {
		log.Printf("Error closing sensor: %v", err)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Estimation pipeline stopped")
}
