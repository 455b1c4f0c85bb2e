package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/yubi/internal/app"
	"github.com/ayusman/yubi/internal/detector"
	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/metrics"
	"github.com/ayusman/yubi/internal/sensor"
	"github.com/ayusman/yubi/internal/server"
	"github.com/ayusman/yubi/internal/store"
	"github.com/ayusman/yubi/internal/synth"
	"github.com/ayusman/yubi/internal/tray"
)

// demoFrames is the length of the recording generated when none is given.
const demoFrames = 270

func serveAction(c *cli.Context) error {
	fmt.Println("Yubi - Hand Gesture Estimation")

	data, err := dataDir()
	if err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	dbPath := c.String(flagDB)
	if dbPath == "" {
		dbPath = filepath.Join(data, "yubi.db")
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	pluginDir := c.String(flagPlugins)
	if pluginDir == "" {
		pluginDir = filepath.Join(data, "plugins")
	}

	recording := c.String(flagRecording)
	if recording == "" {
		recording, err = os.MkdirTemp("", "yubi-demo-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(recording)

		scene := synth.NewScene(sensor.DefaultWidth, sensor.DefaultHeight)
		if err := scene.WriteRecording(recording, demoFrames, sensor.DefaultFPS, sensor.DefaultFPS); err != nil {
			return fmt.Errorf("generate demo recording: %w", err)
		}
		log.Printf("No recording given, playing a synthetic one from %s", recording)
	}

	m := metrics.New()
	stream := server.NewStreamHub(m)
	live := server.NewLiveHub(m)

	a := app.New(app.Config{
		Store:          st,
		Sensor:         sensor.NewRecordingSensor(recording, c.Int(flagFPS), c.Bool(flagLoop)),
		DetectorConfig: detector.DefaultConfig(),
		PluginDir:      pluginDir,
		PluginTimeout:  c.Duration(flagPluginTimeout),
		Retention:      c.Duration(flagRetention),
		Metrics:        m,
		Stream:         stream,
		Live:           live,
	})

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	for _, p := range a.PluginManager().List() {
		log.Printf("Loaded plugin %s %s (%s)", p.Manifest.Name, p.Manifest.Version, strings.Join(p.Manifest.Actions, ", "))
	}

	webDir := c.String(flagWeb)
	if webDir == "" {
		webDir = findWebDir(data)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := &http.Server{
		Addr: c.String(flagAddr),
		Handler: server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Plugins:   a.PluginManager(),
			Stream:    stream,
			Live:      live,
			Metrics:   m,
			Control:   a,
		}),
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	if c.Bool(flagTray) {
		t := tray.New(a.Enabled())
		t.OnToggle(func(enabled bool) {
			if err := a.SetEnabled(enabled); err != nil {
				log.Printf("Failed to save enabled state: %v", err)
			}
		})
		t.OnOpen(func() { openBrowser(dashboardURL(srv.Addr)) })
		t.OnQuit(cancel)
		a.OnGesture(func(r detector.Reading, ch gesture.Change) {
			t.SetLastGesture(tray.GestureTitle(string(r.Side), ch.Current.String(), ch.Fingers))
		})
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		cancel()
	}

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	return <-errCh
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", url, err)
	}
}
