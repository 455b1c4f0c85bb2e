package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/sensor"
)

const (
	flagRecording     = "recording"
	flagFPS           = "fps"
	flagLoop          = "loop"
	flagAddr          = "addr"
	flagDB            = "db"
	flagPlugins       = "plugins"
	flagPluginTimeout = "plugin-timeout"
	flagWeb           = "web"
	flagTray          = "tray"
	flagRetention     = "retention"
	flagOut           = "out"
	flagFrames        = "frames"
	flagHold          = "hold"
)

func main() {
	app := &cli.App{
		Name:            "yubi",
		Usage:           "recognize rock, scissors and paper from depth frames",
		HideHelpCommand: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the estimation pipeline and the HTTP server",
				Action: serveAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagRecording,
						Usage:   "play back the recording in `DIR` (default: a generated synthetic recording)",
						EnvVars: []string{"YUBI_RECORDING"},
					},
					&cli.IntFlag{
						Name:  flagFPS,
						Usage: "playback frame rate (0 uses the recorded rate)",
					},
					&cli.BoolFlag{
						Name:  flagLoop,
						Usage: "restart the recording when it ends",
						Value: true,
					},
					&cli.StringFlag{
						Name:    flagAddr,
						Usage:   "HTTP listen address",
						Value:   ":8080",
						EnvVars: []string{"YUBI_ADDR"},
					},
					&cli.StringFlag{
						Name:    flagDB,
						Usage:   "SQLite database `FILE` (default: ~/.yubi/yubi.db)",
						EnvVars: []string{"YUBI_DB"},
					},
					&cli.StringFlag{
						Name:    flagPlugins,
						Usage:   "plugin `DIR` (default: ~/.yubi/plugins)",
						EnvVars: []string{"YUBI_PLUGINS"},
					},
					&cli.DurationFlag{
						Name:  flagPluginTimeout,
						Usage: "maximum run time of one plugin action",
						Value: plugin.DefaultTimeout,
					},
					&cli.StringFlag{
						Name:  flagWeb,
						Usage: "serve static files from `DIR` (default: search ./web and ~/.yubi/web)",
					},
					&cli.BoolFlag{
						Name:  flagTray,
						Usage: "show a system tray menu",
					},
					&cli.DurationFlag{
						Name:  flagRetention,
						Usage: "delete readings older than this (0 keeps all)",
					},
				},
			},
			{
				Name:   "synth",
				Usage:  "write a synthetic recording cycling rock, scissors and paper",
				Action: synthAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Usage:    "output `DIR`",
						Required: true,
					},
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "number of frames",
						Value: 270,
					},
					&cli.IntFlag{
						Name:  flagHold,
						Usage: "frames each pose is held",
						Value: sensor.DefaultFPS,
					},
					&cli.IntFlag{
						Name:  flagFPS,
						Usage: "recorded frame rate",
						Value: sensor.DefaultFPS,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// dataDir returns ~/.yubi, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(homeDir, ".yubi")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(data string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(data, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// shutdownTimeout bounds the HTTP server's graceful shutdown.
const shutdownTimeout = 5 * time.Second
