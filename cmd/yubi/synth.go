package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/yubi/internal/sensor"
	"github.com/ayusman/yubi/internal/synth"
)

func synthAction(c *cli.Context) error {
	frames := c.Int(flagFrames)
	if frames <= 0 {
		return fmt.Errorf("--%s must be positive", flagFrames)
	}

	out := c.String(flagOut)
	scene := synth.NewScene(sensor.DefaultWidth, sensor.DefaultHeight)
	if err := scene.WriteRecording(out, frames, c.Int(flagHold), c.Int(flagFPS)); err != nil {
		return err
	}

	fmt.Printf("Wrote %d frames to %s\n", frames, out)
	return nil
}
