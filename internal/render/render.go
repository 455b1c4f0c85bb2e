// Package render draws hand estimates onto color frames and encodes them
// for streaming.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/yubi/internal/detector"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	tipRadius    = 6
	markerRadius = 4
	textX        = 10
	fontScale    = 1.5
)

// SideColor returns the overlay color for a hand side.
func SideColor(side detector.Side) color.RGBA {
	if side == detector.SideRight {
		return blue
	}
	return red
}

// textOrigin returns where the caption for a side starts.
func textOrigin(side detector.Side) image.Point {
	if side == detector.SideRight {
		return image.Pt(textX, 50)
	}
	return image.Pt(textX, 30)
}

// Caption returns the overlay text for a reading, or "" when the hand
// was not detected.
func Caption(r detector.Reading) string {
	if !r.Result.Detected() {
		return ""
	}
	return fmt.Sprintf("%d fingers %s", r.Result.Fingers(), r.Result.Label)
}

// Draw annotates img in place with every detected reading.
func Draw(img *gocv.Mat, readings []detector.Reading) {
	if img.Empty() {
		return
	}
	for _, r := range readings {
		if !r.Result.Detected() {
			continue
		}
		c := SideColor(r.Side)
		res := r.Result

		gocv.Line(img, res.Wrist, res.Center, white, 2)
		gocv.Circle(img, res.Center, markerRadius, green, -1)
		gocv.Circle(img, res.Wrist, markerRadius, white, -1)
		for _, tip := range res.Fingertips {
			gocv.Circle(img, tip, tipRadius, c, 2)
		}
		gocv.PutText(img, Caption(r), textOrigin(r.Side), gocv.FontHersheyPlain, fontScale, c, 2)
	}
}

// EncodeJPEG encodes img as a JPEG.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
