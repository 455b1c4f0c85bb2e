package hand

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/yubi/internal/sensor"
)

// maxSensorDepth is the largest distance a packed depth pixel can carry.
const maxSensorDepth = 1<<13 - 1

// Segment thresholds the depth inside rect around center (millimeters) and
// returns a binary MaskSize x MaskSize silhouette. Zero samples are replaced
// with the invalid depth sentinel first, so they are never foreground.
// The caller must close the returned Mat.
func Segment(depth *sensor.DepthFrame, rect image.Rectangle, center uint16, cfg Config) (gocv.Mat, error) {
	region := sensor.NewDepthFrame(rect.Dx(), rect.Dy())
	for y := 0; y < region.Height; y++ {
		for x := 0; x < region.Width; x++ {
			mm := depth.At(rect.Min.X+x, rect.Min.Y+y)
			if mm == 0 {
				mm = cfg.InvalidDepthSentinel
			}
			region.Data[y*region.Width+x] = mm
		}
	}

	src, err := region.ToMat()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("segment: %w", err)
	}
	defer src.Close()

	lower := max(int(center)-cfg.NearBand, 0)
	upper := min(int(center)+cfg.FarBand, int(cfg.InvalidDepthSentinel)-1)

	band := gocv.NewMat()
	defer band.Close()
	gocv.InRangeWithScalar(src,
		gocv.NewScalar(float64(lower), 0, 0, 0),
		gocv.NewScalar(float64(upper), 0, 0, 0),
		&band)
	if band.Empty() {
		return gocv.NewMat(), fmt.Errorf("segment: threshold produced no mask for %v", rect)
	}

	mask := gocv.NewMat()
	gocv.Resize(band, &mask, image.Pt(cfg.MaskSize, cfg.MaskSize), 0, 0, gocv.InterpolationNearestNeighbor)
	if mask.Empty() {
		mask.Close()
		return gocv.NewMat(), fmt.Errorf("segment: resize to %d failed", cfg.MaskSize)
	}
	return mask, nil
}
