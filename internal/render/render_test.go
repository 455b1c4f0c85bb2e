package render

import (
	"bytes"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/yubi/internal/detector"
	"github.com/ayusman/yubi/internal/hand"
)

func blank(t *testing.T) gocv.Mat {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { img.Close() })
	return img
}

// painted reports whether any pixel within r of p is not black.
func painted(img gocv.Mat, p image.Point, r int) bool {
	for y := p.Y - r; y <= p.Y+r; y++ {
		for x := p.X - r; x <= p.X+r; x++ {
			if x < 0 || y < 0 || x >= img.Cols() || y >= img.Rows() {
				continue
			}
			v := img.GetVecbAt(y, x)
			if v[0] != 0 || v[1] != 0 || v[2] != 0 {
				return true
			}
		}
	}
	return false
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name    string
		reading detector.Reading
		want    string
	}{
		{"paper", detector.GestureReading(1, detector.SideLeft, 5), "5 fingers paper"},
		{"rock", detector.GestureReading(1, detector.SideRight, 0), "0 fingers rock"},
		{"unknown", detector.GestureReading(1, detector.SideRight, 3), "3 fingers unknown"},
		{"missing", detector.MissingReading(1, detector.SideLeft, hand.OutcomeNoHand), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.reading); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSideColor(t *testing.T) {
	if c := SideColor(detector.SideLeft); c.R != 255 || c.B != 0 {
		t.Errorf("left color = %v, want red", c)
	}
	if c := SideColor(detector.SideRight); c.B != 255 || c.R != 0 {
		t.Errorf("right color = %v, want blue", c)
	}
}

func TestDraw(t *testing.T) {
	img := blank(t)
	reading := detector.GestureReading(1, detector.SideLeft, 2)

	Draw(&img, []detector.Reading{reading})

	center := img.GetVecbAt(reading.Result.Center.Y, reading.Result.Center.X)
	if center[0] != 0 || center[1] != 255 || center[2] != 0 {
		t.Errorf("center pixel = %v, want green", center)
	}
	for _, tip := range reading.Result.Fingertips {
		if !painted(img, tip, tipRadius+1) {
			t.Errorf("no fingertip marker near %v", tip)
		}
	}
	if !painted(img, image.Pt(textX+5, 25), 6) {
		t.Error("left caption not drawn near y=30")
	}
	if painted(img, image.Pt(textX+5, 48), 2) {
		t.Error("right caption area painted for a left hand")
	}
	if painted(img, image.Pt(600, 450), 10) {
		t.Error("pixels far from the hand were painted")
	}
}

func TestDraw_SkipsMissing(t *testing.T) {
	img := blank(t)

	Draw(&img, []detector.Reading{
		detector.MissingReading(1, detector.SideLeft, hand.OutcomeOutOfBounds),
		detector.MissingReading(1, detector.SideRight, hand.OutcomeNotTracked),
	})

	if painted(img, image.Pt(320, 240), 240) {
		t.Error("missing readings painted the image")
	}
}

func TestDraw_EmptyImage(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	Draw(&img, []detector.Reading{detector.GestureReading(1, detector.SideLeft, 5)})
}

func TestEncodeJPEG(t *testing.T) {
	img := blank(t)
	Draw(&img, []detector.Reading{detector.GestureReading(2, detector.SideRight, 5)})

	data, err := EncodeJPEG(img)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("output does not start with a JPEG marker")
	}
}
