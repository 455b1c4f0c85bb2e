package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"

	"gocv.io/x/gocv"
)

// Packed depth pixel layout: the low bits carry the player index.
const (
	playerIndexBits = 3
	playerIndexMask = 1<<playerIndexBits - 1
)

// DepthFrame is a grid of distances in millimeters. Zero means no return.
type DepthFrame struct {
	Width  int
	Height int
	Data   []uint16
}

// NewDepthFrame creates a zeroed depth frame.
func NewDepthFrame(width, height int) *DepthFrame {
	return &DepthFrame{
		Width:  width,
		Height: height,
		Data:   make([]uint16, width*height),
	}
}

// Contains reports whether (x, y) is a pixel of the frame.
func (d *DepthFrame) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < d.Width && y < d.Height
}

// At returns the distance at (x, y), or 0 outside the frame.
func (d *DepthFrame) At(x, y int) uint16 {
	if !d.Contains(x, y) {
		return 0
	}
	return d.Data[y*d.Width+x]
}

// Set stores a distance at (x, y). Writes outside the frame are ignored.
func (d *DepthFrame) Set(x, y int, mm uint16) {
	if !d.Contains(x, y) {
		return
	}
	d.Data[y*d.Width+x] = mm
}

// Fill sets every pixel to mm.
func (d *DepthFrame) Fill(mm uint16) {
	for i := range d.Data {
		d.Data[i] = mm
	}
}

// Clone returns a deep copy.
func (d *DepthFrame) Clone() *DepthFrame {
	return &DepthFrame{
		Width:  d.Width,
		Height: d.Height,
		Data:   append([]uint16(nil), d.Data...),
	}
}

// UnpackDepth splits raw sensor pixels into distances and player indices.
// Player index 0 means no player.
func UnpackDepth(raw []uint16, width, height int) (*DepthFrame, []uint8, error) {
	if len(raw) != width*height {
		return nil, nil, fmt.Errorf("raw depth has %d pixels, expected %dx%d", len(raw), width, height)
	}

	frame := NewDepthFrame(width, height)
	players := make([]uint8, len(raw))
	for i, px := range raw {
		frame.Data[i] = px >> playerIndexBits
		players[i] = uint8(px & playerIndexMask)
	}
	return frame, players, nil
}

// ToMat converts the frame to a single channel 16-bit Mat.
// The caller is responsible for closing the returned Mat.
func (d *DepthFrame) ToMat() (gocv.Mat, error) {
	buf := make([]byte, len(d.Data)*2)
	for i, v := range d.Data {
		binary.NativeEndian.PutUint16(buf[i*2:], v)
	}

	view, err := gocv.NewMatFromBytes(d.Height, d.Width, gocv.MatTypeCV16UC1, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("depth mat: %w", err)
	}
	defer view.Close()

	// The view borrows buf; the clone owns its pixels.
	m := view.Clone()
	runtime.KeepAlive(buf)
	return m, nil
}

// DepthFrameFromMat copies a single channel 16-bit Mat into a DepthFrame.
func DepthFrameFromMat(m gocv.Mat) (*DepthFrame, error) {
	if m.Empty() {
		return nil, errors.New("depth mat is empty")
	}
	if m.Type() != gocv.MatTypeCV16UC1 {
		return nil, fmt.Errorf("depth mat has type %v, expected CV16UC1", m.Type())
	}

	data, err := m.DataPtrUint16()
	if err != nil {
		return nil, fmt.Errorf("depth mat data: %w", err)
	}

	frame := NewDepthFrame(m.Cols(), m.Rows())
	copy(frame.Data, data)
	return frame, nil
}
