// Package sampler reads the center color of planar YUV camera frames.
package sampler

import (
	"errors"
	"fmt"
	"math"

	"random-color-picker/internal/model"
)

var ErrInvalidFrameFormat = errors.New("invalid frame format")

// Plane is one row-major byte plane of a frame.
type Plane struct {
	Data        []byte `json:"data"`
	RowStride   int    `json:"row_stride"`
	PixelStride int    `json:"pixel_stride"`
}

// Frame is a 4:2:0 frame: Planes holds Y, U and V in that order, with the
// chroma planes subsampled 2:1 in both dimensions.
type Frame struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Planes [3]Plane `json:"planes"`
}

// SampleCenterColor converts the pixel at (Width/2, Height/2) to RGB.
// It only reads the frame's buffers.
func SampleCenterColor(f Frame) (model.ColorValue, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return 0, fmt.Errorf("%w: size %dx%d", ErrInvalidFrameFormat, f.Width, f.Height)
	}
	cx, cy := f.Width/2, f.Height/2

	y, err := readAt(f.Planes[0], "y", cx, cy)
	if err != nil {
		return 0, err
	}
	u, err := readAt(f.Planes[1], "u", cx/2, cy/2)
	if err != nil {
		return 0, err
	}
	v, err := readAt(f.Planes[2], "v", cx/2, cy/2)
	if err != nil {
		return 0, err
	}
	return ConvertYUV(y, u, v).Value(), nil
}

func readAt(p Plane, name string, col, row int) (byte, error) {
	if p.RowStride < 0 || p.PixelStride <= 0 {
		return 0, fmt.Errorf("%w: %s plane strides row=%d pixel=%d", ErrInvalidFrameFormat, name, p.RowStride, p.PixelStride)
	}
	off, ok := planeOffset(p, col, row)
	if !ok {
		return 0, fmt.Errorf("%w: %s plane offset overflows for strides row=%d pixel=%d", ErrInvalidFrameFormat, name, p.RowStride, p.PixelStride)
	}
	if off >= len(p.Data) {
		return 0, fmt.Errorf("%w: %s plane offset %d beyond %d bytes", ErrInvalidFrameFormat, name, off, len(p.Data))
	}
	return p.Data[off], nil
}

// planeOffset computes row*RowStride + col*PixelStride, reporting false when
// the result does not fit in an int. Strides are already known non-negative.
func planeOffset(p Plane, col, row int) (int, bool) {
	if row > 0 && p.RowStride > math.MaxInt/row {
		return 0, false
	}
	if col > 0 && p.PixelStride > math.MaxInt/col {
		return 0, false
	}
	rowOff, colOff := row*p.RowStride, col*p.PixelStride
	if rowOff > math.MaxInt-colOff {
		return 0, false
	}
	return rowOff + colOff, true
}

// ConvertYUV applies the full-range YUV to RGB transform. u and v are raw
// samples and are biased by -128 here.
func ConvertYUV(y, u, v byte) model.RGB {
	yf := float64(y)
	uf := float64(int(u) - 128)
	vf := float64(int(v) - 128)

	r := int(yf + 1.370705*vf)
	g := int(yf - 0.337633*uf - 0.698001*vf)
	b := int(yf + 1.732446*uf)
	return model.RGB{
		R: uint8(clampChannel(r)),
		G: uint8(clampChannel(g)),
		B: uint8(clampChannel(b)),
	}
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
