package sampler

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"random-color-picker/internal/model"
)

func solidFrame(y, u, v byte) Frame {
	fill := func(n int, b byte) []byte {
		out := make([]byte, n)
		for i := range out {
			out[i] = b
		}
		return out
	}
	return Frame{
		Width:  2,
		Height: 2,
		Planes: [3]Plane{
			{Data: fill(4, y), RowStride: 2, PixelStride: 1},
			{Data: fill(1, u), RowStride: 1, PixelStride: 1},
			{Data: fill(1, v), RowStride: 1, PixelStride: 1},
		},
	}
}

func TestAnalyzerKeepsOnlyLatest(t *testing.T) {
	got := make(chan model.ColorValue, 4)
	a := NewAnalyzer(func(c model.ColorValue) { got <- c })

	assert.True(t, a.Submit(solidFrame(0, 128, 128)))
	assert.False(t, a.Submit(solidFrame(255, 128, 128)), "pending frame should be replaced")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	select {
	case c := <-got:
		assert.Equal(t, model.FromRGB(255, 255, 255), c)
	case <-time.After(time.Second):
		t.Fatal("no color sampled")
	}
	select {
	case c := <-got:
		t.Fatalf("dropped frame was analyzed: %+v", c.RGB())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAnalyzerAccountsForEveryFrame(t *testing.T) {
	var processed atomic.Int64
	a := NewAnalyzer(func(model.ColorValue) { processed.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	const submits = 2000
	dropped := 0
	for i := 0; i < submits; i++ {
		if !a.Submit(solidFrame(byte(i), 128, 128)) {
			dropped++
		}
	}
	// each frame is either sampled or reported as dropped, never both
	require.Eventually(t, func() bool { return int(processed.Load())+dropped == submits }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, submits, int(processed.Load())+dropped)
}

func TestAnalyzerSkipsInvalidFrames(t *testing.T) {
	got := make(chan model.ColorValue, 1)
	a := NewAnalyzer(func(c model.ColorValue) { got <- c })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Submit(Frame{Width: 4, Height: 4})
	a.Submit(solidFrame(0, 128, 128))
	select {
	case c := <-got:
		assert.Equal(t, model.FromRGB(0, 0, 0), c)
	case <-time.After(time.Second):
		t.Fatal("no color sampled")
	}
}

func TestFromImageConverts(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	c, err := SampleCenterColor(FromImage(img))
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(255, 255, 255), c)
}

func TestFromImageYCbCrInPlace(t *testing.T) {
	ycc := image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio420)
	for i := range ycc.Y {
		ycc.Y[i] = 100
	}
	for i := range ycc.Cb {
		ycc.Cb[i] = 150
		ycc.Cr[i] = 90
	}
	f := FromImage(ycc)
	assert.Equal(t, 4, f.Width)
	c, err := SampleCenterColor(f)
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(47, 119, 138), c)
}

func TestI420(t *testing.T) {
	buf := make([]byte, 4*4+2*4)
	for i := 0; i < 16; i++ {
		buf[i] = 255
	}
	for i := 16; i < len(buf); i++ {
		buf[i] = 128
	}
	f, err := I420(buf, 4, 4)
	require.NoError(t, err)
	c, err := SampleCenterColor(f)
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(255, 255, 255), c)

	_, err = I420(buf[:10], 4, 4)
	assert.ErrorIs(t, err, ErrInvalidFrameFormat)
}

func TestFromImageReadsCenterBlockOnly(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 17, 25))
	for y := 20; y < 25; y++ {
		for x := 10; x < 17; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 9), G: uint8(y * 7), B: uint8(x * y), A: 255})
		}
	}
	f := FromImage(img)
	assert.Equal(t, 2, f.Width)
	assert.Equal(t, 2, f.Height)

	// center is (13,22); its chroma comes from the even-aligned pixel (12,22)
	cy, _, _ := color.RGBToYCbCr(13*9, 22*7, 13*22%256)
	_, cb, cr := color.RGBToYCbCr(12*9, 22*7, 12*22%256)
	c, err := SampleCenterColor(f)
	require.NoError(t, err)
	assert.Equal(t, ConvertYUV(cy, cb, cr).Value(), c)
}
