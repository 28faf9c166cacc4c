package sampler

import (
	"image"
	"image/color"
)

// FromImage exposes img as a 4:2:0 frame. 4:2:0 YCbCr images (baseline
// JPEG) are used in place. Anything else is reduced to a 2x2 frame holding
// only the pixels the center sample reads: luma of the center pixel and
// chroma of the even-aligned pixel whose 2x2 block contains it.
func FromImage(img image.Image) Frame {
	if ycc, ok := img.(*image.YCbCr); ok && ycc.SubsampleRatio == image.YCbCrSubsampleRatio420 {
		return fromYCbCr(ycc)
	}

	b := img.Bounds()
	if b.Empty() {
		return Frame{Width: b.Dx(), Height: b.Dy()}
	}
	cx, cy := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2
	ycc := func(x, y int) (uint8, uint8, uint8) {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		return color.RGBToYCbCr(c.R, c.G, c.B)
	}

	luma := make([]byte, 4)
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			x, y := cx-1+dx, cy-1+dy
			if x < b.Min.X {
				x = b.Min.X
			}
			if y < b.Min.Y {
				y = b.Min.Y
			}
			luma[dy*2+dx], _, _ = ycc(x, y)
		}
	}
	_, cb, cr := ycc(b.Min.X+(b.Dx()/2)&^1, b.Min.Y+(b.Dy()/2)&^1)
	return Frame{
		Width:  2,
		Height: 2,
		Planes: [3]Plane{
			{Data: luma, RowStride: 2, PixelStride: 1},
			{Data: []byte{cb}, RowStride: 1, PixelStride: 1},
			{Data: []byte{cr}, RowStride: 1, PixelStride: 1},
		},
	}
}

func fromYCbCr(ycc *image.YCbCr) Frame {
	origin := ycc.Rect.Min
	yOff := ycc.YOffset(origin.X, origin.Y)
	cOff := ycc.COffset(origin.X, origin.Y)
	return Frame{
		Width:  ycc.Rect.Dx(),
		Height: ycc.Rect.Dy(),
		Planes: [3]Plane{
			{Data: ycc.Y[yOff:], RowStride: ycc.YStride, PixelStride: 1},
			{Data: ycc.Cb[cOff:], RowStride: ycc.CStride, PixelStride: 1},
			{Data: ycc.Cr[cOff:], RowStride: ycc.CStride, PixelStride: 1},
		},
	}
}

// I420 wraps a tightly packed I420 buffer (Y, then U, then V) as a frame.
func I420(buf []byte, width, height int) (Frame, error) {
	cw, ch := (width+1)/2, (height+1)/2
	ySize, cSize := width*height, cw*ch
	if width <= 0 || height <= 0 || len(buf) < ySize+2*cSize {
		return Frame{}, ErrInvalidFrameFormat
	}
	return Frame{
		Width:  width,
		Height: height,
		Planes: [3]Plane{
			{Data: buf[:ySize], RowStride: width, PixelStride: 1},
			{Data: buf[ySize : ySize+cSize], RowStride: cw, PixelStride: 1},
			{Data: buf[ySize+cSize : ySize+2*cSize], RowStride: cw, PixelStride: 1},
		},
	}, nil
}
