package service

import (
	"bytes"
	"fmt"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"random-color-picker/internal/model"
	"random-color-picker/internal/sampler"
)

const maxSwatchSize = 1024

// Swatch renders the current color as a size x size PNG with the session
// brightness applied.
func (s *ColorService) Swatch(size int) ([]byte, error) {
	if size <= 0 || size > maxSwatchSize {
		return nil, fmt.Errorf("swatch size must be in [1,%d]", maxSwatchSize)
	}
	st := s.State()
	img := imaging.New(size, size, color.NRGBA{R: st.Current.R, G: st.Current.G, B: st.Current.B, A: 255})
	if st.Brightness < 1 {
		img = imaging.AdjustBrightness(img, (st.Brightness-1)*100)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SampleImage decodes a photo, honouring EXIF orientation, and samples its
// center the same way camera frames are sampled. The result becomes the
// detected color.
func (s *ColorService) SampleImage(data []byte) (model.ColorValue, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, err
	}
	c, err := sampler.SampleCenterColor(sampler.FromImage(img))
	if err != nil {
		return 0, err
	}
	s.SetDetected(c)
	return c, nil
}
