package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"random-color-picker/internal/model"
)

var ErrInvalidColor = errors.New("invalid color")

// applyBrightness scales the HSV value of c by brightness.
func applyBrightness(c model.ColorValue, brightness float64) model.ColorValue {
	if brightness >= 1 {
		return c
	}
	cf := colorful.Color{R: float64(c.R()) / 255, G: float64(c.G()) / 255, B: float64(c.B()) / 255}
	h, s, v := cf.Hsv()
	r, g, b := colorful.Hsv(h, s, v*math.Max(brightness, 0)).Clamped().RGB255()
	return model.FromRGB(r, g, b)
}

// ParseColor accepts "#RRGGBB" or the signed integer form stored in history.
func ParseColor(s string) (model.ColorValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidColor
	}
	if strings.HasPrefix(s, "#") {
		cf, err := colorful.Hex(s)
		if err != nil {
			return 0, ErrInvalidColor
		}
		r, g, b := cf.RGB255()
		return model.FromRGB(r, g, b), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidColor
	}
	return model.FromInt64(n), nil
}
