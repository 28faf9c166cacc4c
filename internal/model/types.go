package model

import "fmt"

// ColorValue is a packed 0xAARRGGBB color. Values produced here are always opaque.
type ColorValue uint32

const opaque ColorValue = 0xFF000000

func FromRGB(r, g, b uint8) ColorValue {
	return opaque | ColorValue(r)<<16 | ColorValue(g)<<8 | ColorValue(b)
}

// FromInt64 takes the low 24 bits of v as RGB and forces alpha to opaque.
func FromInt64(v int64) ColorValue {
	return opaque | ColorValue(uint32(v)&0x00FFFFFF)
}

func (c ColorValue) R() uint8 { return uint8(c >> 16) }
func (c ColorValue) G() uint8 { return uint8(c >> 8) }
func (c ColorValue) B() uint8 { return uint8(c) }

func (c ColorValue) RGB() RGB {
	return RGB{R: c.R(), G: c.G(), B: c.B()}
}

// Int32 is the signed ARGB form used in persisted history.
func (c ColorValue) Int32() int32 {
	return int32(c)
}

func (c ColorValue) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R(), c.G(), c.B())
}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) Value() ColorValue {
	return FromRGB(c.R, c.G, c.B)
}

type ColorState struct {
	Current         RGB     `json:"current"`
	HexCode         string  `json:"hex_code"`
	RGBCode         string  `json:"rgb_code"`
	Brightness      float64 `json:"brightness"`
	Display         RGB     `json:"display"`
	History         []RGB   `json:"history"`
	Saved           []RGB   `json:"saved"`
	DeleteCandidate *RGB    `json:"delete_candidate,omitempty"`
	Detected        *RGB    `json:"detected,omitempty"`
	UpdatedAt       int64   `json:"updated_at_unix_ms"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s ColorState) Clone() ColorState {
	out := s
	out.History = append([]RGB(nil), s.History...)
	out.Saved = append([]RGB(nil), s.Saved...)
	if s.DeleteCandidate != nil {
		c := *s.DeleteCandidate
		out.DeleteCandidate = &c
	}
	if s.Detected != nil {
		d := *s.Detected
		out.Detected = &d
	}
	return out
}

func ToRGBList(colors []ColorValue) []RGB {
	out := make([]RGB, 0, len(colors))
	for _, c := range colors {
		out = append(out, c.RGB())
	}
	return out
}

type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	CreatedAt int64       `json:"created_at_unix_ms"`
}
