package sampler

import (
	"context"
	"log"
	"sync"

	"random-color-picker/internal/model"
)

// Analyzer samples frames on a single worker. At most one frame waits for
// the worker; submitting while one is waiting replaces it.
type Analyzer struct {
	mu      sync.Mutex
	slot    chan Frame
	onColor func(model.ColorValue)
}

func NewAnalyzer(onColor func(model.ColorValue)) *Analyzer {
	return &Analyzer{slot: make(chan Frame, 1), onColor: onColor}
}

// Submit queues f without blocking. It returns false when a waiting frame
// was dropped in favour of f.
func (a *Analyzer) Submit(f Frame) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case a.slot <- f:
		return true
	default:
	}
	dropped := false
	select {
	case <-a.slot:
		dropped = true
	default:
	}
	a.slot <- f
	return !dropped
}

func (a *Analyzer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-a.slot:
			c, err := SampleCenterColor(f)
			if err != nil {
				log.Printf("analyze frame: size=%dx%d err=%v", f.Width, f.Height, err)
				continue
			}
			if a.onColor != nil {
				a.onColor(c)
			}
		}
	}
}
