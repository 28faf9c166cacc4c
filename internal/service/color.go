package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"random-color-picker/internal/history"
	"random-color-picker/internal/model"
)

var ErrInvalidBrightness = errors.New("brightness must be in [0,1]")

type Broadcaster interface {
	BroadcastEvent(evt model.Event)
}

// ColorService owns the color session state: the current color, brightness,
// the recent and saved lists, and the latest camera sample.
type ColorService struct {
	repo     *history.Repository
	hub      Broadcaster
	randIntN func(n int) int

	mu        sync.Mutex
	current   model.ColorValue
	candidate *model.ColorValue
	detected  *model.ColorValue
	state     model.ColorState

	subMu sync.Mutex
	subs  map[string]chan model.ColorState
}

func NewColorService(repo *history.Repository, hub Broadcaster) *ColorService {
	s := &ColorService{
		repo:     repo,
		hub:      hub,
		randIntN: rand.IntN,
		subs:     map[string]chan model.ColorState{},
	}
	s.current = model.FromRGB(255, 255, 255)
	s.state = model.ColorState{Brightness: 1}
	s.mu.Lock()
	s.applyCurrentLocked()
	s.state.History = model.ToRGBList(repo.Recent())
	s.state.Saved = model.ToRGBList(repo.Saved())
	s.mu.Unlock()
	return s
}

// Start follows storage changes until ctx is done and generates the first color.
func (s *ColorService) Start(ctx context.Context) error {
	recent := s.repo.Watch(ctx, history.RecentKey)
	saved := s.repo.Watch(ctx, history.SavedKey)
	go func() {
		for recent != nil || saved != nil {
			select {
			case l, ok := <-recent:
				if !ok {
					recent = nil
					continue
				}
				s.update(func() { s.state.History = model.ToRGBList(l) })
			case l, ok := <-saved:
				if !ok {
					saved = nil
					continue
				}
				s.update(func() { s.state.Saved = model.ToRGBList(l) })
			}
		}
	}()
	_, err := s.Generate(true)
	return err
}

func (s *ColorService) State() model.ColorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe returns a channel that always holds the newest state not yet read.
func (s *ColorService) Subscribe() (string, <-chan model.ColorState) {
	id := uuid.NewString()
	ch := make(chan model.ColorState, 1)
	s.subMu.Lock()
	s.subs[id] = ch
	s.subMu.Unlock()
	return id, ch
}

func (s *ColorService) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Generate picks a uniformly random color and makes it current.
func (s *ColorService) Generate(addToHistory bool) (model.ColorState, error) {
	c := model.FromRGB(uint8(s.randIntN(256)), uint8(s.randIntN(256)), uint8(s.randIntN(256)))
	return s.selectColor(c, addToHistory)
}

// Restore makes c current without recording it.
func (s *ColorService) Restore(c model.ColorValue) model.ColorState {
	st, _ := s.selectColor(c, false)
	return st
}

// Capture makes a camera sample current and records it in the recent list.
func (s *ColorService) Capture(c model.ColorValue) (model.ColorState, error) {
	return s.selectColor(c, true)
}

func (s *ColorService) selectColor(c model.ColorValue, addToHistory bool) (model.ColorState, error) {
	s.update(func() {
		s.current = c
		s.candidate = nil
		s.applyCurrentLocked()
	})
	if addToHistory {
		if err := s.repo.AddRecent(c); err != nil {
			return s.State(), fmt.Errorf("save recent color: %w", err)
		}
		s.refreshLists()
	}
	return s.State(), nil
}

func (s *ColorService) SetBrightness(b float64) (model.ColorState, error) {
	if b < 0 || b > 1 {
		return s.State(), ErrInvalidBrightness
	}
	s.update(func() {
		s.state.Brightness = b
		s.applyCurrentLocked()
	})
	return s.State(), nil
}

// Bookmark saves the current color. displaced reports that the saved list
// was full and lost its oldest entry.
func (s *ColorService) Bookmark() (displaced bool, err error) {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()
	displaced, err = s.repo.AddSaved(c)
	if err != nil {
		return false, fmt.Errorf("save bookmark: %w", err)
	}
	s.refreshLists()
	return displaced, nil
}

func (s *ColorService) SetDeleteCandidate(c *model.ColorValue) model.ColorState {
	s.update(func() {
		if c == nil {
			s.candidate = nil
		} else {
			v := *c
			s.candidate = &v
		}
		s.applyCurrentLocked()
	})
	return s.State()
}

// DeleteSaved removes c from the saved list and clears it as delete candidate.
func (s *ColorService) DeleteSaved(c model.ColorValue) (model.ColorState, error) {
	if err := s.repo.RemoveSaved(c); err != nil {
		return s.State(), fmt.Errorf("remove saved color: %w", err)
	}
	s.update(func() {
		if s.candidate != nil && *s.candidate == c {
			s.candidate = nil
			s.applyCurrentLocked()
		}
	})
	s.refreshLists()
	return s.State(), nil
}

// SetDetected records the latest color sampled from the camera.
func (s *ColorService) SetDetected(c model.ColorValue) {
	s.update(func() {
		s.detected = &c
		s.applyCurrentLocked()
	})
	if s.hub != nil {
		s.hub.BroadcastEvent(model.Event{Type: "camera.color", Payload: c.RGB(), CreatedAt: time.Now().UnixMilli()})
	}
}

// Detected returns the latest camera sample, if any.
func (s *ColorService) Detected() (model.ColorValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detected == nil {
		return 0, false
	}
	return *s.detected, true
}

func (s *ColorService) refreshLists() {
	recent := model.ToRGBList(s.repo.Recent())
	saved := model.ToRGBList(s.repo.Saved())
	s.update(func() {
		s.state.History = recent
		s.state.Saved = saved
	})
}

func (s *ColorService) applyCurrentLocked() {
	rgb := s.current.RGB()
	s.state.Current = rgb
	s.state.HexCode = s.current.Hex()
	s.state.RGBCode = fmt.Sprintf("RGB(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
	s.state.Display = applyBrightness(s.current, s.state.Brightness).RGB()
	s.state.DeleteCandidate = nil
	if s.candidate != nil {
		c := s.candidate.RGB()
		s.state.DeleteCandidate = &c
	}
	s.state.Detected = nil
	if s.detected != nil {
		d := s.detected.RGB()
		s.state.Detected = &d
	}
}

// update applies fn and publishes the result under the state lock, so
// subscribers see states in order.
func (s *ColorService) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.state.UpdatedAt = time.Now().UnixMilli()
	s.publish(s.state.Clone())
}

func (s *ColorService) publish(st model.ColorState) {
	s.subMu.Lock()
	for id, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
			log.Printf("color state subscriber busy: id=%s", id)
		}
	}
	s.subMu.Unlock()
	if s.hub != nil {
		s.hub.BroadcastEvent(model.Event{Type: "color.state", Payload: st, CreatedAt: st.UpdatedAt})
	}
}
