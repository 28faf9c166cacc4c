// Package ads loads and shows banner, interstitial and native ads with
// frequency capping and retry on interstitial load failures.
package ads

import (
	"context"
	"log"
	"sync"
	"time"
)

type Format string

const (
	FormatBanner       Format = "banner"
	FormatInterstitial Format = "interstitial"
	FormatNative       Format = "native"
)

type Ad struct {
	ID       string `json:"id"`
	UnitID   string `json:"unit_id"`
	Format   Format `json:"format"`
	Headline string `json:"headline,omitempty"`
	Body     string `json:"body,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ClickURL string `json:"click_url,omitempty"`
	LoadedAt int64  `json:"loaded_at_unix_ms"`
}

// SDK is the ad network the manager drives.
type SDK interface {
	Load(ctx context.Context, format Format, unitID string) (Ad, error)
	Show(ctx context.Context, ad Ad) error
}

type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateLoaded    State = "loaded"
	StateFailed    State = "failed"
	StateExhausted State = "exhausted"
)

type Options struct {
	BannerUnitID       string
	InterstitialUnitID string
	NativeUnitID       string
	BaseDelay          time.Duration
	MaxRetries         int
	Frequency          int
	// AfterFunc schedules retries. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

type Status struct {
	Enabled           bool   `json:"enabled"`
	State             State  `json:"state"`
	Attempt           int    `json:"attempt"`
	InterstitialReady bool   `json:"interstitial_ready"`
	Showing           *Ad    `json:"showing,omitempty"`
	CameraUsage       int    `json:"camera_usage"`
	Frequency         int    `json:"frequency"`
	Banner            *Ad    `json:"banner,omitempty"`
	Native            *Ad    `json:"native,omitempty"`
	NextRetryUnixMS   int64  `json:"next_retry_unix_ms,omitempty"`
	LastError         string `json:"last_error,omitempty"`
}

// Manager owns all ad state. A nil SDK disables it.
type Manager struct {
	sdk    SDK
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	attempt      int
	interstitial *Ad
	showing      *Ad
	banner       *Ad
	bannerBusy   bool
	native       *Ad
	cameraUsage  int
	nextRetry    time.Time
	lastErr      string
	onChange     func(Status)
}

func NewManager(ctx context.Context, sdk SDK, opts Options) *Manager {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 3
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{sdk: sdk, opts: opts, ctx: ctx, cancel: cancel, state: StateIdle}
}

// OnChange registers fn to receive a status snapshot after every transition.
func (m *Manager) OnChange(fn func(Status)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Init preloads every ad format.
func (m *Manager) Init() {
	m.LoadBanner()
	m.LoadNative()
	m.LoadInterstitial()
}

func (m *Manager) Close() {
	m.cancel()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() Status {
	st := Status{
		Enabled:           m.sdk != nil,
		State:             m.state,
		Attempt:           m.attempt,
		InterstitialReady: m.interstitial != nil,
		CameraUsage:       m.cameraUsage,
		Frequency:         m.opts.Frequency,
		LastError:         m.lastErr,
	}
	if m.showing != nil {
		a := *m.showing
		st.Showing = &a
	}
	if m.banner != nil {
		b := *m.banner
		st.Banner = &b
	}
	if m.native != nil {
		n := *m.native
		st.Native = &n
	}
	if m.state == StateFailed && !m.nextRetry.IsZero() {
		st.NextRetryUnixMS = m.nextRetry.UnixMilli()
	}
	return st
}

// notifyLocked must be the last thing done under mu; it releases the lock.
func (m *Manager) notifyLocked() {
	fn := m.onChange
	st := m.statusLocked()
	m.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// RetryDelay is the wait before retry number attempt (1-based).
func (m *Manager) RetryDelay(attempt int) time.Duration {
	return m.opts.BaseDelay * time.Duration(1<<uint(attempt))
}

// LoadInterstitial starts a load unless one is in flight or an ad is ready.
// Calling it after retries are exhausted starts a fresh retry cycle.
func (m *Manager) LoadInterstitial() {
	if m.sdk == nil || m.ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	if m.state == StateLoading || m.state == StateLoaded {
		m.mu.Unlock()
		return
	}
	if m.state == StateExhausted {
		m.attempt = 0
	}
	m.state = StateLoading
	m.nextRetry = time.Time{}
	m.notifyLocked()

	go m.loadInterstitial()
}

func (m *Manager) loadInterstitial() {
	ad, err := m.sdk.Load(m.ctx, FormatInterstitial, m.opts.InterstitialUnitID)

	m.mu.Lock()
	if err == nil {
		m.interstitial = &ad
		m.state = StateLoaded
		m.attempt = 0
		m.lastErr = ""
		m.notifyLocked()
		return
	}

	m.interstitial = nil
	m.lastErr = err.Error()
	if m.ctx.Err() != nil || m.attempt >= m.opts.MaxRetries {
		m.state = StateExhausted
		log.Printf("interstitial load failed: attempts=%d err=%v", m.attempt, err)
		m.notifyLocked()
		return
	}
	m.attempt++
	m.state = StateFailed
	delay := m.RetryDelay(m.attempt)
	m.nextRetry = time.Now().Add(delay)
	log.Printf("interstitial load failed: attempt=%d retry_in=%s err=%v", m.attempt, delay, err)
	m.notifyLocked()

	m.opts.AfterFunc(delay, m.retryInterstitial)
}

func (m *Manager) retryInterstitial() {
	m.mu.Lock()
	pending := m.state == StateFailed
	m.mu.Unlock()
	if pending {
		m.LoadInterstitial()
	}
}

// HandleCameraExit counts a camera session and shows the interstitial once
// the usage count reaches the configured frequency. It reports whether an ad
// was shown.
func (m *Manager) HandleCameraExit() bool {
	if m.sdk == nil {
		return false
	}
	m.mu.Lock()
	m.cameraUsage++
	if m.cameraUsage >= m.opts.Frequency && m.interstitial != nil {
		ad := *m.interstitial
		m.interstitial = nil
		m.showing = &ad
		m.state = StateIdle
		m.cameraUsage = 0
		m.notifyLocked()

		if err := m.sdk.Show(m.ctx, ad); err != nil {
			log.Printf("interstitial show failed: ad=%s err=%v", ad.ID, err)
			m.mu.Lock()
			m.showing = nil
			m.lastErr = err.Error()
			m.notifyLocked()
			return false
		}
		return true
	}
	// a failed load already has its retry scheduled
	missing := m.interstitial == nil && m.state != StateFailed
	m.notifyLocked()
	if missing {
		m.LoadInterstitial()
	}
	return false
}

// InterstitialDismissed clears the shown ad and preloads the next one.
func (m *Manager) InterstitialDismissed() {
	m.mu.Lock()
	m.showing = nil
	m.notifyLocked()
	m.LoadInterstitial()
}

// LoadBanner loads the banner once; later calls reuse the cached one.
func (m *Manager) LoadBanner() {
	if m.sdk == nil {
		return
	}
	m.mu.Lock()
	if m.banner != nil || m.bannerBusy {
		m.mu.Unlock()
		return
	}
	m.bannerBusy = true
	m.mu.Unlock()

	go func() {
		ad, err := m.sdk.Load(m.ctx, FormatBanner, m.opts.BannerUnitID)
		m.mu.Lock()
		m.bannerBusy = false
		if err != nil {
			log.Printf("banner load failed: err=%v", err)
			m.lastErr = err.Error()
		} else {
			m.banner = &ad
		}
		m.notifyLocked()
	}()
}

// Banner returns the cached banner, starting a load when there is none.
func (m *Manager) Banner() (Ad, bool) {
	m.mu.Lock()
	b := m.banner
	m.mu.Unlock()
	if b == nil {
		m.LoadBanner()
		return Ad{}, false
	}
	return *b, true
}

// LoadNative fetches a native ad and replaces the cached one on success.
func (m *Manager) LoadNative() {
	if m.sdk == nil {
		return
	}
	go func() {
		ad, err := m.sdk.Load(m.ctx, FormatNative, m.opts.NativeUnitID)
		m.mu.Lock()
		if err != nil {
			log.Printf("native load failed: err=%v", err)
			m.lastErr = err.Error()
		} else {
			m.native = &ad
		}
		m.notifyLocked()
	}()
}

func (m *Manager) Native() (Ad, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.native == nil {
		return Ad{}, false
	}
	return *m.native, true
}
