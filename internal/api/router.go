package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"random-color-picker/internal/ads"
	"random-color-picker/internal/config"
	"random-color-picker/internal/sampler"
	"random-color-picker/internal/service"
	"random-color-picker/internal/ws"
)

// FrameSubmitter queues camera frames for asynchronous sampling.
type FrameSubmitter interface {
	Submit(f sampler.Frame) bool
}

func NewRouter(
	cfg config.Config,
	hub *ws.Hub,
	colorSvc *service.ColorService,
	adMgr *ads.Manager,
	analyzer FrameSubmitter,
) http.Handler {
	h := &Handler{
		cfg:      cfg,
		hub:      hub,
		colorSvc: colorSvc,
		ads:      adMgr,
		analyzer: analyzer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/ws", h.WebSocket)
	mux.HandleFunc("/v1/color", h.GetColor)
	mux.HandleFunc("/v1/color/generate", h.GenerateColor)
	mux.HandleFunc("/v1/color/brightness", h.SetBrightness)
	mux.HandleFunc("/v1/color/restore", h.RestoreColor)
	mux.HandleFunc("/v1/color/swatch.png", h.Swatch)
	mux.HandleFunc("/v1/history/recent", h.RecentColors)
	mux.HandleFunc("/v1/history/saved", h.SavedColors)
	mux.HandleFunc("/v1/history/saved/candidate", h.DeleteCandidate)
	mux.HandleFunc("/v1/camera/frame", h.SubmitFrame)
	mux.HandleFunc("/v1/camera/sample", h.SampleFrame)
	mux.HandleFunc("/v1/camera/sample-image", h.SampleImage)
	mux.HandleFunc("/v1/camera/color", h.DetectedColor)
	mux.HandleFunc("/v1/camera/capture", h.CaptureColor)
	mux.HandleFunc("/v1/camera/exit", h.CameraExit)
	mux.HandleFunc("/v1/ads/status", h.AdStatus)
	mux.HandleFunc("/v1/ads/banner", h.BannerAd)
	mux.HandleFunc("/v1/ads/native", h.NativeAd)
	mux.HandleFunc("/v1/ads/interstitial/dismissed", h.InterstitialDismissed)

	return limitBody(cfg.MaxUploadSizeBytes, mux)
}

func limitBody(maxSize int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		next.ServeHTTP(w, r)
	})
}
