package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"random-color-picker/internal/ads"
	"random-color-picker/internal/config"
	"random-color-picker/internal/model"
	"random-color-picker/internal/sampler"
	"random-color-picker/internal/service"
	"random-color-picker/internal/ws"
)

type Handler struct {
	cfg      config.Config
	hub      *ws.Hub
	colorSvc *service.ColorService
	ads      *ads.Manager
	analyzer FrameSubmitter
	upgrader websocket.Upgrader
}

type apiError struct {
	Error string `json:"error"`
}

type colorRequest struct {
	Color string `json:"color"`
}

type colorResponse struct {
	model.RGB
	Hex string `json:"hex"`
}

func newColorResponse(c model.ColorValue) colorResponse {
	return colorResponse{RGB: c.RGB(), Hex: c.Hex()}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errors.New("websocket requires GET"))
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		writeErr(w, http.StatusBadRequest, errors.New("websocket upgrade required"))
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: remote=%s host=%s uri=%s err=%v", r.RemoteAddr, r.Host, r.RequestURI, err)
		return
	}
	client := ws.NewClient(h.hub, conn)
	client.Greet(model.Event{Type: "color.state", Payload: h.colorSvc.State(), CreatedAt: time.Now().UnixMilli()})
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) GetColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, h.colorSvc.State())
}

func (h *Handler) GenerateColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	addToHistory := true
	if v := strings.TrimSpace(r.URL.Query().Get("add_to_history")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, errors.New("add_to_history must be a boolean"))
			return
		}
		addToHistory = b
	}
	st, err := h.colorSvc.Generate(addToHistory)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) SetBrightness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Brightness *float64 `json:"brightness"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if req.Brightness == nil {
		writeErr(w, http.StatusBadRequest, errors.New("brightness required"))
		return
	}
	st, err := h.colorSvc.SetBrightness(*req.Brightness)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) RestoreColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	c, err := decodeColor(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.colorSvc.Restore(c))
}

func (h *Handler) Swatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	size := atoiDefault(r.URL.Query().Get("size"), h.cfg.SwatchSize)
	b, err := h.colorSvc.Swatch(size)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) RecentColors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"colors": h.colorSvc.State().History})
}

func (h *Handler) SavedColors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"colors": h.colorSvc.State().Saved})
	case http.MethodPost:
		displaced, err := h.colorSvc.Bookmark()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"colors":    h.colorSvc.State().Saved,
			"displaced": displaced,
		})
	case http.MethodDelete:
		c, err := service.ParseColor(r.URL.Query().Get("color"))
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		st, err := h.colorSvc.DeleteSaved(c)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"colors": st.Saved})
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Color *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if req.Color == nil {
		writeJSON(w, http.StatusOK, h.colorSvc.SetDeleteCandidate(nil))
		return
	}
	c, err := service.ParseColor(*req.Color)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.colorSvc.SetDeleteCandidate(&c))
}

func (h *Handler) SubmitFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var f sampler.Frame
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	queued := h.analyzer.Submit(f)
	writeJSON(w, http.StatusAccepted, map[string]bool{"replaced_pending": !queued})
}

func (h *Handler) SampleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var f sampler.Frame
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	c, err := sampler.SampleCenterColor(f)
	if err != nil {
		if errors.Is(err, sampler.ErrInvalidFrameFormat) {
			writeErr(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	h.colorSvc.SetDetected(c)
	writeJSON(w, http.StatusOK, newColorResponse(c))
}

func (h *Handler) SampleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSizeBytes); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	if err := validateImageUpload(fileHeader); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	b, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.colorSvc.SampleImage(b)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, newColorResponse(c))
}

func (h *Handler) DetectedColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	c, ok := h.colorSvc.Detected()
	if !ok {
		writeErr(w, http.StatusNotFound, errors.New("no camera color detected"))
		return
	}
	writeJSON(w, http.StatusOK, newColorResponse(c))
}

// CaptureColor makes the detected camera color (or an explicit one) current.
func (h *Handler) CaptureColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req colorRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
	}
	var c model.ColorValue
	if strings.TrimSpace(req.Color) != "" {
		parsed, err := service.ParseColor(req.Color)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		c = parsed
	} else {
		detected, ok := h.colorSvc.Detected()
		if !ok {
			writeErr(w, http.StatusConflict, errors.New("no camera color detected"))
			return
		}
		c = detected
	}
	st, err := h.colorSvc.Capture(c)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) CameraExit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	shown := h.ads.HandleCameraExit()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interstitial_shown": shown,
		"ads":                h.ads.Status(),
	})
}

func (h *Handler) AdStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, h.ads.Status())
}

func (h *Handler) BannerAd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	ad, ok := h.ads.Banner()
	if !ok {
		writeErr(w, http.StatusNotFound, errors.New("banner not loaded"))
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *Handler) NativeAd(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ad, ok := h.ads.Native()
		if !ok {
			writeErr(w, http.StatusNotFound, errors.New("native ad not loaded"))
			return
		}
		writeJSON(w, http.StatusOK, ad)
	case http.MethodPost:
		h.ads.LoadNative()
		writeJSON(w, http.StatusAccepted, h.ads.Status())
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) InterstitialDismissed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h.ads.InterstitialDismissed()
	writeJSON(w, http.StatusOK, h.ads.Status())
}

func decodeColor(r *http.Request) (model.ColorValue, error) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, err
	}
	return service.ParseColor(req.Color)
}

func validateImageUpload(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		return nil
	default:
		return errors.New("unsupported image type")
	}
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, apiError{Error: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func atoiDefault(v string, d int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return d
	}
	return n
}
