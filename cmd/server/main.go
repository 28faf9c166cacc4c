package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"random-color-picker/internal/ads"
	"random-color-picker/internal/api"
	"random-color-picker/internal/config"
	"random-color-picker/internal/history"
	"random-color-picker/internal/model"
	"random-color-picker/internal/sampler"
	"random-color-picker/internal/service"
	"random-color-picker/internal/storage"
	"random-color-picker/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := storage.NewStore(cfg.DataPath)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	repo := history.NewRepository(store)
	colorSvc := service.NewColorService(repo, hub)
	if err := colorSvc.Start(ctx); err != nil {
		log.Fatalf("start color service: %v", err)
	}

	analyzer := sampler.NewAnalyzer(colorSvc.SetDetected)
	go analyzer.Run(ctx)

	var sdk ads.SDK
	if cfg.AdsEnabled() {
		sdk = ads.NewHTTPSDK(cfg.AdServerBaseURL, cfg.AdServerAPIKey, cfg.AdServerTimeoutSec)
	} else {
		log.Printf("ad server not configured, ads disabled")
	}
	adMgr := ads.NewManager(ctx, sdk, ads.Options{
		BannerUnitID:       cfg.AdBannerUnitID,
		InterstitialUnitID: cfg.AdInterstitialUnitID,
		NativeUnitID:       cfg.AdNativeUnitID,
		BaseDelay:          time.Duration(cfg.AdRetryBaseMS) * time.Millisecond,
		MaxRetries:         cfg.AdMaxRetries,
		Frequency:          cfg.AdFrequency,
	})
	adMgr.OnChange(func(st ads.Status) {
		hub.BroadcastEvent(model.Event{Type: "ads.status", Payload: st, CreatedAt: time.Now().UnixMilli()})
	})
	adMgr.Init()
	defer adMgr.Close()

	router := api.NewRouter(cfg, hub, colorSvc, adMgr, analyzer)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
