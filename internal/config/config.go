package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr           string
	DataPath             string
	MaxUploadSizeBytes   int64
	SwatchSize           int
	AdServerBaseURL      string
	AdServerAPIKey       string
	AdServerTimeoutSec   int
	AdBannerUnitID       string
	AdInterstitialUnitID string
	AdNativeUnitID       string
	AdRetryBaseMS        int
	AdMaxRetries         int
	AdFrequency          int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		DataPath:             getEnv("DATA_PATH", "./data/preferences.json"),
		MaxUploadSizeBytes:   getEnvInt64("MAX_UPLOAD_SIZE_BYTES", 8*1024*1024),
		SwatchSize:           getEnvInt("SWATCH_SIZE", 128),
		AdServerBaseURL:      strings.TrimRight(getEnv("AD_SERVER_BASE_URL", ""), "/"),
		AdServerAPIKey:       getEnv("AD_SERVER_API_KEY", ""),
		AdServerTimeoutSec:   getEnvInt("AD_SERVER_TIMEOUT_SEC", 10),
		AdBannerUnitID:       getEnv("AD_BANNER_UNIT_ID", "banner-default"),
		AdInterstitialUnitID: getEnv("AD_INTERSTITIAL_UNIT_ID", "interstitial-default"),
		AdNativeUnitID:       getEnv("AD_NATIVE_UNIT_ID", "native-default"),
		AdRetryBaseMS:        getEnvInt("AD_RETRY_BASE_MS", 1000),
		AdMaxRetries:         getEnvInt("AD_MAX_RETRIES", 3),
		AdFrequency:          getEnvInt("AD_FREQUENCY", 3),
	}

	if cfg.MaxUploadSizeBytes <= 0 {
		return Config{}, errors.New("max upload size must be > 0")
	}
	if cfg.SwatchSize <= 0 || cfg.SwatchSize > 1024 {
		return Config{}, errors.New("swatch size must be in [1,1024]")
	}
	if cfg.AdServerTimeoutSec <= 0 {
		return Config{}, errors.New("ad server timeout sec must be > 0")
	}
	if cfg.AdRetryBaseMS <= 0 {
		return Config{}, errors.New("ad retry base ms must be > 0")
	}
	if cfg.AdMaxRetries < 0 {
		return Config{}, errors.New("ad max retries must be >= 0")
	}
	if cfg.AdFrequency <= 0 {
		return Config{}, errors.New("ad frequency must be > 0")
	}

	return cfg, nil
}

func (c Config) AdsEnabled() bool {
	return c.AdServerBaseURL != ""
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
