package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNoAdServer = errors.New("ad server not configured")

// HTTPSDK fetches creatives from an ad server's JSON API.
type HTTPSDK struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPSDK(baseURL, apiKey string, timeoutSec int) *HTTPSDK {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &HTTPSDK{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (c *HTTPSDK) Load(ctx context.Context, format Format, unitID string) (Ad, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return Ad{}, ErrNoAdServer
	}
	u := c.endpoint("/ads/"+url.PathEscape(string(format))) + "?unit_id=" + url.QueryEscape(unitID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Ad{}, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Ad{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Ad    *Ad         `json:"ad"`
		Error interface{} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Ad{}, err
	}
	if resp.StatusCode >= 300 {
		return Ad{}, fmt.Errorf("ad server status=%d error=%v", resp.StatusCode, out.Error)
	}
	if out.Ad == nil || out.Ad.ID == "" {
		return Ad{}, errors.New("ad server returned no fill")
	}
	ad := *out.Ad
	ad.Format = format
	if ad.UnitID == "" {
		ad.UnitID = unitID
	}
	ad.LoadedAt = time.Now().UnixMilli()
	return ad, nil
}

// Show records an impression for ad.
func (c *HTTPSDK) Show(ctx context.Context, ad Ad) error {
	if strings.TrimSpace(c.baseURL) == "" {
		return ErrNoAdServer
	}
	b, err := json.Marshal(map[string]string{
		"ad_id":   ad.ID,
		"unit_id": ad.UnitID,
		"format":  string(ad.Format),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/impressions"), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ad server impression status=%d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPSDK) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *HTTPSDK) endpoint(path string) string {
	if strings.HasSuffix(c.baseURL, "/v1") {
		return c.baseURL + path
	}
	return c.baseURL + "/v1" + path
}
