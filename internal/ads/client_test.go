package ads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSDKLoadAndShow(t *testing.T) {
	var impressions []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/ads/interstitial":
			assert.Equal(t, "unit-1", r.URL.Query().Get("unit_id"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"ad": map[string]string{"id": "ad-9", "headline": "Paint sale"},
			})
		case "/v1/ads/native":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ad": nil})
		case "/v1/impressions":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			impressions = append(impressions, body)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		}
	}))
	defer srv.Close()

	sdk := NewHTTPSDK(srv.URL+"/", "key", 2)
	ad, err := sdk.Load(context.Background(), FormatInterstitial, "unit-1")
	require.NoError(t, err)
	assert.Equal(t, "ad-9", ad.ID)
	assert.Equal(t, "unit-1", ad.UnitID)
	assert.Equal(t, FormatInterstitial, ad.Format)
	assert.NotZero(t, ad.LoadedAt)

	_, err = sdk.Load(context.Background(), FormatNative, "unit-2")
	assert.Error(t, err)

	_, err = sdk.Load(context.Background(), FormatBanner, "unit-3")
	assert.ErrorContains(t, err, "status=404")

	require.NoError(t, sdk.Show(context.Background(), ad))
	require.Len(t, impressions, 1)
	assert.Equal(t, "ad-9", impressions[0]["ad_id"])
}

func TestHTTPSDKUnconfigured(t *testing.T) {
	sdk := NewHTTPSDK("", "", 0)
	_, err := sdk.Load(context.Background(), FormatBanner, "x")
	assert.ErrorIs(t, err, ErrNoAdServer)
	assert.ErrorIs(t, sdk.Show(context.Background(), Ad{}), ErrNoAdServer)
}
