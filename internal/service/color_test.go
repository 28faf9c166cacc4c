package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"random-color-picker/internal/history"
	"random-color-picker/internal/model"
	"random-color-picker/internal/storage"
)

func newTestService(t *testing.T) (*ColorService, *history.Repository) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	repo := history.NewRepository(store)
	return NewColorService(repo, nil), repo
}

func sequence(values ...int) func(int) int {
	i := 0
	return func(int) int {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestGenerateUpdatesStateAndHistory(t *testing.T) {
	svc, repo := newTestService(t)
	svc.randIntN = sequence(18, 52, 86)

	st, err := svc.Generate(true)
	require.NoError(t, err)
	assert.Equal(t, model.RGB{R: 18, G: 52, B: 86}, st.Current)
	assert.Equal(t, "#123456", st.HexCode)
	assert.Equal(t, "RGB(18, 52, 86)", st.RGBCode)
	assert.Equal(t, []model.RGB{{R: 18, G: 52, B: 86}}, st.History)
	assert.Equal(t, []model.ColorValue{model.FromRGB(18, 52, 86)}, repo.Recent())

	st, err = svc.Generate(false)
	require.NoError(t, err)
	assert.Len(t, st.History, 1)
}

func TestRestoreSkipsHistory(t *testing.T) {
	svc, repo := newTestService(t)
	st := svc.Restore(model.FromRGB(1, 2, 3))
	assert.Equal(t, "#010203", st.HexCode)
	assert.Empty(t, repo.Recent())
}

func TestCaptureRecordsRecent(t *testing.T) {
	svc, repo := newTestService(t)
	_, err := svc.Capture(model.FromRGB(9, 9, 9))
	require.NoError(t, err)
	assert.Equal(t, []model.ColorValue{model.FromRGB(9, 9, 9)}, repo.Recent())
}

func TestBrightness(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Restore(model.FromRGB(200, 100, 50))

	_, err := svc.SetBrightness(1.5)
	assert.ErrorIs(t, err, ErrInvalidBrightness)

	st, err := svc.SetBrightness(0)
	require.NoError(t, err)
	assert.Equal(t, model.RGB{}, st.Display)
	assert.Equal(t, model.RGB{R: 200, G: 100, B: 50}, st.Current)

	st, err = svc.SetBrightness(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 100, int(st.Display.R), 1)
	assert.InDelta(t, 50, int(st.Display.G), 1)
	assert.InDelta(t, 25, int(st.Display.B), 1)
}

func TestBookmarkAndDelete(t *testing.T) {
	svc, repo := newTestService(t)
	colors := []model.ColorValue{
		model.FromRGB(1, 0, 0), model.FromRGB(2, 0, 0), model.FromRGB(3, 0, 0),
		model.FromRGB(4, 0, 0), model.FromRGB(5, 0, 0),
	}
	for _, c := range colors {
		svc.Restore(c)
		displaced, err := svc.Bookmark()
		require.NoError(t, err)
		assert.False(t, displaced)
	}
	svc.Restore(model.FromRGB(6, 0, 0))
	displaced, err := svc.Bookmark()
	require.NoError(t, err)
	assert.True(t, displaced)
	assert.Len(t, svc.State().Saved, history.Capacity)

	target := model.FromRGB(3, 0, 0)
	st := svc.SetDeleteCandidate(&target)
	require.NotNil(t, st.DeleteCandidate)

	st, err = svc.DeleteSaved(target)
	require.NoError(t, err)
	assert.Nil(t, st.DeleteCandidate)
	assert.NotContains(t, repo.Saved(), target)
	assert.Len(t, st.Saved, history.Capacity-1)
}

func TestSelectingColorClearsCandidate(t *testing.T) {
	svc, _ := newTestService(t)
	c := model.FromRGB(7, 7, 7)
	svc.SetDeleteCandidate(&c)
	st := svc.Restore(model.FromRGB(8, 8, 8))
	assert.Nil(t, st.DeleteCandidate)
}

func TestSubscribeSeesLatestState(t *testing.T) {
	svc, _ := newTestService(t)
	id, ch := svc.Subscribe()
	svc.Restore(model.FromRGB(1, 1, 1))
	svc.Restore(model.FromRGB(2, 2, 2))

	st := <-ch
	assert.Equal(t, "#020202", st.HexCode)
	svc.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestStartFollowsStorage(t *testing.T) {
	svc, repo := newTestService(t)
	svc.randIntN = sequence(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Start(ctx))

	_, err := repo.AddSaved(model.FromRGB(0, 0, 255))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(svc.State().Saved) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []model.RGB{{}}, svc.State().History)
}

func TestSwatch(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Restore(model.FromRGB(10, 20, 30))

	b, err := svc.Swatch(8)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	r, g, bl, _ := img.At(4, 4).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, bl >> 8})

	_, err = svc.Swatch(0)
	assert.Error(t, err)
}

func TestSampleImage(t *testing.T) {
	svc, _ := newTestService(t)
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	c, err := svc.SampleImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(255, 255, 255), c)
	d, ok := svc.Detected()
	require.True(t, ok)
	assert.Equal(t, c, d)

	_, err = svc.SampleImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(255, 128, 0), c)

	c, err = ParseColor("-1")
	require.NoError(t, err)
	assert.Equal(t, model.FromRGB(255, 255, 255), c)

	for _, bad := range []string{"", "#zzzzzz", "red"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
