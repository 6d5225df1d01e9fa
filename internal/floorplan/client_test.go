package floorplan

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}).Analyze(context.Background(), "plan.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyze_PostsMultipartFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "plan.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("pngbytes"), data)

		_, _ = w.Write([]byte(`{"width_ft":60,"length_ft":40,"pixels_per_foot":12.5,"width_px":750,"height_px":500}`))
	}))
	defer srv.Close()

	a, err := NewClient(Config{BaseURL: srv.URL}).Analyze(context.Background(), "plan.png", "image/png", []byte("pngbytes"))
	require.NoError(t, err)
	assert.Equal(t, 60.0, a.WidthFt)
	assert.Equal(t, 40.0, a.LengthFt)
	assert.Equal(t, 12.5, a.PixelsPerFoot)
	assert.Equal(t, 750, a.WidthPx)
}

func TestAnalyze_RejectsZeroScale(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"width_ft":60,"length_ft":40,"pixels_per_foot":0}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Analyze(context.Background(), "p.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrAnalysis)
}

func TestAnalyze_Non200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unreadable image", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Analyze(context.Background(), "p.png", "image/png", []byte("x"))
	require.ErrorIs(t, err, ErrAnalysis)
	assert.Contains(t, err.Error(), "unreadable image")
}
