package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/go.geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmach/profile/samplers"
)

// gradientImage is black on the west edge and white on the east edge.
func gradientImage(width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		v := uint16(float64(x) / float64(width-1) * 0xffff)
		for y := 0; y < height; y++ {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}

	return img
}

func pathOf(points ...[2]float64) []*geo.Path {
	path := geo.NewPath()
	for _, p := range points {
		path.Push(geo.NewPoint(p[0], p[1]))
	}

	return []*geo.Path{path}
}

func TestSamplerGradient(t *testing.T) {
	bound := geo.NewBound(10, 11, 45, 46)
	s, err := New(gradientImage(101, 51), bound, 200, 1200)
	require.NoError(t, err)

	values, err := s.QueryElevation(context.Background(), pathOf(
		[2]float64{10, 45.5},
		[2]float64{10.5, 45.5},
		[2]float64{10.99, 45.5},
		[2]float64{12, 45.5},
	))
	require.NoError(t, err)
	require.Len(t, values[0], 4)

	assert.InDelta(t, 200, values[0][0], 1e-6)
	assert.InDelta(t, 700, values[0][1], 1)
	assert.InDelta(t, 1190, values[0][2], 1)
	assert.True(t, math.IsNaN(values[0][3]), "outside the bound")
}

func TestSamplerOrientation(t *testing.T) {
	// white northern half, black southern half
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.SetGray(x, 0, color.Gray{Y: 255})
		img.SetGray(x, 1, color.Gray{Y: 255})
	}

	s, err := New(img, geo.NewBound(0, 1, 0, 1), 0, 100)
	require.NoError(t, err)

	values, err := s.QueryElevation(context.Background(), pathOf([2]float64{0.5, 0.9}, [2]float64{0.5, 0.1}))
	require.NoError(t, err)
	assert.InDelta(t, 100, values[0][0], 1e-6)
	assert.InDelta(t, 0, values[0][1], 1e-6)
}

func TestSamplerTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	s, err := New(img, geo.NewBound(0, 1, 0, 1), 0, 100)
	require.NoError(t, err)

	values, err := s.QueryElevation(context.Background(), pathOf([2]float64{0.5, 0.5}))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(values[0][0]))
}

func TestSamplerSmoothing(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	s, err := New(img, geo.NewBound(7, 7.1, 46, 46.1), 0, 255)
	require.NoError(t, err)

	s.SmoothingStdDev = 200
	require.NoError(t, s.Resmooth())
	require.NotNil(t, s.smooth)

	values, err := s.QueryElevation(context.Background(), pathOf([2]float64{7.05, 46.05}))
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255.0*255, values[0][0], 1e-6)

	s.SmoothingStdDev = 0
	require.NoError(t, s.Resmooth())
	assert.Nil(t, s.smooth)

	s.SmoothingStdDev = -1
	assert.ErrorIs(t, s.Resmooth(), samplers.ErrStdDevNegative)
}

func TestNewErrors(t *testing.T) {
	img := gradientImage(4, 4)

	_, err := New(img, geo.NewBound(1, 1, 0, 1), 0, 1)
	assert.ErrorIs(t, err, samplers.ErrBoundEmpty)

	_, err = New(img, geo.NewBound(0, 1, 0, 1), 10, 1)
	assert.ErrorIs(t, err, samplers.ErrElevationRange)

	_, err = New(gradientImage(1, 4), geo.NewBound(0, 1, 0, 1), 0, 1)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradientImage(16, 16)))

	path := filepath.Join(t.TempDir(), "heightmap.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	s, err := Open(path, geo.NewBound(0, 1, 0, 1), -100, 100)
	require.NoError(t, err)
	assert.Equal(t, 16, s.Surface.Width)
	assert.Equal(t, 16, s.Surface.Height)

	_, err = Open(filepath.Join(t.TempDir(), "missing.png"), geo.NewBound(0, 1, 0, 1), 0, 1)
	assert.Error(t, err)
}

func TestQueryElevationCanceled(t *testing.T) {
	s, err := New(gradientImage(4, 4), geo.NewBound(0, 1, 0, 1), 0, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.QueryElevation(ctx, pathOf([2]float64{0.5, 0.5}))
	assert.ErrorIs(t, err, context.Canceled)
}
