package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name string
		want Region
	}{
		{"top-left", Region{0, 0, 50, 40}},
		{"top-right", Region{50, 0, 100, 40}},
		{"bottom-left", Region{0, 40, 50, 80}},
		{"bottom-right", Region{50, 40, 100, 80}},
		{"top-half", Region{0, 0, 100, 40}},
		{"bottom-half", Region{0, 40, 100, 80}},
		{"left-half", Region{0, 0, 50, 80}},
		{"right-half", Region{50, 0, 100, 80}},
		{"center", Region{25, 20, 75, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NamedRegion(bounds, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NamedRegion(bounds, "middle-ish")
	assert.Error(t, err)
}

func TestZoom(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	t.Run("crop only", func(t *testing.T) {
		out, err := Zoom(img, Region{10, 20, 60, 50}, 1)
		require.NoError(t, err)
		assert.Equal(t, 50, out.Bounds().Dx())
		assert.Equal(t, 30, out.Bounds().Dy())
	})

	t.Run("scale up", func(t *testing.T) {
		out, err := Zoom(img, Region{0, 0, 50, 50}, 2)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	})

	t.Run("scale down", func(t *testing.T) {
		out, err := Zoom(img, Region{0, 0, 100, 100}, 0.5)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	})

	t.Run("non-positive scale keeps size", func(t *testing.T) {
		out, err := Zoom(img, Region{0, 0, 40, 40}, 0)
		require.NoError(t, err)
		assert.Equal(t, 40, out.Bounds().Dx())
	})

	t.Run("outside bounds", func(t *testing.T) {
		_, err := Zoom(img, Region{50, 50, 150, 150}, 1)
		assert.Error(t, err)
	})

	t.Run("inverted region", func(t *testing.T) {
		_, err := Zoom(img, Region{60, 10, 20, 50}, 1)
		assert.Error(t, err)
	})

	t.Run("scale to nothing", func(t *testing.T) {
		_, err := Zoom(img, Region{0, 0, 2, 2}, 0.1)
		assert.Error(t, err)
	})
}

func TestZoom_KeepsPixels(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)
	img.Set(5, 5, color.Black)

	out, err := Zoom(img, Region{4, 4, 8, 8}, 2)
	require.NoError(t, err)

	// (5,5) maps to (1,1) in the crop and covers (2..3, 2..3) after scaling.
	c := out.NRGBAAt(2, 2)
	assert.Equal(t, uint8(0), c.R)
	c = out.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), c.R)
}
