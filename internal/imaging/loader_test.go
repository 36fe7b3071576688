package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeImage encodes a uniform image as PNG at dir/name and returns its path.
func writeImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, createInMemoryImage(width, height, c)))
	return path
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(0)
	path := writeImage(t, t.TempDir(), "red.png", 100, 80, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), img1.Bounds())

	img2, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, img1, img2, "unchanged file should come from the cache")
	assert.Equal(t, 1, cache.Len())
}

func TestImageCache_Load_RelativePath(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "frame.png", 10, 10, color.White)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cache := NewImageCache(0)
	a, err := cache.Load("frame.png")
	require.NoError(t, err)
	b, err := cache.Load(path)
	require.NoError(t, err)

	assert.Same(t, a, b, "relative and absolute paths share one entry")
	assert.Equal(t, 1, cache.Len())
}

func TestImageCache_Load_ReloadsChangedFile(t *testing.T) {
	cache := NewImageCache(0)
	dir := t.TempDir()
	path := writeImage(t, dir, "frame.png", 40, 30, color.White)

	img1, err := cache.Load(path)
	require.NoError(t, err)

	writeImage(t, dir, "frame.png", 60, 30, color.Black)
	// Some filesystems have coarse timestamps.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	img2, err := cache.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, img1, img2)
	assert.Equal(t, 60, img2.Bounds().Dx())
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache(0)
	dir := t.TempDir()

	_, err := cache.Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, err = cache.Load(dir)
	assert.Error(t, err, "directory")

	bogus := filepath.Join(dir, "bogus.png")
	require.NoError(t, os.WriteFile(bogus, []byte("not an image"), 0644))
	_, err = cache.Load(bogus)
	assert.Error(t, err)

	assert.Equal(t, 0, cache.Len(), "failed loads are not cached")
}

func TestImageCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewImageCache(2)
	dir := t.TempDir()
	a := writeImage(t, dir, "a.png", 10, 10, color.White)
	b := writeImage(t, dir, "b.png", 10, 10, color.White)
	c := writeImage(t, dir, "c.png", 10, 10, color.White)

	imgA, err := cache.Load(a)
	require.NoError(t, err)
	imgB, err := cache.Load(b)
	require.NoError(t, err)

	// Touch a so that b becomes the oldest.
	_, err = cache.Load(a)
	require.NoError(t, err)

	_, err = cache.Load(c)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	again, err := cache.Load(a)
	require.NoError(t, err)
	assert.Same(t, imgA, again, "recently used image should survive")

	reloaded, err := cache.Load(b)
	require.NoError(t, err)
	assert.NotSame(t, imgB, reloaded, "oldest image should have been evicted")
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache(0)
	path := writeImage(t, t.TempDir(), "frame.png", 10, 10, color.White)

	_, err := cache.Load(path)
	require.NoError(t, err)
	cache.Evict(path)
	assert.Equal(t, 0, cache.Len())

	// Unknown paths are ignored.
	cache.Evict("/nonexistent/image.png")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache(0)
	path := writeImage(t, t.TempDir(), "frame.png", 50, 50, color.RGBA{0, 0, 255, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache(0)
	path := writeImage(t, t.TempDir(), "frame.png", 320, 240, color.RGBA{0, 255, 0, 255})

	frame, err := GetDimensions(cache, path)
	require.NoError(t, err)
	assert.Equal(t, 320, frame.Width)
	assert.Equal(t, 240, frame.Height)

	_, err = GetDimensions(cache, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
