package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// DefaultCacheSize is the number of decoded images an ImageCache keeps when
// created with a non-positive capacity.
const DefaultCacheSize = 16

// ImageCache keeps recently decoded images so that repeated tuning cycles on
// the same file do not hit the disk.
//
// Entries are keyed by absolute path and remember the file's size and
// modification time. A file that changed on disk since it was cached is
// decoded again, so re-exporting a frame and calling horizon_load picks up
// the new pixels. When the cache is full the least recently used image is
// dropped.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	clock    uint64
	entries  map[string]*cacheEntry
}

type cacheEntry struct {
	img     image.Image
	size    int64
	modTime time.Time
	used    uint64
}

// NewImageCache returns an empty cache holding at most capacity images.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ImageCache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
	}
}

// Load returns the decoded image at path, from the cache when the file is
// unchanged.
//
// Supported formats are those of imaging.Open: PNG, JPEG, GIF, TIFF and BMP.
// JPEG files are rotated according to their EXIF orientation tag.
func (c *ImageCache) Load(path string) (image.Image, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to load image: %s is a directory", path)
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		c.clock++
		e.used = c.clock
		c.mu.Unlock()
		return e.img, nil
	}
	c.mu.Unlock()

	img, err := imaging.Open(key, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.entries[key] = &cacheEntry{img: img, size: info.Size(), modTime: info.ModTime(), used: c.clock}
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
	return img, nil
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evict drops the image cached for path, if any.
func (c *ImageCache) Evict(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *ImageCache) evictOldest() {
	var oldest string
	var oldestUsed uint64
	for key, e := range c.entries {
		if oldest == "" || e.used < oldestUsed {
			oldest, oldestUsed = key, e.used
		}
	}
	delete(c.entries, oldest)
}

// GetDimensions returns the pixel frame of an image file, loading it through
// the cache. The frame bounds the abscissas a fitted curve is evaluated over.
func GetDimensions(cache *ImageCache, path string) (horizon.Frame, error) {
	img, err := cache.Load(path)
	if err != nil {
		return horizon.Frame{}, err
	}
	return horizon.FrameOf(img.Bounds()), nil
}
