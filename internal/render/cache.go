//go:build !headless

package render

import "github.com/hajimehoshi/ebiten/v2"

// maxTextureUnits bounds the number of simultaneously GPU-resident
// images, mirroring the source's fixed texture-unit pool. Once
// exhausted, the oldest-stamped entry is evicted - spec.md §9's
// renderer LRU fix, since the source notes but never implements this.
const maxTextureUnits = 64

type textureEntry struct {
	index int32
	img   *ebiten.Image
	stamp uint64
}

// textureCache lazily uploads RGBA images into ebiten.Image textures and
// evicts the least-recently-drawn entry when full.
type textureCache struct {
	src     ImageSource
	entries []textureEntry
	byIndex map[int32]int
	clock   uint64
}

func newTextureCache(src ImageSource) *textureCache {
	return &textureCache{
		src:     src,
		byIndex: make(map[int32]int),
	}
}

// get returns the texture for index, uploading it on first use and
// stamping it with the current frame clock. Every call advances the
// clock so the stamp order reflects draw recency rather than upload
// recency.
func (c *textureCache) get(index int32) (*ebiten.Image, bool) {
	c.clock++

	if pos, ok := c.byIndex[index]; ok {
		c.entries[pos].stamp = c.clock
		return c.entries[pos].img, true
	}

	w, h, pix, ok := c.src.Image(index)
	if !ok {
		return nil, false
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(pix)

	if len(c.entries) >= maxTextureUnits {
		c.evictOldest()
	}

	c.entries = append(c.entries, textureEntry{index: index, img: img, stamp: c.clock})
	c.byIndex[index] = len(c.entries) - 1
	return img, true
}

func (c *textureCache) evictOldest() {
	oldest := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].stamp < c.entries[oldest].stamp {
			oldest = i
		}
	}
	evicted := c.entries[oldest]
	evicted.img.Deallocate()
	delete(c.byIndex, evicted.index)

	last := len(c.entries) - 1
	if oldest != last {
		c.entries[oldest] = c.entries[last]
		c.byIndex[c.entries[oldest].index] = oldest
	}
	c.entries = c.entries[:last]
}
