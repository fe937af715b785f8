//go:build !headless

package render

import "testing"

type fakeImageSource map[int32][3]int // index -> {w, h, fill}

func (f fakeImageSource) Image(index int32) (int, int, []byte, bool) {
	dims, ok := f[index]
	if !ok {
		return 0, 0, nil, false
	}
	w, h := dims[0], dims[1]
	pix := make([]byte, w*h*4)
	for i := range pix {
		pix[i] = byte(dims[2])
	}
	return w, h, pix, true
}

func TestTextureCacheReusesUpload(t *testing.T) {
	src := fakeImageSource{1: {4, 4, 10}}
	c := newTextureCache(src)

	img1, ok := c.get(1)
	if !ok {
		t.Fatal("expected index 1 to resolve")
	}
	img2, ok := c.get(1)
	if !ok {
		t.Fatal("expected index 1 to resolve again")
	}
	if img1 != img2 {
		t.Fatal("expected second get to reuse the uploaded texture")
	}
}

func TestTextureCacheMissingIndex(t *testing.T) {
	c := newTextureCache(fakeImageSource{})
	if _, ok := c.get(99); ok {
		t.Fatal("expected missing index to fail")
	}
}

func TestTextureCacheEvictsLeastRecentlyDrawn(t *testing.T) {
	src := make(fakeImageSource)
	for i := int32(0); i < maxTextureUnits+1; i++ {
		src[i] = [3]int{2, 2, int(i)}
	}
	c := newTextureCache(src)

	// Fill the cache to capacity.
	for i := int32(0); i < maxTextureUnits; i++ {
		if _, ok := c.get(i); !ok {
			t.Fatalf("expected index %d to resolve", i)
		}
	}
	// Touch everything but index 0 so it becomes the oldest stamp.
	for i := int32(1); i < maxTextureUnits; i++ {
		c.get(i)
	}

	// One more distinct index forces an eviction.
	if _, ok := c.get(maxTextureUnits); !ok {
		t.Fatal("expected new index to resolve")
	}
	if _, ok := c.byIndex[0]; ok {
		t.Fatal("expected index 0 (least recently drawn) to have been evicted")
	}
	if len(c.entries) != maxTextureUnits {
		t.Fatalf("len(entries) = %d, want %d", len(c.entries), maxTextureUnits)
	}
}
