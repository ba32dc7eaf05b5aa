// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package hw

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/eltociear/duckstation/device"
	"github.com/eltociear/duckstation/gpu"
	"github.com/eltociear/duckstation/internal/slab"
)

// maxSourcePages is the most VRAM pages one source can depend on: up to
// four for pixel data plus up to five for an unaligned palette row,
// before duplicate suppression.
const maxSourcePages = 8

// SourceKey identifies one decoded texture: the texture page it starts
// at, the color depth, and the palette register. The palette is
// normalized to zero for direct-color modes, which ignore it.
type SourceKey struct {
	Page    uint8
	Mode    gpu.TextureMode
	Palette gpu.PaletteReg
}

// normalize folds the reserved direct-color encoding onto Direct16Bit
// and clears the palette for modes that do not use one.
func (k SourceKey) normalize() SourceKey {
	if k.Mode == gpu.TextureModeReservedDirect16Bit {
		k.Mode = gpu.TextureModeDirect16Bit
	}
	if !k.Mode.IsPaletted() {
		k.Palette = 0
	}
	return k
}

// sourcePixelWidth is the width in VRAM words of the pixel data backing
// a source. Paletted modes pack 4 or 2 texels per word, so they cover
// proportionally fewer words.
func sourcePixelWidth(mode gpu.TextureMode) uint32 {
	switch mode {
	case gpu.TextureModePalette4Bit:
		return gpu.TexturePageWidth / 4
	case gpu.TextureModePalette8Bit:
		return gpu.TexturePageWidth / 2
	default:
		return gpu.TexturePageWidth
	}
}

// DependencyPages computes the set of VRAM pages the key's pixel data
// and palette occupy, duplicates suppressed. This is exactly the set of
// reverse-index lists a decoded source registers in.
func (k SourceKey) DependencyPages() []uint32 {
	k = k.normalize()
	pages := make([]uint32, 0, maxSourcePages)
	add := func(pn uint32) {
		for _, p := range pages {
			if p == pn {
				return
			}
		}
		pages = append(pages, pn)
	}

	baseX := gpu.PageStartX(uint32(k.Page))
	baseY := gpu.PageStartY(uint32(k.Page))
	words := sourcePixelWidth(k.Mode)
	for x := uint32(0); x < words; x += gpu.VRAMPageWidth {
		add(gpu.VRAMCoordinateToPage((baseX+x)&(gpu.VRAMWidth-1), baseY))
	}

	if k.Mode.IsPaletted() {
		palX := k.Palette.XBase()
		palY := k.Palette.YBase()
		width := gpu.PaletteWidth(k.Mode)
		for x := uint32(0); x < width; x += gpu.VRAMPageWidth {
			add(gpu.VRAMCoordinateToPage((palX+x)&(gpu.VRAMWidth-1), palY))
		}
		// A palette can end mid-page; cover its last pixel too.
		add(gpu.VRAMCoordinateToPage((palX+width-1)&(gpu.VRAMWidth-1), palY))
	}
	return pages
}

// Source is one decoded, cached texture. It stays valid until any of
// its dependency pages is invalidated, then it is destroyed whole; there
// is no partial patching path.
type Source struct {
	Key     SourceKey
	Texture device.Texture

	// Generation is the decode sequence number. Slab slots are recycled,
	// so two sources at the same address are told apart by generation.
	Generation uint64

	pages    [maxSourcePages]uint32
	numPages int
}

// Pages returns the VRAM pages this source depends on.
func (s *Source) Pages() []uint32 {
	return s.pages[:s.numPages]
}

// TextureCache maps source keys to decoded textures. Sources live in a
// slab arena; each VRAM page keeps a reverse index of the slab indices
// that depend on it, so invalidating a page is a walk of one slice.
type TextureCache struct {
	dev  device.Device
	vram *gpu.VRAM

	sources slab.Slab[Source]
	pages   [gpu.NumVRAMPages][]slab.Index

	generation uint64
	lookups    int
	misses     int
}

// NewTextureCache creates an empty cache decoding from vram.
func NewTextureCache(dev device.Device, vram *gpu.VRAM) *TextureCache {
	return &TextureCache{dev: dev, vram: vram}
}

// Lookups returns the number of Lookup calls.
func (c *TextureCache) Lookups() int { return c.lookups }

// Misses returns the number of Lookup calls that decoded a new source.
func (c *TextureCache) Misses() int { return c.misses }

// Len returns the number of live sources.
func (c *TextureCache) Len() int { return c.sources.Len() }

// Lookup returns the source for key, decoding it on first use. A nil
// error with a non-nil source is the only success outcome; decode
// failures surface as "texture unavailable" errors the caller skips the
// draw for.
func (c *TextureCache) Lookup(key SourceKey) (*Source, error) {
	key = key.normalize()
	c.lookups++

	for _, idx := range c.pages[key.Page] {
		if s := c.sources.Get(idx); s.Key == key {
			return s, nil
		}
	}
	c.misses++
	return c.createSource(key)
}

// createSource decodes the key's page from the VRAM shadow and registers
// the new source in every dependency page's reverse index.
func (c *TextureCache) createSource(key SourceKey) (*Source, error) {
	pixels := c.decode(key)

	desc := device.TextureDescriptor{
		Label:         fmt.Sprintf("texcache/page%d/%s", key.Page, key.Mode),
		Width:         gpu.TexturePageWidth,
		Height:        gpu.TexturePageHeight,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         device.TextureUsageTextureBinding | device.TextureUsageCopyDst | device.TextureUsageCopySrc,
	}
	tex, err := c.dev.CreateTexture(&desc)
	if err != nil {
		return nil, fmt.Errorf("texture cache: decode %v: %w", key, err)
	}
	if err := tex.Write(0, 0, gpu.TexturePageWidth, gpu.TexturePageHeight, pixels); err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("texture cache: upload %v: %w", key, err)
	}

	idx, s := c.sources.Alloc()
	c.generation++
	s.Key = key
	s.Texture = tex
	s.Generation = c.generation
	for _, pn := range key.DependencyPages() {
		s.pages[s.numPages] = pn
		s.numPages++
		c.pages[pn] = append(c.pages[pn], idx)
	}

	gpu.Logger().Debug("texture cache decode",
		"page", key.Page, "mode", key.Mode.String(), "pages", s.numPages)
	return s, nil
}

// decode converts the key's backing VRAM words to RGBA8 texels.
func (c *TextureCache) decode(key SourceKey) []byte {
	baseX := gpu.PageStartX(uint32(key.Page))
	baseY := gpu.PageStartY(uint32(key.Page))
	palX := key.Palette.XBase()
	palY := key.Palette.YBase()

	out := make([]byte, gpu.TexturePageWidth*gpu.TexturePageHeight*4)
	i := 0
	put := func(word uint16) {
		rgba := gpu.VRAMRGBA5551ToRGBA8888(word)
		out[i] = byte(rgba)
		out[i+1] = byte(rgba >> 8)
		out[i+2] = byte(rgba >> 16)
		out[i+3] = byte(rgba >> 24)
		i += 4
	}

	for ty := uint32(0); ty < gpu.TexturePageHeight; ty++ {
		y := baseY + ty
		switch key.Mode {
		case gpu.TextureModePalette4Bit:
			for tx := uint32(0); tx < gpu.TexturePageWidth; tx++ {
				word := c.vram.Get(baseX+tx/4, y)
				index := (word >> ((tx & 3) * 4)) & 0xF
				put(c.vram.Get(palX+uint32(index), palY))
			}
		case gpu.TextureModePalette8Bit:
			for tx := uint32(0); tx < gpu.TexturePageWidth; tx++ {
				word := c.vram.Get(baseX+tx/2, y)
				index := (word >> ((tx & 1) * 8)) & 0xFF
				put(c.vram.Get(palX+uint32(index), palY))
			}
		default:
			for tx := uint32(0); tx < gpu.TexturePageWidth; tx++ {
				put(c.vram.Get(baseX+tx, y))
			}
		}
	}
	return out
}

// InvalidatePage destroys every source depending on page pn and leaves
// the page's reverse index empty.
func (c *TextureCache) InvalidatePage(pn uint32) {
	refs := c.pages[pn]
	if len(refs) == 0 {
		return
	}
	// The slice is re-fetched per iteration because destroySource edits
	// the very list being walked.
	for len(c.pages[pn]) > 0 {
		c.destroySource(c.pages[pn][0])
	}
	if len(c.pages[pn]) != 0 {
		panic("texture cache: page invalidation left dangling references")
	}
}

// destroySource unlinks idx from every page list it participates in and
// frees the slab slot.
func (c *TextureCache) destroySource(idx slab.Index) {
	s := c.sources.Get(idx)
	for _, pn := range s.Pages() {
		list := c.pages[pn]
		found := false
		for i, ref := range list {
			if ref == idx {
				list[i] = list[len(list)-1]
				c.pages[pn] = list[:len(list)-1]
				found = true
				break
			}
		}
		if !found {
			panic("texture cache: source missing from page reverse index")
		}
	}
	if s.Texture != nil {
		s.Texture.Destroy()
	}
	c.sources.Free(idx)
}

// InvalidatePages invalidates every page intersecting rect.
func (c *TextureCache) InvalidatePages(rect gpu.Rect) {
	if !rect.Valid() {
		return
	}
	rect = rect.Clamp()
	firstCol := rect.Left / gpu.VRAMPageWidth
	lastCol := (rect.Right - 1) / gpu.VRAMPageWidth
	firstRow := rect.Top / gpu.VRAMPageHeight
	lastRow := (rect.Bottom - 1) / gpu.VRAMPageHeight
	for row := firstRow; row <= lastRow; row++ {
		for col := firstCol; col <= lastCol; col++ {
			c.InvalidatePage(gpu.PageIndex(col, row))
		}
	}
}

// Clear invalidates every page.
func (c *TextureCache) Clear() {
	for pn := uint32(0); pn < gpu.NumVRAMPages; pn++ {
		c.InvalidatePage(pn)
	}
}
