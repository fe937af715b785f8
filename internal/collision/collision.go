// Package collision implements the pixel-perfect collision engine (C10),
// grounded bit-exactly on _examples/original_source/src/Collision.cpp:
// dRound's banker's rounding (mimicking the x86 FISTP instruction),
// rotateAround's rotation about an arbitrary center, and the bbox/pixel
// test shape of RefreshInstanceBbox/CollisionCheck/CollisionPointCheck/
// CollisionRectangleCheck. Go style (struct methods, explicit
// boolean-returning helpers with no hidden state) follows the teacher's
// cpu_m68k.go condition-evaluation helpers.
package collision

import (
	"math"

	"github.com/gm8run/gm8emu/internal/instance"
)

// Mask is a per-frame collision bitmap with tight bounds, matching
// internal/archive.CollisionMask's shape without depending on the
// archive package directly.
type Mask struct {
	Width, Height            int
	Left, Top, Right, Bottom int
	Solid                    []bool
}

func (m Mask) at(x, y int) bool {
	if x < m.Left || x > m.Right || y < m.Top || y > m.Bottom {
		return false
	}
	return m.Solid[y*m.Width+x]
}

// Sprite is the subset of sprite asset data the collision engine needs.
type Sprite struct {
	Exists            bool
	OriginX, OriginY  int
	SeparateCollision bool
	Maps              []Mask // one shared map, or one per frame if SeparateCollision
}

func (s Sprite) frameMask(imageIndex float64) Mask {
	if !s.SeparateCollision || len(s.Maps) == 0 {
		if len(s.Maps) == 0 {
			return Mask{}
		}
		return s.Maps[0]
	}
	idx := int(imageIndex) % len(s.Maps)
	if idx < 0 {
		idx += len(s.Maps)
	}
	return s.Maps[idx]
}

// SpriteSource resolves a sprite asset index to its collision data.
type SpriteSource interface {
	Sprite(index int32) (Sprite, bool)
}

const degToRad = math.Pi / 180.0

// dRound mimics the x86 FISTP rounding mode used by the original runner:
// round to nearest, ties to even.
func dRound(d float64) int {
	down := int(math.Floor(d))
	frac := d - float64(down)
	switch {
	case frac < 0.5:
		return down
	case frac > 0.5:
		return down + 1
	default:
		if down&1 == 0 {
			return down
		}
		return down + 1
	}
}

// rotateAround rotates point (px, py) about center (cx, cy) by the angle
// whose sine and cosine are s and c.
func rotateAround(px, py, cx, cy, s, c float64) (float64, float64) {
	px -= cx
	py -= cy
	nx := px*c - py*s
	ny := px*s + py*c
	return nx + cx, ny + cy
}

// effectiveSpriteIndex resolves mask_index if set (!= -1), else
// sprite_index, per RefreshInstanceBbox/CollisionCheck's shared
// substitution rule.
func effectiveSpriteIndex(inst *instance.Instance) int32 {
	if inst.MaskIndex != -1 {
		return inst.MaskIndex
	}
	return inst.SpriteIndex
}

// spriteFor resolves an instance's effective collision sprite for a
// pixel test, where any negative index (not just -1) means "no sprite".
func spriteFor(src SpriteSource, inst *instance.Instance) (Sprite, bool) {
	idx := effectiveSpriteIndex(inst)
	if idx < 0 {
		return Sprite{}, false
	}
	spr, ok := src.Sprite(idx)
	if !ok || !spr.Exists {
		return Sprite{}, false
	}
	return spr, true
}

// RefreshBbox recomputes an instance's cached bounding box if stale, per
// RefreshInstanceBbox. Sentinel corners of -100000 mean "no sprite".
func RefreshBbox(src SpriteSource, inst *instance.Instance) {
	if !inst.BboxStale {
		return
	}
	defer func() { inst.BboxStale = false }()

	spriteIndex := effectiveSpriteIndex(inst)
	if spriteIndex == -1 {
		inst.BboxLeft, inst.BboxTop, inst.BboxRight, inst.BboxBottom = -100000, -100000, -100000, -100000
		return
	}
	spr, ok := src.Sprite(spriteIndex)
	if !ok {
		inst.BboxLeft, inst.BboxTop, inst.BboxRight, inst.BboxBottom = -100000, -100000, -100000, -100000
		return
	}
	m := spr.frameMask(inst.ImageIndex)

	tlX := (inst.X - float64(spr.OriginX)*inst.ImageXScale) + float64(m.Left)*inst.ImageXScale
	tlY := (inst.Y - float64(spr.OriginY)*inst.ImageYScale) + float64(m.Top)*inst.ImageYScale
	brX := tlX + float64(m.Right+1-m.Left)*inst.ImageXScale - 1
	brY := tlY + float64(m.Bottom+1-m.Top)*inst.ImageYScale - 1

	if inst.ImageXScale <= 0 {
		tlX, brX = brX, tlX
	}
	if inst.ImageYScale <= 0 {
		tlY, brY = brY, tlY
	}

	if inst.ImageAngle != 0 {
		trX, trY := brX, tlY
		blX, blY := tlX, brY
		angle := -inst.ImageAngle * degToRad
		s, c := math.Sin(angle), math.Cos(angle)

		tlX, tlY = rotateAround(tlX, tlY, inst.X, inst.Y, s, c)
		trX, trY = rotateAround(trX, trY, inst.X, inst.Y, s, c)
		blX, blY = rotateAround(blX, blY, inst.X, inst.Y, s, c)
		brX, brY = rotateAround(brX, brY, inst.X, inst.Y, s, c)

		inst.BboxLeft = int32(dRound(min4(tlX, trX, blX, brX)))
		inst.BboxRight = int32(dRound(max4(tlX, trX, blX, brX)))
		inst.BboxTop = int32(dRound(min4(tlY, trY, blY, brY)))
		inst.BboxBottom = int32(dRound(max4(tlY, trY, blY, brY)))
		return
	}

	inst.BboxLeft = int32(dRound(tlX))
	inst.BboxRight = int32(dRound(brX))
	inst.BboxBottom = int32(dRound(brY))
	inst.BboxTop = int32(dRound(tlY))
}

func min4(a, b, c, d float64) float64 { return math.Min(math.Min(a, b), math.Min(c, d)) }
func max4(a, b, c, d float64) float64 { return math.Max(math.Max(a, b), math.Max(c, d)) }

// CollisionCheck tests two instances for pixel-perfect collision, per
// CollisionCheck in the original source.
func CollisionCheck(src SpriteSource, a, b *instance.Instance) bool {
	RefreshBbox(src, a)
	RefreshBbox(src, b)
	if a.BboxRight < b.BboxLeft || b.BboxRight < a.BboxLeft {
		return false
	}
	if a.BboxBottom < b.BboxTop || b.BboxBottom < a.BboxTop {
		return false
	}

	cTop := maxInt32(a.BboxTop, b.BboxTop)
	cBottom := minInt32(a.BboxBottom, b.BboxBottom)
	cLeft := maxInt32(a.BboxLeft, b.BboxLeft)
	cRight := minInt32(a.BboxRight, b.BboxRight)

	spr1, ok := spriteFor(src, a)
	if !ok {
		return false
	}
	spr2, ok := spriteFor(src, b)
	if !ok {
		return false
	}
	map1 := spr1.frameMask(a.ImageIndex)
	map2 := spr2.frameMask(b.ImageIndex)

	x1, y1 := dRound(a.X), dRound(a.Y)
	x2, y2 := dRound(b.X), dRound(b.Y)
	a1 := float64(a.ImageAngle) * degToRad
	a2 := float64(b.ImageAngle) * degToRad
	s1, c1 := math.Sin(a1), math.Cos(a1)
	s2, c2 := math.Sin(a2), math.Cos(a2)

	for y := cTop; y <= cBottom; y++ {
		for x := cLeft; x <= cRight; x++ {
			curX, curY := rotateAround(float64(x), float64(y), float64(x1), float64(y1), s1, c1)
			curX = float64(spr1.OriginX) + (curX-float64(x1))/a.ImageXScale
			curY = float64(spr1.OriginY) + (curY-float64(y1))/a.ImageYScale
			if !map1.at(int(curX), int(curY)) {
				continue
			}
			curX, curY = rotateAround(float64(x), float64(y), float64(x2), float64(y2), s2, c2)
			curX = float64(spr2.OriginX) + (curX-float64(x2))/b.ImageXScale
			curY = float64(spr2.OriginY) + (curY-float64(y2))/b.ImageYScale
			if map2.at(int(curX), int(curY)) {
				return true
			}
		}
	}
	return false
}

// CollisionPointCheck tests whether point (x, y) lies on a solid pixel of
// inst, per CollisionPointCheck.
func CollisionPointCheck(src SpriteSource, inst *instance.Instance, x, y int32) bool {
	RefreshBbox(src, inst)
	if inst.BboxRight < x || x < inst.BboxLeft || inst.BboxBottom < y || y < inst.BboxTop {
		return false
	}

	spr, ok := spriteFor(src, inst)
	if !ok {
		return false
	}
	m := spr.frameMask(inst.ImageIndex)
	angle := float64(inst.ImageAngle) * degToRad
	s, c := math.Sin(angle), math.Cos(angle)

	curX, curY := rotateAround(float64(x), float64(y), inst.X, inst.Y, s, c)
	curX = float64(spr.OriginX) + (curX-inst.X)/inst.ImageXScale
	curY = float64(spr.OriginY) + (curY-inst.Y)/inst.ImageYScale
	nx, ny := dRound(curX), dRound(curY)

	return m.at(nx, ny)
}

// CollisionRectangleCheck tests inst against an axis-aligned rectangle,
// per CollisionRectangleCheck. When pixelPerfect is false, bbox
// intersection alone is sufficient.
func CollisionRectangleCheck(src SpriteSource, inst *instance.Instance, x1, y1, x2, y2 int32, pixelPerfect bool) bool {
	RefreshBbox(src, inst)
	if inst.BboxRight < x1 || x2 < inst.BboxLeft || inst.BboxBottom < y1 || y2 < inst.BboxTop {
		return false
	}
	if !pixelPerfect {
		return true
	}

	spr, ok := spriteFor(src, inst)
	if !ok {
		return false
	}
	m := spr.frameMask(inst.ImageIndex)
	angle := float64(inst.ImageAngle) * degToRad
	s, c := math.Sin(angle), math.Cos(angle)

	cTop := maxInt32(inst.BboxTop, y1)
	cBottom := minInt32(inst.BboxBottom, y2)
	cLeft := maxInt32(inst.BboxLeft, x1)
	cRight := minInt32(inst.BboxRight, x2)

	ix, iy := float64(dRound(inst.X)), float64(dRound(inst.Y))

	for y := cTop; y <= cBottom; y++ {
		for x := cLeft; x <= cRight; x++ {
			curX, curY := rotateAround(float64(x), float64(y), ix, iy, s, c)
			curX = float64(spr.OriginX) + (curX-ix)/inst.ImageXScale
			curY = float64(spr.OriginY) + (curY-iy)/inst.ImageYScale
			if m.at(int(curX), int(curY)) {
				return true
			}
		}
	}
	return false
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
