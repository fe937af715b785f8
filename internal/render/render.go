// Package render implements the GPU renderer (C11): a single window,
// an RGBA image cache with a bounded number of GPU-resident texture
// slots, and a draw path applying per-draw alpha/blend/position/scale/
// rotation.
//
// Directly adapts the teacher's video_backend_ebiten.go (EbitenOutput:
// window lifecycle, mutex-guarded shared state, ebiten.RunGame driver
// loop) rather than hand-rolling a raw GL context the way the teacher's
// cgo video_backend_opengl.go does - ebitengine/ebiten/v2 is already in
// the example corpus's dependency surface and supplies the
// textured-quad blitter plus a Kage shader pipeline for the per-draw
// uniforms spec.md §4.9 specifies.
package render

// ImageSource resolves a sprite/background image index to its decoded
// RGBA pixels, as produced by internal/archive's subimage decode.
type ImageSource interface {
	Image(index int32) (width, height int, rgba []byte, ok bool)
}

// DrawCall is a single per-draw instruction, matching DrawImage's
// parameters in spec.md §4.8.
type DrawCall struct {
	Index          int32
	X, Y           float64
	XScale, YScale float64
	Rotation       float64 // degrees
	Blend          uint32  // 0xRRGGBB
	Alpha          float64
}

// Output is the renderer surface a frame loop drives: clear, queue draws,
// present. Two implementations exist, selected by build tag the way the
// teacher splits video_backend_ebiten.go (!headless) from
// video_backend_headless.go (headless): the windowed ebiten.Game driver
// in output_ebiten.go, and a headless counter-only stub in
// output_headless.go for scripted/test use.
type Output interface {
	Start() error
	Stop() error
	Clear(color uint32)
	Submit(call DrawCall)
	Present() error
	FrameCount() uint64
}
