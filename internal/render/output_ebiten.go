//go:build !headless

package render

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenOutput is the windowed renderer output, adapted from the
// teacher's EbitenOutput (video_backend_ebiten.go): same window
// lifecycle and mutex-guarded shared state, but queuing DrawCalls
// through a Kage shader instead of a single WritePixels blit.
type EbitenOutput struct {
	width, height int
	scale         int

	mu         sync.Mutex
	cache      *textureCache
	clearColor uint32
	pending    []DrawCall
	running    bool
	frameCount uint64

	shader *ebiten.Shader
}

// NewEbitenOutput creates a windowed renderer for the given logical
// resolution, pixel scale, and image source.
func NewEbitenOutput(width, height, scale int, src ImageSource) (*EbitenOutput, error) {
	shader, err := ebiten.NewShader([]byte(drawShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("compile draw shader: %w", err)
	}
	return &EbitenOutput{
		width:  width,
		height: height,
		scale:  scale,
		cache:  newTextureCache(src),
		shader: shader,
	}, nil
}

func (o *EbitenOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil
	}
	o.running = true
	ebiten.SetWindowSize(o.width*o.scale, o.height*o.scale)
	ebiten.SetWindowTitle("GM8 archive runner")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)
	go func() {
		if err := ebiten.RunGame(o); err != nil {
			fmt.Printf("renderer error: %v\n", err)
		}
	}()
	return nil
}

func (o *EbitenOutput) Stop() error {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
	return nil
}

func (o *EbitenOutput) Clear(color uint32) {
	o.mu.Lock()
	o.clearColor = color
	o.mu.Unlock()
}

func (o *EbitenOutput) Submit(call DrawCall) {
	o.mu.Lock()
	o.pending = append(o.pending, call)
	o.mu.Unlock()
}

func (o *EbitenOutput) Present() error {
	return nil
}

func (o *EbitenOutput) FrameCount() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frameCount
}

// Update implements ebiten.Game.
func (o *EbitenOutput) Update() error {
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()
	if !running || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game, consuming the queued DrawCalls built up
// since the last frame.
func (o *EbitenOutput) Draw(screen *ebiten.Image) {
	o.mu.Lock()
	clearColor := o.clearColor
	calls := o.pending
	o.pending = nil
	o.mu.Unlock()

	screen.Fill(color.RGBA{
		R: byte(clearColor >> 16),
		G: byte(clearColor >> 8),
		B: byte(clearColor),
		A: 255,
	})

	for _, call := range calls {
		o.drawOne(screen, call)
	}

	o.mu.Lock()
	o.frameCount++
	o.mu.Unlock()
}

func (o *EbitenOutput) drawOne(screen *ebiten.Image, call DrawCall) {
	tex, ok := o.cache.get(call.Index)
	if !ok {
		return
	}
	w, h := tex.Bounds().Dx(), tex.Bounds().Dy()

	angle := call.Rotation * math.Pi / 180
	opts := &ebiten.DrawTrianglesShaderOptions{
		Uniforms: map[string]any{
			"ObjAlpha":     float32(call.Alpha),
			"ObjBlend":     []float32{blendChannel(call.Blend, 16), blendChannel(call.Blend, 8), blendChannel(call.Blend, 0)},
			"ObjPos":       []float32{float32(call.X), float32(call.Y)},
			"ObjWH":        []float32{float32(w) * float32(call.XScale), float32(h) * float32(call.YScale)},
			"ObjRotSinCos": []float32{float32(math.Sin(angle)), float32(math.Cos(angle))},
		},
		Images: [4]*ebiten.Image{tex},
	}

	vs, is := quadVertices(float32(w), float32(h), float32(w)*float32(call.XScale), float32(h)*float32(call.YScale))
	screen.DrawTrianglesShader(vs, is, o.shader, opts)
}

func blendChannel(rgb uint32, shift uint) float32 {
	return float32(byte(rgb>>shift)) / 255
}

// quadVertices builds a quad in local space whose destination corners
// span the scaled size (dw, dh) and whose source corners span the image
// size (w, h); the shader translates and rotates it into place.
func quadVertices(w, h, dw, dh float32) ([]ebiten.Vertex, []uint16) {
	vs := []ebiten.Vertex{
		{DstX: 0, DstY: 0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: dw, DstY: 0, SrcX: w, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 0, DstY: dh, SrcX: 0, SrcY: h, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: dw, DstY: dh, SrcX: w, SrcY: h, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	is := []uint16{0, 1, 2, 1, 3, 2}
	return vs, is
}

// Layout implements ebiten.Game.
func (o *EbitenOutput) Layout(_, _ int) (int, int) {
	return o.width, o.height
}
