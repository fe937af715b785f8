package main

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gm8run/gm8emu/internal/alarm"
	"github.com/gm8run/gm8emu/internal/archive"
	"github.com/gm8run/gm8emu/internal/collision"
	"github.com/gm8run/gm8emu/internal/instance"
	"github.com/gm8run/gm8emu/internal/render"
)

// headlessFrameBudget bounds how many frames a -headless run steps
// before printing its summary and exiting, matching the teacher's
// HeadlessVideoOutput's counter-only drive loop intent.
const headlessFrameBudget = 300

// spriteSource adapts the loaded archive's sprite table to the renderer
// and collision engine's narrow asset interfaces.
type spriteSource struct {
	ar *archive.Archive
}

func (s spriteSource) Sprite(index int32) (collision.Sprite, bool) {
	if index < 0 || int(index) >= len(s.ar.Assets.Sprites) {
		return collision.Sprite{}, false
	}
	spr := s.ar.Assets.Sprites[index]
	if !spr.Exists {
		return collision.Sprite{}, false
	}
	maps := make([]collision.Mask, len(spr.CollisionMaps))
	for i, m := range spr.CollisionMaps {
		maps[i] = collision.Mask{
			Width: m.Width, Height: m.Height,
			Left: m.Left, Top: m.Top, Right: m.Right, Bottom: m.Bottom,
			Solid: m.Solid,
		}
	}
	return collision.Sprite{
		Exists:            true,
		OriginX:           spr.OriginX,
		OriginY:           spr.OriginY,
		SeparateCollision: len(spr.CollisionMaps) > 1,
		Maps:              maps,
	}, true
}

func (s spriteSource) Image(index int32) (int, int, []byte, bool) {
	if index < 0 || int(index) >= len(s.ar.Assets.Sprites) {
		return 0, 0, nil, false
	}
	spr := s.ar.Assets.Sprites[index]
	if !spr.Exists || len(spr.Subimages) == 0 {
		return 0, 0, nil, false
	}
	img := spr.Subimages[0]
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return b.Dx(), b.Dy(), rgba.Pix, true
}

// runtime bundles the C8-C11 components a frame loop threads together,
// replacing the original source's process-wide alarm map with an owned
// value per spec.md §9.
type runtime struct {
	instances *instance.Table
	alarms    *alarm.Registry
	sprites   spriteSource
	output    render.Output
}

func run(cfg Config, ar *archive.Archive, logger *slog.Logger) error {
	rt := &runtime{
		instances: instance.NewTable(),
		alarms:    alarm.NewRegistry(),
		sprites:   spriteSource{ar: ar},
	}

	out, err := render.NewEbitenOutput(ar.Settings.WindowWidth, ar.Settings.WindowHeight, cfg.Scale, rt.sprites)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rt.output = out

	if len(ar.Assets.Rooms) > 0 {
		rt.spawnRoom(ar.Assets.Rooms[0], ar.Assets.Objects)
	}

	if err := rt.output.Start(); err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}
	defer rt.output.Stop()

	if cfg.Headless {
		for i := 0; i < headlessFrameBudget; i++ {
			rt.stepFrame()
		}
		logger.Info("headless run complete",
			"frames", rt.output.FrameCount(),
			"instances", rt.instances.Len(),
		)
		return nil
	}

	speed := ar.Settings.GameSpeed
	if speed <= 0 {
		speed = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(speed))
	defer ticker.Stop()
	for range ticker.C {
		rt.stepFrame()
	}
	return nil
}

// spawnRoom populates the instance table from a room's instance list,
// copying each instance's object-definition defaults the way
// _InitInstance does.
func (rt *runtime) spawnRoom(room archive.Room, objects []archive.Object) {
	for i, ri := range room.Instances {
		var def instance.ObjectDefaults
		if int(ri.ObjectIndex) >= 0 && int(ri.ObjectIndex) < len(objects) {
			obj := objects[ri.ObjectIndex]
			def = instance.ObjectDefaults{
				Solid:       obj.Solid,
				Visible:     obj.Visible,
				Depth:       obj.Depth,
				Persistent:  obj.Persistent,
				SpriteIndex: obj.SpriteIndex,
			}
		}
		rt.instances.Add(int32(100001+i), ri.ObjectIndex, float64(ri.X), float64(ri.Y), def)
	}
}

// stepFrame advances one frame: alarms tick, stale instances are pruned,
// every visible live instance is submitted to the renderer, and the
// frame is presented - the single-threaded cooperative loop spec.md §5
// describes (no VM execution runs here; this repository implements
// C1-C11, not a bytecode interpreter).
func (rt *runtime) stepFrame() {
	rt.alarms.TickAll()
	rt.instances.ClearDeleted()

	for i := 0; i < rt.instances.Len(); i++ {
		inst, ok := rt.instances.At(i)
		if !ok || !inst.Visible {
			continue
		}
		rt.output.Submit(render.DrawCall{
			Index:    inst.SpriteIndex,
			X:        inst.X,
			Y:        inst.Y,
			XScale:   inst.ImageXScale,
			YScale:   inst.ImageYScale,
			Rotation: inst.ImageAngle,
			Blend:    inst.ImageBlend,
			Alpha:    inst.ImageAlpha,
		})
	}

	rt.output.Present()
}
