package testbed

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/extrudo/engine"
	"github.com/spaghettifunk/extrudo/engine/config"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/interaction"
	"github.com/spaghettifunk/extrudo/engine/math"
)

const DEFAULT_OUTLINE = "testbed/assets/badge.toml"

type step uint8

const (
	stepWaitGeometry step = iota
	stepAnchor
	stepMove
	stepRotate
	stepZoom
	stepSave
	stepReload
	stepVerify
	stepDone
)

// TestGame drives a scripted headless session: load an outline, drag it
// around through the handles, zoom, save, reload and check the anchor
// stayed put.
type TestGame struct {
	Engine *engine.Engine

	cfg  *config.Config
	step step

	savedAnchor math.Vec3
}

func NewTestGame(cfg *config.Config) (*TestGame, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Assets.Outline == "" {
		cfg.Assets.Outline = DEFAULT_OUTLINE
	}
	tg := &TestGame{cfg: cfg}

	e, err := engine.New(cfg, &engine.Application{
		FnUpdate:   tg.Update,
		FnOnResize: tg.OnResize,
	})
	if err != nil {
		return nil, err
	}
	tg.Engine = e
	return tg, nil
}

// Boot starts loading the outline and, if configured, watching it.
func (g *TestGame) Boot(ctx context.Context) error {
	core.LogInfo("booting testbed...")
	if _, err := g.Engine.LoadGeometry(ctx, g.cfg.Assets.Outline); err != nil {
		return err
	}
	if g.cfg.Assets.Watch {
		if err := g.Engine.WatchAssets(); err != nil {
			core.LogWarn("not watching %s: %s", g.cfg.Assets.Outline, err.Error())
		}
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	e := g.Engine
	s := e.Scene()

	switch g.step {
	case stepWaitGeometry:
		if s.IsReady() {
			core.LogInfo("geometry ready, bounds %+v", s.Bounds().Size())
			g.step++
		}

	case stepAnchor:
		if err := e.SetAnchorPreset("bottom-left"); err != nil {
			return err
		}
		core.LogInfo("anchor at %+v", s.WorldAnchor())
		g.step++

	case stepMove:
		from := g.toScreen(s.Handles().Movement.Position)
		g.drag(from, from.Add(math.NewVec2(80, -40)))
		core.LogInfo("moved to %+v", s.Position())
		g.step++

	case stepRotate:
		anchor := s.WorldAnchor()
		handle := s.Handles().Rotation.Position
		// Swing the pointer a quarter turn around the anchor.
		arm := handle.Sub(anchor)
		target := anchor.Add(math.NewVec3(-arm.Y, arm.X, 0))
		g.drag(g.toScreen(handle), g.toScreen(target))
		if !s.WorldAnchor().Compare(anchor, math.K_ANCHOR_EPSILON) {
			return fmt.Errorf("rotation moved the anchor from %+v to %+v", anchor, s.WorldAnchor())
		}
		core.LogInfo("rotated to %.3f rad", s.RotationZ())
		g.step++

	case stepZoom:
		if !s.IsZooming() {
			if s.Scale() > 0 && g.zoomedIn() {
				g.step++
				break
			}
			if err := e.ZoomIn(); err != nil {
				return err
			}
		}

	case stepSave:
		vs, err := e.SaveViewState()
		if err != nil {
			return err
		}
		g.savedAnchor = s.WorldAnchor()
		core.LogInfo("view state saved (session %s)", vs.Session.Short())
		g.step++

	case stepReload:
		if _, err := e.Reload(context.Background()); err != nil {
			return err
		}
		g.step++

	case stepVerify:
		if e.Pending() != nil {
			return nil
		}
		if !s.WorldAnchor().Compare(g.savedAnchor, math.K_ANCHOR_EPSILON) {
			return fmt.Errorf("anchor drifted across reload: %+v -> %+v", g.savedAnchor, s.WorldAnchor())
		}
		core.LogInfo("reload kept the anchor at %+v", s.WorldAnchor())
		g.step++

	case stepDone:
		core.LogInfo("session finished: %.1f fps, %.2f ms/frame", e.Metrics().FPS(), e.Metrics().FrameTime())
		if !g.cfg.Assets.Watch {
			return engine.ErrQuit
		}
	}
	return nil
}

func (g *TestGame) OnResize(width, height float64) error {
	core.LogDebug("viewport resized to %.0fx%.0f", width, height)
	return nil
}

func (g *TestGame) zoomedIn() bool {
	return g.Engine.Scene().Scale() > g.fitScale()*1.05
}

func (g *TestGame) fitScale() float64 {
	vp := g.cfg.Viewport
	size := g.Engine.Scene().Bounds().Size()
	return vp.FitFraction * min(vp.Width/size.X, vp.Height/size.Y)
}

// drag presses the left button at from, moves in a few steps to to, and
// releases.
func (g *TestGame) drag(from, to math.Vec2) {
	in := g.Engine.Input()
	in.ProcessMouseMove(from.X, from.Y)
	in.ProcessButton(interaction.BUTTON_LEFT, true)
	const steps = 4
	for i := 1; i <= steps; i++ {
		f := float64(i) / steps
		p := from.Add(to.Sub(from).MulScalar(f))
		in.ProcessMouseMove(p.X, p.Y)
	}
	in.ProcessButton(interaction.BUTTON_LEFT, false)
}

// toScreen maps a world point on the outline plane to pixels for the
// default camera (orthographic, centered, unit zoom).
func (g *TestGame) toScreen(world math.Vec3) math.Vec2 {
	camera := g.Engine.Renderer().Camera()
	vp := g.cfg.Viewport
	return math.NewVec2(
		(world.X-camera.Position.X)*camera.Zoom+vp.Width/2,
		vp.Height/2-(world.Y-camera.Position.Y)*camera.Zoom,
	)
}
