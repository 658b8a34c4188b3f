package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/extrudo/engine/assets"
	"github.com/spaghettifunk/extrudo/engine/assets/loaders"
	"github.com/spaghettifunk/extrudo/engine/config"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/interaction"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/picking"
	"github.com/spaghettifunk/extrudo/engine/renderer"
	"github.com/spaghettifunk/extrudo/engine/scene"
	"github.com/spaghettifunk/extrudo/engine/storage"
	"github.com/spaghettifunk/extrudo/engine/systems"
	"github.com/spaghettifunk/extrudo/engine/viewstate"
)

type Stage uint8

const (
	// Waiting for the first geometry. A saved view state, if any, is held
	// back until the geometry's bounds are known.
	EngineStagePending Stage = iota
	// Geometry attached; transform operations take effect.
	EngineStageReady
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStagePending:
		return "pending"
	case EngineStageReady:
		return "ready"
	default:
		return "shutting-down"
	}
}

// ErrQuit stops Run without reporting a failure.
var ErrQuit = errors.New("quit requested")

// Screen-space radius, in pixels, within which a press grabs a handle.
const HANDLE_PICK_RADIUS float64 = 12

const jobQueueSize = 4

// Run sleeps off whatever is left of this budget after each frame.
const targetFrameSeconds float64 = 1.0 / 60.0

// Engine owns the single transform engine of a session together with its
// drag controller, view-state store and geometry loading.
type Engine struct {
	cfg   *config.Config
	app   *Application
	stage Stage

	events   *core.EventBus
	scene    *scene.TransformEngine
	drag     *interaction.Controller
	input    *interaction.Input
	store    *viewstate.Store
	jobs     *systems.JobSystem
	assets   *assets.AssetManager
	renderer renderer.Renderer
	picker   picking.Service
	clock    *core.Clock
	metrics  *core.FrameMetrics
	logs     io.Closer

	rendering viewstate.RenderingParams
	lighting  viewstate.Lighting

	// deferred is the view state loaded at construction, applied once by the
	// first AttachGeometry.
	deferred *viewstate.ViewState
	// snapshot is captured by Reload and applied when the reload lands.
	snapshot *viewstate.ViewState

	url     string
	pending *assets.Future

	reloadRequested atomic.Bool
	running         atomic.Bool
}

// New builds an engine in EngineStagePending. cfg and app may be nil.
func New(cfg *config.Config, app *Application) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError("invalid configuration: %s", err.Error())
		return nil, err
	}
	logs, err := cfg.SetupLogging()
	if err != nil {
		return nil, err
	}
	if app == nil {
		app = &Application{}
	}

	vp := cfg.Viewport
	if app.Source == nil {
		app.Source = &loaders.OutlineLoader{}
	}
	if app.Renderer == nil {
		app.Renderer = renderer.NewHeadless(vp.Width, vp.Height)
	}
	if app.Picker == nil {
		app.Picker = picking.NewPlanePicker(int(vp.Width), int(vp.Height))
	}
	if app.Store == nil {
		if app.Store, err = newStore(cfg.Storage); err != nil {
			logs.Close()
			return nil, err
		}
	}

	jobs, err := systems.NewJobSystem(cfg.Assets.Workers, jobQueueSize)
	if err != nil {
		core.LogError(err.Error())
		logs.Close()
		return nil, err
	}
	am, err := assets.NewAssetManager(app.Source, jobs)
	if err != nil {
		core.LogError(err.Error())
		_ = jobs.Shutdown()
		logs.Close()
		return nil, err
	}
	store, err := viewstate.NewStore(app.Store, cfg.Storage.Key)
	if err != nil {
		core.LogError(err.Error())
		_ = jobs.Shutdown()
		logs.Close()
		return nil, err
	}

	events := core.NewEventBus()
	te := scene.NewTransformEngine(events)
	drag := interaction.NewController(te, app.Renderer, app.Picker, cfg.Interaction.RotateSensitivity, events)

	e := &Engine{
		cfg:      cfg,
		app:      app,
		stage:    EngineStagePending,
		events:   events,
		scene:    te,
		drag:     drag,
		store:    store,
		jobs:     jobs,
		assets:   am,
		renderer: app.Renderer,
		picker:   app.Picker,
		clock:    core.NewClock(),
		metrics:  core.NewFrameMetrics(),
		logs:     logs,
		url:      cfg.Assets.Outline,
	}
	e.input = interaction.NewInput(drag, e.HitTest)
	if orbiter, ok := app.Renderer.(renderer.Orbiter); ok {
		e.input.Orbit = orbiter.Orbit
	}

	e.deferred = store.Load()
	e.rendering = e.deferred.RenderingOrDefault()
	e.lighting = e.deferred.LightingOrDefault()
	if e.deferred != nil {
		core.LogInfo("saved view state found (session %s), waiting for geometry", e.deferred.Session.Short())
	}

	e.renderer.Attach(te)
	core.LogInfo("%s engine created, session %s", cfg.Name, store.Session().Short())
	return e, nil
}

func newStore(cfg config.StorageConfig) (storage.KeyValueStore, error) {
	if cfg.Dir == "" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewFileStore(cfg.Dir)
}

func (e *Engine) Stage() Stage {
	return e.stage
}

func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Scene exposes the transform engine for reads and direct operations.
func (e *Engine) Scene() *scene.TransformEngine {
	return e.scene
}

func (e *Engine) Drag() *interaction.Controller {
	return e.drag
}

// Input feeds raw mouse callbacks into the drag controller.
func (e *Engine) Input() *interaction.Input {
	return e.input
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

func (e *Engine) Rendering() viewstate.RenderingParams {
	return e.rendering
}

func (e *Engine) Lighting() viewstate.Lighting {
	return e.lighting.Clone()
}

// URL is the outline currently loaded or being loaded.
func (e *Engine) URL() string {
	return e.url
}

// Pending returns the running load, if any.
func (e *Engine) Pending() *assets.Future {
	return e.pending
}

// LoadGeometry starts loading the outline at url on a worker. Only one load
// may be outstanding; a second request fails with core.ErrLoadInProgress
// until Update consumed the first.
func (e *Engine) LoadGeometry(ctx context.Context, url string) (*assets.Future, error) {
	if e.stage == EngineStageShuttingDown {
		return nil, errors.New("load geometry: engine is shutting down")
	}
	if e.pending != nil {
		return nil, fmt.Errorf("load %s: %w", url, core.ErrLoadInProgress)
	}
	if url == "" {
		return nil, errors.New("load geometry: empty url")
	}
	e.url = url
	e.pending = e.assets.Load(ctx, url, e.rendering.ExtrusionDepth)
	core.LogInfo("loading %s (%s)", url, e.pending.ID().Short())
	return e.pending, nil
}

// Reload loads the current outline again and, once it lands, restores the
// session as it was when Reload was called.
func (e *Engine) Reload(ctx context.Context) (*assets.Future, error) {
	if e.pending != nil {
		return nil, fmt.Errorf("reload %s: %w", e.url, core.ErrLoadInProgress)
	}
	snapshot, err := viewstate.Capture(e.scene, e.renderer.Camera(), e.rendering, e.lighting)
	if err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}
	f, err := e.LoadGeometry(ctx, e.url)
	if err != nil {
		return nil, err
	}
	e.snapshot = snapshot
	return f, nil
}

// Update advances the engine by dt seconds: it applies a finished load,
// steps the zoom animation and delivers queued events. It must be called
// from the thread that owns the engine.
func (e *Engine) Update(dt float64) {
	if e.stage == EngineStageShuttingDown {
		return
	}
	if e.reloadRequested.Swap(false) {
		_, err := e.Reload(context.Background())
		switch {
		case errors.Is(err, core.ErrLoadInProgress):
			// Retry once the running load has landed.
			e.reloadRequested.Store(true)
		case err != nil:
			core.LogWarn("reload skipped: %s", err.Error())
		}
	}
	e.pollLoad()
	e.scene.UpdateZoom(float32(dt))
	e.input.Update()
	e.metrics.Update(dt)
	e.events.Flush()
}

func (e *Engine) pollLoad() {
	f := e.pending
	if f == nil || f.State() == assets.FuturePending {
		return
	}
	e.pending = nil

	g, err := f.Result()
	if err == nil {
		if err = e.AttachGeometry(g.Bounds); err == nil {
			e.events.Post(core.EventContext{
				Type: core.EVENT_CODE_GEOMETRY_LOADED,
				Data: &core.GeometryEvent{LoadID: f.ID(), URL: f.URL()},
			})
			return
		}
	}
	e.snapshot = nil
	core.LogError("loading %s (%s) failed: %s", f.URL(), f.ID().Short(), err.Error())
	e.events.Post(core.EventContext{
		Type: core.EVENT_CODE_GEOMETRY_LOAD_FAILED,
		Data: &core.GeometryEvent{LoadID: f.ID(), URL: f.URL(), Err: err},
	})
}

// AttachGeometry finalizes a load: the fresh bounds are attached and the
// deferred (or reload) view state is restored against them, or defaults are
// applied when there is none. The deferred state is consumed once.
func (e *Engine) AttachGeometry(bounds math.Extents3D) error {
	vs := e.deferred
	if e.snapshot != nil {
		vs = e.snapshot
	}

	e.drag.Reset()
	if err := viewstate.Restore(vs, bounds, e.scene, e.renderer.Camera(), e.viewport()); err != nil {
		// Nothing was consumed; the next successful attach still restores vs.
		return err
	}
	e.deferred = nil
	e.snapshot = nil
	if vs != nil {
		e.rendering = vs.RenderingOrDefault()
		e.lighting = vs.LightingOrDefault()
	}
	e.stage = EngineStageReady
	e.events.Post(core.EventContext{Type: core.EVENT_CODE_VIEW_STATE_RESTORED, Data: vs})
	core.LogInfo("geometry attached (restored: %t)", vs != nil)
	return nil
}

// SaveViewState captures the session and writes it to the store.
func (e *Engine) SaveViewState() (*viewstate.ViewState, error) {
	vs, err := e.store.Save(e.scene, e.renderer.Camera(), e.rendering, e.lighting)
	if err != nil {
		return nil, err
	}
	if err := e.store.Persist(vs); err != nil {
		core.LogError("failed to save view state: %s", err.Error())
		return nil, err
	}
	e.events.Post(core.EventContext{Type: core.EVENT_CODE_VIEW_STATE_SAVED, Data: vs})
	return vs, nil
}

// PickAnchor moves the anchor to the point under the pointer. The object
// does not move.
func (e *Engine) PickAnchor(screen math.Vec2) (scene.AnchorPoint, bool) {
	if !e.scene.IsReady() {
		return scene.AnchorPoint{}, false
	}
	world, ok := e.picker.Pick(screen, e.renderer.Camera())
	if !ok {
		return scene.AnchorPoint{}, false
	}
	p, ok := e.scene.AnchorFromWorld(world)
	if !ok {
		return scene.AnchorPoint{}, false
	}
	if err := e.scene.SetAnchor(p); err != nil {
		core.LogWarn("picked anchor rejected: %s", err.Error())
		return scene.AnchorPoint{}, false
	}
	return p, true
}

// SetAnchorPreset selects a named anchor such as "top-left".
func (e *Engine) SetAnchorPreset(name string) error {
	p, ok := scene.AnchorPreset(name)
	if !ok {
		return fmt.Errorf("unknown anchor preset %q", name)
	}
	return e.scene.SetAnchor(p)
}

// ZoomIn and ZoomOut animate one configured zoom step about the anchor.
func (e *Engine) ZoomIn() error {
	return e.scene.ZoomBy(e.cfg.Zoom.Step, float32(e.cfg.Zoom.Duration))
}

func (e *Engine) ZoomOut() error {
	return e.scene.ZoomBy(1/e.cfg.Zoom.Step, float32(e.cfg.Zoom.Duration))
}

// SetRendering replaces the rendering parameters. A new extrusion depth
// changes the geometry bounds, so it schedules a reload.
func (e *Engine) SetRendering(params viewstate.RenderingParams) {
	params = params.Normalized()
	depthChanged := params.ExtrusionDepth != e.rendering.ExtrusionDepth
	e.rendering = params
	if depthChanged && e.stage == EngineStageReady {
		e.reloadRequested.Store(true)
	}
}

// SetLight stores a light in its persisted form, so a saved and reloaded
// rig compares equal to the one that was set.
func (e *Engine) SetLight(name string, light viewstate.Light) error {
	normalized, err := light.Normalized()
	if err != nil {
		return fmt.Errorf("set light %s: %w", name, err)
	}
	if e.lighting == nil {
		e.lighting = viewstate.Lighting{}
	}
	e.lighting[name] = normalized
	return nil
}

// ResetView fits the object to the viewport with the default anchor.
func (e *Engine) ResetView() {
	if !e.scene.IsReady() {
		return
	}
	vp := e.viewport()
	e.scene.ResetToFit(vp.Width, vp.Height, vp.FitFraction)
}

// WatchAssets reloads the outline whenever its file changes. The reload
// runs on the next Update.
func (e *Engine) WatchAssets() error {
	if e.url == "" {
		return errors.New("watch assets: no outline loaded")
	}
	return e.assets.Watch(e.url, func(string) {
		e.reloadRequested.Store(true)
	})
}

// HitTest reports which handle, if any, lies under the pointer.
func (e *Engine) HitTest(screen math.Vec2) interaction.HandleKind {
	if !e.scene.IsReady() {
		return interaction.HandleNone
	}
	camera := e.renderer.Camera()
	world, ok := e.picker.Pick(screen, camera)
	if !ok {
		return interaction.HandleNone
	}
	radius := HANDLE_PICK_RADIUS / camera.Zoom
	h := e.scene.Handles()
	switch {
	case h.Rotation.Visible && h.Rotation.Position.XY().Sub(world.XY()).Length() <= radius:
		return interaction.HandleRotate
	case h.Movement.Visible && h.Movement.Position.XY().Sub(world.XY()).Length() <= radius:
		return interaction.HandleMove
	}
	return interaction.HandleNone
}

// Resize adapts the camera frustum and picker to a new viewport.
func (e *Engine) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %vx%v", width, height)
	}
	e.cfg.Viewport.Width = width
	e.cfg.Viewport.Height = height
	e.renderer.Camera().Resize(width, height)
	if p, ok := e.picker.(*picking.PlanePicker); ok {
		p.Resize(int(width), int(height))
	}
	if e.app.FnOnResize != nil {
		return e.app.FnOnResize(width, height)
	}
	return nil
}

// Run drives Update from the engine clock until ctx is done, Shutdown is
// called or FnUpdate returns an error. ErrQuit ends the loop cleanly.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	e.clock.Start()
	defer e.clock.Stop()

	for e.running.Load() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := time.Now()
		delta := e.clock.Tick()
		e.Update(delta)
		if e.app.FnUpdate != nil {
			if err := e.app.FnUpdate(delta); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				core.LogError("update failed, stopping: %s", err.Error())
				return err
			}
		}

		remaining := targetFrameSeconds - time.Since(frameStart).Seconds()
		if remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
	}
	return nil
}

// Shutdown cancels a running load, stops the watcher and the workers and
// closes the log file. It is safe to call more than once.
func (e *Engine) Shutdown() error {
	if e.stage == EngineStageShuttingDown {
		return nil
	}
	e.stage = EngineStageShuttingDown
	e.running.Store(false)
	e.drag.Reset()
	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
	}
	errs := []error{e.assets.Close(), e.jobs.Shutdown()}
	core.LogInfo("engine shut down after %s", e.clock.Elapsed())
	errs = append(errs, e.logs.Close())
	return errors.Join(errs...)
}

func (e *Engine) viewport() viewstate.Viewport {
	return viewstate.Viewport{
		Width:       e.cfg.Viewport.Width,
		Height:      e.cfg.Viewport.Height,
		FitFraction: e.cfg.Viewport.FitFraction,
	}
}
