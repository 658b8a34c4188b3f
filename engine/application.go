package engine

import (
	"github.com/spaghettifunk/extrudo/engine/assets"
	"github.com/spaghettifunk/extrudo/engine/picking"
	"github.com/spaghettifunk/extrudo/engine/renderer"
	"github.com/spaghettifunk/extrudo/engine/storage"
)

// Application supplies the engine's collaborators and per-frame hooks. Nil
// collaborators get headless defaults built from the configuration.
type Application struct {
	// Source resolves outline URLs. Defaults to the TOML outline loader.
	Source assets.Source
	// Renderer draws the attached node and owns the camera. Defaults to a
	// headless renderer the size of the configured viewport.
	Renderer renderer.Renderer
	// Picker maps pointer positions to world points on the outline plane.
	Picker picking.Service
	// Store persists view states. Defaults to a file store under
	// storage.dir, or an in-memory store when no directory is configured.
	Store storage.KeyValueStore

	FnUpdate   Update
	FnOnResize OnResize
}

// Update is called once per frame by Run, after the engine updated. Return
// ErrQuit to leave the loop.
type Update func(deltaTime float64) error
type OnResize func(width, height float64) error
