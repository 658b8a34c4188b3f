package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/systems"
)

type AssetInfo struct {
	Path        string
	LastChanged time.Time
}

// AssetManager loads outlines on the job system and watches their files so
// edits can trigger a reload.
type AssetManager struct {
	source Source
	jobs   *systems.JobSystem

	mutex    sync.RWMutex
	watched  map[string]AssetInfo
	onChange func(path string)

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(source Source, jobs *systems.JobSystem) (*AssetManager, error) {
	if source == nil {
		return nil, errors.New("asset manager needs a geometry source")
	}
	if jobs == nil {
		return nil, errors.New("asset manager needs a job system")
	}
	return &AssetManager{
		source:  source,
		jobs:    jobs,
		watched: make(map[string]AssetInfo),
		done:    make(chan struct{}),
	}, nil
}

// Load resolves url on a worker and computes the bounds of its extrusion.
func (am *AssetManager) Load(ctx context.Context, url string, depth float64) *Future {
	loadCtx, cancel := context.WithCancel(ctx)
	f := newFuture(url, cancel)

	err := am.jobs.Submit(systems.JobTask{
		Name: fmt.Sprintf("load %s (%s)", url, f.ID().Short()),
		Ctx:  loadCtx,
		OnStart: func(ctx context.Context) (interface{}, error) {
			outline, err := am.source.Load(ctx, url)
			if err != nil {
				return nil, err
			}
			bounds := outline.Extents(depth)
			if !bounds.IsValid() {
				return nil, fmt.Errorf("outline %s has invalid bounds", url)
			}
			return &Geometry{URL: url, Outline: outline, Depth: depth, Bounds: bounds}, nil
		},
		OnComplete: func(result interface{}) {
			f.resolve(result.(*Geometry), nil)
		},
		OnFailure: func(err error) {
			f.resolve(nil, err)
		},
		OnCompletionCallback: cancel,
	})
	if err != nil {
		cancel()
		f.resolve(nil, err)
	}
	return f
}

// Watch reports writes to the file behind url. The directory is watched
// rather than the file so editors that replace files are still seen.
func (am *AssetManager) Watch(url string, onChange func(path string)) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return errors.New("asset manager already closed")
	}

	path, err := filepath.Abs(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return err
	}
	if am.fsnotify == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
		go am.start(w)
	}
	if err := am.fsnotify.Add(filepath.Dir(path)); err != nil {
		return err
	}
	am.watched[path] = AssetInfo{Path: path, LastChanged: time.Now()}
	am.onChange = onChange
	core.LogDebug("watching %s for changes", path)
	return nil
}

// Close stops the watcher. Loads already submitted still resolve.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

func (am *AssetManager) start(w *fsnotify.Watcher) {
	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-am.done:
			w.Close()
			return
		}
	}
}

func (am *AssetManager) handleFileEvent(name string) {
	path, err := filepath.Abs(name)
	if err != nil {
		return
	}
	am.mutex.Lock()
	info, ok := am.watched[path]
	if ok {
		info.LastChanged = time.Now()
		am.watched[path] = info
	}
	onChange := am.onChange
	am.mutex.Unlock()

	if ok && onChange != nil {
		core.LogInfo("asset changed: %s", path)
		onChange(path)
	}
}
