package aspen

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	_ "image/jpeg"
	_ "image/png"
)

// Assets load on background goroutines and land in Resource slots. A slot
// starts empty; the mount refreshes when it fills, so a RenderFunc build
// that returns nil for a not-ready resource simply mounts that subtree one
// tick after the load completes. Decoded assets cache globally by path;
// repeated loads of the same path share one read.

// Resource is an asynchronous asset slot.
type Resource[T any] struct {
	mu    sync.Mutex
	val   T
	err   error
	ready bool
}

// Get returns the value and whether it is ready.
func (r *Resource[T]) Get() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val, r.ready
}

// MustGet returns the value, panicking if the load has not completed.
// Useful after Preload, when readiness is already guaranteed.
func (r *Resource[T]) MustGet() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		panic("aspen: resource not ready")
	}
	return r.val
}

// Ready reports whether the value is available.
func (r *Resource[T]) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Err returns the load error, if the load failed.
func (r *Resource[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Resource[T]) fill(v any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.err = err
		return
	}
	t, ok := v.(T)
	if !ok {
		r.err = fmt.Errorf("aspen: asset decoded as %T, not the requested type", v)
		return
	}
	r.val = t
	r.ready = true
	r.err = nil
}

// --- Global asset cache ---

var assetCache = struct {
	mu      sync.Mutex
	flight  singleflight.Group
	entries map[string]assetEntry
}{entries: map[string]assetEntry{}}

type assetEntry struct {
	val any
	err error
}

func cachedAsset(path string) (any, error, bool) {
	assetCache.mu.Lock()
	defer assetCache.mu.Unlock()
	e, ok := assetCache.entries[path]
	return e.val, e.err, ok
}

// fetchAsset decodes a path once, however many callers race for it.
// Errors cache too; eviction is what retries.
func fetchAsset(path string) (any, error) {
	if v, err, ok := cachedAsset(path); ok {
		return v, err
	}
	v, err, _ := assetCache.flight.Do(path, func() (any, error) {
		if v, err, ok := cachedAsset(path); ok {
			return v, err
		}
		v, err := decodeAsset(path)
		assetCache.mu.Lock()
		assetCache.entries[path] = assetEntry{val: v, err: err}
		assetCache.mu.Unlock()
		return v, err
	})
	return v, err
}

func evictAsset(path string) {
	assetCache.mu.Lock()
	delete(assetCache.entries, path)
	assetCache.mu.Unlock()
}

func decodeAsset(path string) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return decodeTexture(path)
	case ".obj":
		return decodeOBJ(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func decodeTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	tex := NewTexture(filepath.Base(path), img)
	// Cached assets outlive any one mount.
	tex.Shared = true
	return tex, nil
}

// --- Typed loads ---

// LoadTexture returns the texture slot for path, starting the load on
// first call. Call it freely from a RenderFunc build; the same slot comes
// back every time.
func LoadTexture(st *State, path string) *Resource[*Texture] {
	return loadAs[*Texture](st, path)
}

// LoadGeometry returns the geometry slot for an OBJ path.
func LoadGeometry(st *State, path string) *Resource[*Geometry] {
	return loadAs[*Geometry](st, path)
}

// LoadBytes returns the raw file contents slot for path.
func LoadBytes(st *State, path string) *Resource[[]byte] {
	return loadAs[[]byte](st, path)
}

func loadAs[T any](st *State, path string) *Resource[T] {
	if st.resources == nil {
		st.resources = map[string]any{}
	}
	if existing, ok := st.resources[path]; ok {
		res, ok := existing.(*Resource[T])
		if !ok {
			panic("aspen: " + path + " is already loading as a different type")
		}
		return res
	}
	res := &Resource[T]{}
	st.resources[path] = res

	if v, err, ok := cachedAsset(path); ok {
		res.fill(v, err)
		return res
	}
	go func() {
		v, err := fetchAsset(path)
		st.enqueue(func() {
			res.fill(v, err)
			if err != nil {
				st.root.lg.Warn("asset load failed", zap.String("path", path), zap.Error(err))
				if st.root.cfg.onError != nil {
					st.root.cfg.onError(err)
				}
			}
			st.root.refreshAsync()
		})
	}()
	return res
}

// Preload warms the asset cache for every path, loading concurrently, and
// returns the first error. A failing path does not stop the others, so
// loads started later find the cache hot and resolve synchronously.
func Preload(ctx context.Context, paths ...string) error {
	var g errgroup.Group
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := fetchAsset(path)
			return err
		})
	}
	return g.Wait()
}

// --- Hot reload ---

// AssetWatcher reloads cached assets when their files change.
type AssetWatcher struct {
	w *fsnotify.Watcher
}

// WatchAssets watches root and its subdirectories. When a file changes,
// its cache entry and the mount's resource slot are dropped on the next
// tick and the mount refreshes, which restarts the load. Close the watcher
// when done; its goroutine exits with it.
func WatchAssets(st *State, root string) (*AssetWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("aspen: watch %s: %w", root, err)
	}
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if walkErr != nil {
		w.Close()
		return nil, fmt.Errorf("aspen: watch %s: %w", root, walkErr)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				path := ev.Name
				evictAsset(path)
				st.enqueue(func() {
					delete(st.resources, path)
					st.root.refreshAsync()
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				st.root.lg.Warn("asset watcher error", zap.Error(err))
			}
		}
	}()
	return &AssetWatcher{w: w}, nil
}

// Close stops watching and releases the watcher's goroutine.
func (aw *AssetWatcher) Close() error {
	return aw.w.Close()
}
