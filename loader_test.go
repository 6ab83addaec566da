package aspen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// writeAsset places content in a fresh directory so every test hits its
// own cache entries.
func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

// settle ticks the mount until cond holds, failing after a deadline.
func settle(t *testing.T, st *State, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition did not settle")
		}
		st.Advance(0.016)
		time.Sleep(time.Millisecond)
	}
}

func TestLoadBytes(t *testing.T) {
	path := writeAsset(t, "data.txt", "payload")
	st := testMount(t, E("group", nil)).State()

	res := LoadBytes(st, path)
	if res.Ready() {
		t.Error("a fresh load should not be ready synchronously")
	}
	settle(t, st, res.Ready)

	b, ok := res.Get()
	if !ok || string(b) != "payload" {
		t.Errorf("Get = %q, %v; want the file contents", b, ok)
	}
	if string(res.MustGet()) != "payload" {
		t.Error("MustGet should agree")
	}
	if res.Err() != nil {
		t.Errorf("Err = %v, want none", res.Err())
	}
}

func TestLoadReturnsSameSlot(t *testing.T) {
	path := writeAsset(t, "data.txt", "x")
	st := testMount(t, E("group", nil)).State()

	a := LoadBytes(st, path)
	b := LoadBytes(st, path)
	if a != b {
		t.Error("repeated loads of one path should share the slot")
	}
}

func TestLoadAfterPreloadIsSynchronous(t *testing.T) {
	path := writeAsset(t, "data.txt", "warm")
	if err := Preload(context.Background(), path); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	st := testMount(t, E("group", nil)).State()
	res := LoadBytes(st, path)
	if !res.Ready() {
		t.Fatal("a cache hit should fill the slot immediately")
	}
	if string(res.MustGet()) != "warm" {
		t.Error("MustGet should return the preloaded contents")
	}
}

func TestLoadFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	var asyncErr error
	rt := testMount(t, E("group", nil), WithOnError(func(err error) { asyncErr = err }))
	st := rt.State()

	res := LoadBytes(st, missing)
	settle(t, st, func() bool { return res.Err() != nil })

	if res.Ready() {
		t.Error("a failed load must not report ready")
	}
	if _, ok := res.Get(); ok {
		t.Error("Get should report not ok")
	}
	if asyncErr == nil {
		t.Error("the mount's error callback should see the failure")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustGet should panic on a failed load")
		}
	}()
	res.MustGet()
}

func TestLoadTypeMismatchPanics(t *testing.T) {
	path := writeAsset(t, "data.txt", "x")
	st := testMount(t, E("group", nil)).State()
	LoadBytes(st, path)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a second load at a different type")
		}
	}()
	LoadTexture(st, path)
}

func TestLoadWrongDecodeType(t *testing.T) {
	path := writeAsset(t, "data.txt", "not an obj")
	st := testMount(t, E("group", nil)).State()

	// A .txt decodes to raw bytes; asking for geometry fails the slot.
	res := LoadGeometry(st, path)
	settle(t, st, func() bool { return res.Err() != nil })
	if res.Ready() {
		t.Error("a mistyped load must not report ready")
	}
}

func TestLoadTexturePNG(t *testing.T) {
	// Render a tiny frame and reuse it as a PNG asset.
	seed := renderScene(t, E("group", nil), WithBackground(Color{R: 1}))
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	if err := seed.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	st := testMount(t, E("group", nil)).State()
	res := LoadTexture(st, path)
	settle(t, st, res.Ready)

	tex := res.MustGet()
	if w, h := tex.Size(); w != 200 || h != 200 {
		t.Errorf("texture size = %dx%d, want the saved frame", w, h)
	}
	if !tex.Shared {
		t.Error("cached textures must be shared, they outlive mounts")
	}
}

func TestPreloadReportsFirstError(t *testing.T) {
	good := writeAsset(t, "ok.txt", "x")
	bad := filepath.Join(t.TempDir(), "missing.txt")
	if err := Preload(context.Background(), good, bad); err == nil {
		t.Error("a failing path should fail the preload")
	}
	if _, err, ok := cachedAsset(good); !ok || err != nil {
		t.Error("the good path should still be cached")
	}
}

func TestPreloadHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Preload(ctx, writeAsset(t, "x.txt", "x")); err == nil {
		t.Error("a canceled context should abort the preload")
	}
}

func TestLoadDrivesRenderFuncRebuild(t *testing.T) {
	path := writeAsset(t, "label.txt", "ready")

	var got string
	rt, err := RenderFunc(func(st *State) *Elem {
		res := LoadBytes(st, path)
		if b, ok := res.Get(); ok {
			got = string(b)
			return E("group", nil, E("group", Props{"key": "loaded"}))
		}
		return E("group", nil)
	}, NewFixedSurface(50, 50))
	if err != nil {
		t.Fatalf("RenderFunc: %v", err)
	}
	t.Cleanup(rt.Unmount)
	st := rt.State()

	root := st.Scene().ChildAt(0).(*Group)
	settle(t, st, func() bool { return root.NumChildren() == 1 })
	if got != "ready" {
		t.Errorf("build saw %q, want the loaded contents", got)
	}
}

func TestWatchAssetsReload(t *testing.T) {
	restrict := goleak.IgnoreCurrent()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var latest string
	rt, err := RenderFunc(func(st *State) *Elem {
		if b, ok := LoadBytes(st, path).Get(); ok {
			latest = string(b)
		}
		return E("group", nil)
	}, NewFixedSurface(50, 50))
	if err != nil {
		t.Fatalf("RenderFunc: %v", err)
	}
	t.Cleanup(rt.Unmount)
	st := rt.State()
	settle(t, st, func() bool { return latest == "v1" })

	w, err := WatchAssets(st, dir)
	if err != nil {
		t.Fatalf("WatchAssets: %v", err)
	}
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	settle(t, st, func() bool { return latest == "v2" })

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	goleak.VerifyNone(t, restrict)
}

func TestWatchAssetsMissingRoot(t *testing.T) {
	st := testMount(t, E("group", nil)).State()
	if _, err := WatchAssets(st, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("a missing root should error")
	}
}
