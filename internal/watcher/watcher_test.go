package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/bidsift/internal/patterns"
)

const signageYAML = `
trade: signage
priority: 1
filename_keywords: [signage, sign]
content_patterns:
  - term: "exit sign"
    weight: 5
`

const signageUpdatedYAML = `
trade: signage
priority: 1
filename_keywords: [signage, sign, wayfinding]
content_patterns:
  - term: "exit sign"
    weight: 7
`

func writePatternFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// waitFor polls cond up to 5s; pattern reloads go through fsnotify and a
// debounce timer, so arrival time is not deterministic.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startWatcher(t *testing.T, dir string, reg *patterns.Registry) *Watcher {
	t.Helper()
	w := NewWatcher(dir, reg, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signage.yaml")
	writePatternFile(t, path, signageYAML)

	reg := patterns.NewRegistry()
	if _, errs := patterns.LoadDirInto(dir, reg); len(errs) > 0 {
		t.Fatalf("initial load: %v", errs)
	}
	startWatcher(t, dir, reg)

	writePatternFile(t, path, signageUpdatedYAML)
	waitFor(t, func() bool {
		p, ok := reg.Get("signage")
		return ok && len(p.FilenameKeywords) == 3 && p.Content[0].Weight == 7
	})
}

func TestWatcher_NewFileRegistersTrade(t *testing.T) {
	dir := t.TempDir()
	reg := patterns.NewRegistry()
	startWatcher(t, dir, reg)

	writePatternFile(t, filepath.Join(dir, "glazing.yaml"), `
trade: glazing
filename_keywords: [glazing, glass]
content_patterns:
  - term: "curtain wall"
    weight: 4
`)
	waitFor(t, func() bool {
		_, ok := reg.Get("glazing")
		return ok
	})
}

func TestWatcher_BadFileKeepsOldRegistration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signage.yaml")
	writePatternFile(t, path, signageYAML)

	reg := patterns.NewRegistry()
	if _, errs := patterns.LoadDirInto(dir, reg); len(errs) > 0 {
		t.Fatalf("initial load: %v", errs)
	}
	startWatcher(t, dir, reg)

	// Invalid: non-positive weight. The reload must be rejected and the
	// old set must survive.
	writePatternFile(t, path, `
trade: signage
content_patterns:
  - term: "exit sign"
    weight: 0
`)
	time.Sleep(200 * time.Millisecond)
	p, ok := reg.Get("signage")
	if !ok {
		t.Fatal("signage should still be registered")
	}
	if p.Content[0].Weight != 5 {
		t.Errorf("old pattern set should survive a bad reload, got weight %f", p.Content[0].Weight)
	}
}

func TestWatcher_RemoveUnregistersTrade(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signage.yaml")
	writePatternFile(t, path, signageYAML)

	reg := patterns.NewRegistry()
	if _, errs := patterns.LoadDirInto(dir, reg); len(errs) > 0 {
		t.Fatalf("initial load: %v", errs)
	}
	startWatcher(t, dir, reg)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, ok := reg.Get("signage")
		return !ok
	})
}

func TestWatcher_OnChangeCallback(t *testing.T) {
	dir := t.TempDir()
	reg := patterns.NewRegistry()

	changes := make(chan struct{}, 8)
	w := NewWatcher(dir, reg,
		WithDebounce(20*time.Millisecond),
		WithOnChange(func() { changes <- struct{}{} }))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writePatternFile(t, filepath.Join(dir, "signage.yaml"), signageYAML)
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not invoked after reload")
	}
}

func TestWatcher_IgnoresNonPatternFiles(t *testing.T) {
	dir := t.TempDir()
	reg := patterns.NewRegistry()
	startWatcher(t, dir, reg)

	writePatternFile(t, filepath.Join(dir, "notes.txt"), "not a pattern file")
	time.Sleep(200 * time.Millisecond)
	if reg.Len() != 0 {
		t.Errorf("registry should stay empty, has %d trades", reg.Len())
	}
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"), patterns.NewRegistry())
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("Start should fail for a missing directory")
	}
}
