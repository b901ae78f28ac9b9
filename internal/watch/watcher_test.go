package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, time.Millisecond, "x")
	assert.Error(t, err)

	_, err = New(func(context.Context) error { return nil }, time.Millisecond)
	assert.Error(t, err)
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "buildlayout.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("a: 1\n"), 0o600))

	var calls atomic.Int32
	w, err := New(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 100*time.Millisecond, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(cfg, []byte("a: 2\n"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one action")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "buildlayout.yaml")

	var calls atomic.Int32
	w, err := New(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 20*time.Millisecond, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// Created after Start; the directory watch still sees it.
	require.NoError(t, os.WriteFile(cfg, []byte("a: 1\n"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_ActionErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.gradle.kts")
	require.NoError(t, os.WriteFile(settings, []byte(`include(":app")`), 0o600))

	var calls atomic.Int32
	w, err := New(func(context.Context) error {
		calls.Add(1)
		return errors.New("bad settings")
	}, 20*time.Millisecond, settings)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)

	require.NoError(t, os.WriteFile(settings, []byte(`include(":app", ":camera")`), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(settings, []byte(`include(":app")`), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := New(func(context.Context) error { return nil }, time.Millisecond, filepath.Join(t.TempDir(), "c.yaml"))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
