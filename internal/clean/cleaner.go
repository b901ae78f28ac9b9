// Package clean deletes the relocated root output directory. Deleting an
// absent tree is a success, so the operation can be repeated freely.
package clean

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/layout"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
	"git.home.luguber.info/inful/buildlayout/internal/metrics"
	"git.home.luguber.info/inful/buildlayout/internal/retry"
)

// TaskName is the name the clean operation is registered under.
const TaskName = "clean"

const lockRetryDelay = 50 * time.Millisecond

// Cleaner removes one output tree.
type Cleaner struct {
	dir         string
	policy      retry.Policy
	lockTimeout time.Duration
	recorder    metrics.Recorder
	protected   []string
	removeAll   func(string) error
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithPolicy sets the retry policy for transient removal failures.
func WithPolicy(p retry.Policy) Option { return func(c *Cleaner) { c.policy = p } }

// WithLockTimeout bounds how long Run waits for a concurrent clean.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Cleaner) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cleaner) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithProtected names directories that must survive a clean. Run refuses a
// dir that is one of them or contains one.
func WithProtected(dirs ...string) Option {
	return func(c *Cleaner) { c.protected = append(c.protected, dirs...) }
}

// New returns a Cleaner for dir.
func New(dir string, opts ...Option) *Cleaner {
	c := &Cleaner{
		dir:         filepath.Clean(dir),
		policy:      retry.DefaultPolicy(),
		lockTimeout: config.DefaultLockTimeout,
		recorder:    metrics.NoopRecorder{},
		removeAll:   os.RemoveAll,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FromConfig returns a Cleaner for the configured root output directory.
func FromConfig(cfg *config.Config, opts ...Option) *Cleaner {
	base := []Option{
		WithPolicy(retry.FromConfig(cfg.Clean.Retry)),
		WithLockTimeout(cfg.Clean.LockTimeout),
		WithProtected(cfg.Layout.RootDir),
	}
	return New(layout.FromConfig(cfg).Root(), append(base, opts...)...)
}

// Dir returns the directory the cleaner removes.
func (c *Cleaner) Dir() string { return c.dir }

// Task adapts Run to the zero-argument task signature.
func (c *Cleaner) Task() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.Run(ctx)
		return err
	}
}

// Run deletes the output tree recursively. It reports ResultAbsent when there
// was nothing to delete. A dir that is the filesystem root or contains a
// protected directory is refused with a validation error.
func (c *Cleaner) Run(ctx context.Context) (metrics.ResultLabel, error) {
	start := time.Now()

	if err := config.CheckOutputBase(c.dir, c.protected...); err != nil {
		c.recorder.IncCleanResult(metrics.ResultFailed)
		slog.Error("Refusing to clean", logfields.Path(c.dir), logfields.Error(err))
		return metrics.ResultFailed, err
	}

	// No parent means no tree and nowhere to put the lock file.
	if _, err := os.Stat(filepath.Dir(c.dir)); errors.Is(err, fs.ErrNotExist) {
		return c.finish(metrics.ResultAbsent, start), nil
	}

	lock := flock.New(c.dir + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = fmt.Errorf("lock %s held by another process", lock.Path())
		}
		c.recorder.IncCleanResult(metrics.ResultFailed)
		return metrics.ResultFailed, derrors.CleanFailed(c.dir, err)
	}
	// The lock file is left in place so every clean locks the same inode.
	defer func() { _ = lock.Unlock() }()

	if _, err := os.Lstat(c.dir); errors.Is(err, fs.ErrNotExist) {
		return c.finish(metrics.ResultAbsent, start), nil
	}

	err = c.policy.Do(ctx,
		func() error { return c.removeAll(c.dir) },
		retryable,
		func(attempt int, err error) {
			c.recorder.IncCleanRetry()
			slog.Warn("Retrying clean", logfields.Path(c.dir), logfields.Attempt(attempt), logfields.Error(err))
		},
	)
	if err != nil {
		c.recorder.IncCleanResult(metrics.ResultFailed)
		return metrics.ResultFailed, derrors.CleanFailed(c.dir, err)
	}
	return c.finish(metrics.ResultRemoved, start), nil
}

func (c *Cleaner) finish(result metrics.ResultLabel, start time.Time) metrics.ResultLabel {
	c.recorder.IncCleanResult(result)
	slog.Info("Clean complete",
		logfields.Path(c.dir),
		slog.String("result", string(result)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return result
}

// Permission problems do not go away by waiting.
func retryable(err error) bool {
	return !errors.Is(err, fs.ErrPermission) && !errors.Is(err, context.Canceled)
}
