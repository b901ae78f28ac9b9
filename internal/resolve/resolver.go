// Package resolve runs the configuration pass: for every subproject it fixes
// the output directory, the compiler target and the evaluation order.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/jvmtarget"
	"git.home.luguber.info/inful/buildlayout/internal/layout"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
	"git.home.luguber.info/inful/buildlayout/internal/metrics"
	"git.home.luguber.info/inful/buildlayout/internal/settings"
)

// Resolver computes Plans. It holds no per-run state and may be reused.
type Resolver struct {
	remapper     layout.Remapper
	selector     *jvmtarget.Selector
	dependsOn    []string
	repositories []string
	concurrency  int
	recorder     metrics.Recorder
	now          func() time.Time
	newRunID     func() string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEvaluationDependsOn declares project paths every other project waits
// for. Repeated paths are collapsed.
func WithEvaluationDependsOn(paths ...string) Option {
	return func(r *Resolver) { r.dependsOn = dedupe(paths) }
}

// WithRepositories records the repository list carried into the Plan.
func WithRepositories(repos ...string) Option {
	return func(r *Resolver) { r.repositories = append([]string(nil), repos...) }
}

// WithConcurrency bounds the number of projects resolved at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithClock overrides time and run id generation, for deterministic output.
func WithClock(now func() time.Time, newRunID func() string) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
		if newRunID != nil {
			r.newRunID = newRunID
		}
	}
}

// New returns a Resolver for the given remapper and selector.
func New(remapper layout.Remapper, selector *jvmtarget.Selector, opts ...Option) *Resolver {
	r := &Resolver{
		remapper:    remapper,
		selector:    selector,
		concurrency: config.DefaultConcurrency,
		recorder:    metrics.NoopRecorder{},
		now:         time.Now,
		newRunID:    func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FromConfig wires a Resolver from a loaded configuration.
func FromConfig(cfg *config.Config, opts ...Option) *Resolver {
	base := []Option{
		WithEvaluationDependsOn(cfg.Projects.EvaluationDependsOn...),
		WithRepositories(cfg.Repositories...),
		WithConcurrency(cfg.Projects.Concurrency),
	}
	return New(layout.FromConfig(cfg), jvmtarget.FromConfig(cfg), append(base, opts...)...)
}

// Resolve runs the configuration pass over projects. Input order is kept,
// except that projects named in evaluation_depends_on come first.
func (r *Resolver) Resolve(ctx context.Context, projects []settings.Project) (*Plan, error) {
	start := r.now()

	if err := r.validate(projects); err != nil {
		return nil, err
	}
	ordered := r.order(projects)

	results := make([]Resolution, len(ordered))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := min(r.concurrency, len(ordered))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.resolveOne(ordered[i], i)
			}
		}()
	}

dispatch:
	for i := range ordered {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve canceled: %w", err)
	}

	plan := &Plan{
		RunID:            r.newRunID(),
		CreatedAt:        start.UTC(),
		AllowListVersion: r.selector.Version(),
		AllowList:        r.selector.AllowList(),
		Levels:           r.selector.Levels(),
		RootOutputDir:    r.remapper.Root(),
		Repositories:     r.repositories,
		Projects:         results,
	}

	elapsed := r.now().Sub(start)
	r.recorder.ObserveResolveDuration(elapsed)
	slog.Info("Configuration pass complete",
		logfields.RunID(plan.RunID),
		logfields.Count(len(results)),
		slog.Int("legacy", plan.Count(jvmtarget.Legacy)),
		logfields.Path(plan.RootOutputDir),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return plan, nil
}

func (r *Resolver) resolveOne(p settings.Project, order int) Resolution {
	target := r.selector.Select(p.Name)
	res := Resolution{
		Name:            p.Name,
		Path:            p.Path,
		OutputDir:       r.remapper.For(p.Name),
		Target:          target,
		JVMTarget:       r.selector.Levels().For(target),
		EvaluationOrder: order,
	}
	for _, dep := range r.dependsOn {
		if dep != p.Path {
			res.DependsOn = append(res.DependsOn, dep)
		}
	}

	r.recorder.IncProjectResolved(target.String())
	slog.Debug("Resolved project",
		logfields.Project(p.Name),
		logfields.Target(target.String()),
		logfields.JVMTarget(res.JVMTarget),
		logfields.Path(res.OutputDir))
	return res
}

func (r *Resolver) validate(projects []settings.Project) error {
	names := make(map[string]bool, len(projects))
	paths := make(map[string]bool, len(projects))
	for i, p := range projects {
		field := fmt.Sprintf("projects[%d]", i)
		if p.Name == "" {
			return derrors.ValidationFailed(field, "project name cannot be empty")
		}
		if strings.ContainsAny(p.Name, `/\:`) {
			return derrors.ValidationFailed(field, fmt.Sprintf("project name %q contains a path separator", p.Name))
		}
		// Two projects with the same name would share an output directory.
		if names[p.Name] {
			return derrors.ValidationFailed(field, fmt.Sprintf("duplicate project name %q", p.Name))
		}
		names[p.Name] = true
		paths[p.Path] = true
	}
	for _, dep := range r.dependsOn {
		if !paths[dep] {
			return derrors.ValidationFailed("evaluation_depends_on", fmt.Sprintf("project %s is not part of the build", dep))
		}
	}
	return nil
}

func (r *Resolver) order(projects []settings.Project) []settings.Project {
	byPath := make(map[string]settings.Project, len(projects))
	for _, p := range projects {
		byPath[p.Path] = p
	}

	ordered := make([]settings.Project, 0, len(projects))
	first := make(map[string]bool, len(r.dependsOn))
	for _, dep := range r.dependsOn {
		ordered = append(ordered, byPath[dep])
		first[dep] = true
	}
	for _, p := range projects {
		if !first[p.Path] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// Projects turns plain project names into root-level Gradle projects.
func Projects(names ...string) []settings.Project {
	out := make([]settings.Project, 0, len(names))
	for _, n := range names {
		out = append(out, settings.Project{Path: ":" + n, Name: n})
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
