package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/jvmtarget"
	"git.home.luguber.info/inful/buildlayout/internal/layout"
	"git.home.luguber.info/inful/buildlayout/internal/metrics"
	"git.home.luguber.info/inful/buildlayout/internal/settings"
)

var fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return fixedTime }, func() string { return "run-1" })
}

func newTestResolver(legacy []string, opts ...Option) *Resolver {
	base := filepath.FromSlash("/src/myapp/build")
	sel := jvmtarget.NewSelector("test", legacy, jvmtarget.DefaultLevels)
	return New(layout.NewRemapper(base), sel, append([]Option{fixedClock()}, opts...)...)
}

func TestResolve_ThreeNameList(t *testing.T) {
	r := newTestResolver([]string{"device_calendar", "receive_sharing_intent", "workmanager_android"},
		WithEvaluationDependsOn(":app"))

	plan, err := r.Resolve(context.Background(), Projects("device_calendar", "app", "workmanager_android", "path_provider_android"))
	require.NoError(t, err)

	base := filepath.FromSlash("/src/myapp/build")
	assert.Equal(t, base, plan.RootOutputDir)
	assert.Equal(t, "run-1", plan.RunID)
	assert.Equal(t, fixedTime, plan.CreatedAt)
	assert.Equal(t, "test", plan.AllowListVersion)

	app, ok := plan.Lookup("app")
	require.True(t, ok)
	assert.Equal(t, jvmtarget.Current, app.Target)
	assert.Equal(t, "17", app.JVMTarget)
	assert.Equal(t, filepath.Join(base, "app"), app.OutputDir)
	assert.Equal(t, 0, app.EvaluationOrder, ":app is evaluated first")
	assert.Empty(t, app.DependsOn, "a project never depends on itself")

	dc, ok := plan.Lookup("device_calendar")
	require.True(t, ok)
	assert.Equal(t, jvmtarget.Legacy, dc.Target)
	assert.Equal(t, "1.8", dc.JVMTarget)
	assert.Equal(t, []string{":app"}, dc.DependsOn)

	wm, _ := plan.Lookup("workmanager_android")
	assert.Equal(t, jvmtarget.Legacy, wm.Target)

	assert.Equal(t, 2, plan.Count(jvmtarget.Legacy))
	assert.Equal(t, 2, plan.Count(jvmtarget.Current))
}

func TestResolve_TwoNameList(t *testing.T) {
	r := newTestResolver([]string{"receive_sharing_intent", "device_calendar"})

	plan, err := r.Resolve(context.Background(), Projects("workmanager_android", "device_calendar"))
	require.NoError(t, err)

	wm, _ := plan.Lookup("workmanager_android")
	assert.Equal(t, jvmtarget.Current, wm.Target)
	dc, _ := plan.Lookup("device_calendar")
	assert.Equal(t, jvmtarget.Legacy, dc.Target)
}

func TestResolve_OrderingIsDeterministic(t *testing.T) {
	names := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		names = append(names, fmt.Sprintf("plugin_%02d", i))
	}
	names = append(names, "app")

	r := newTestResolver(nil, WithEvaluationDependsOn(":app"), WithConcurrency(8))
	plan, err := r.Resolve(context.Background(), Projects(names...))
	require.NoError(t, err)

	require.Len(t, plan.Projects, 51)
	assert.Equal(t, "app", plan.Projects[0].Name)
	for i, res := range plan.Projects {
		assert.Equal(t, i, res.EvaluationOrder)
		if i > 0 {
			assert.Equal(t, names[i-1], res.Name)
		}
	}
}

func TestResolve_DuplicateDependsOnCollapsed(t *testing.T) {
	r := newTestResolver(nil, WithEvaluationDependsOn(":app", ":app"))

	plan, err := r.Resolve(context.Background(), Projects("app", "camera"))
	require.NoError(t, err)

	camera, _ := plan.Lookup("camera")
	assert.Equal(t, []string{":app"}, camera.DependsOn)
}

func TestResolve_NestedProjectPath(t *testing.T) {
	r := newTestResolver(nil, WithEvaluationDependsOn(":app"))

	plan, err := r.Resolve(context.Background(), []settings.Project{
		{Path: ":libs:core", Name: "core"},
		{Path: ":app", Name: "app"},
	})
	require.NoError(t, err)
	core, _ := plan.Lookup("core")
	assert.Equal(t, filepath.FromSlash("/src/myapp/build/core"), core.OutputDir)
	assert.Equal(t, 1, core.EvaluationOrder)
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name     string
		projects []settings.Project
		deps     []string
	}{
		{"empty name", Projects(""), nil},
		{"separator in name", Projects("a/b"), nil},
		{"colon in name", []settings.Project{{Path: ":x", Name: "a:b"}}, nil},
		{"duplicate name", []settings.Project{{Path: ":a", Name: "core"}, {Path: ":b:core", Name: "core"}}, nil},
		{"missing depends-on target", Projects("camera"), []string{":app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(nil, WithEvaluationDependsOn(tt.deps...))
			_, err := r.Resolve(context.Background(), tt.projects)
			require.Error(t, err)
			assert.True(t, derrors.IsCategory(err, derrors.CategoryValidation), err.Error())
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	r := newTestResolver(nil)
	plan, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Projects)
	assert.Equal(t, filepath.FromSlash("/src/myapp/build"), plan.RootOutputDir)
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestResolver(nil, WithConcurrency(1))
	_, err := r.Resolve(ctx, Projects("a", "b", "c"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve_RecordsMetrics(t *testing.T) {
	rec := metrics.NewPrometheusRecorder(nil)
	r := newTestResolver([]string{"device_calendar"}, WithRecorder(rec))

	_, err := r.Resolve(context.Background(), Projects("device_calendar", "app", "camera"))
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(rec.Registry(), "buildlayout_projects_resolved_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per target")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.RootDir = filepath.FromSlash("/src/myapp/android")

	plan, err := FromConfig(cfg, fixedClock()).Resolve(context.Background(), Projects("app", "device_calendar"))
	require.NoError(t, err)

	assert.Equal(t, filepath.FromSlash("/src/myapp/build"), plan.RootOutputDir)
	assert.Equal(t, []string{"google", "mavenCentral"}, plan.Repositories)
	assert.Equal(t, config.DefaultLegacyAllowList, plan.AllowList)
	dc, _ := plan.Lookup("device_calendar")
	assert.Equal(t, jvmtarget.Legacy, dc.Target)
}

func TestPlan_JSON(t *testing.T) {
	r := newTestResolver([]string{"device_calendar"})
	plan, err := r.Resolve(context.Background(), Projects("device_calendar"))
	require.NoError(t, err)

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target":"legacy"`)
	assert.Contains(t, string(data), `"jvm_target":"1.8"`)
}
