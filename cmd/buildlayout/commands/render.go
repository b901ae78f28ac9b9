package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/jvmtarget"
	"git.home.luguber.info/inful/buildlayout/internal/resolve"
	"git.home.luguber.info/inful/buildlayout/internal/util/sets"
)

func renderText(w io.Writer, plan *resolve.Plan, noColor bool) error {
	legacy := color.New(color.FgYellow)
	current := color.New(color.FgGreen)
	header := color.New(color.Bold)
	if noColor {
		for _, c := range []*color.Color{legacy, current, header} {
			c.DisableColor()
		}
	}

	_, _ = header.Fprintf(w, "Root output: %s\n", plan.RootOutputDir)
	_, _ = fmt.Fprintf(w, "Allow-list:  %s (%s)\n\n", strings.Join(plan.AllowList, ", "), plan.AllowListVersion)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tPROJECT\tTARGET\tJVM\tOUTPUT")
	for _, p := range plan.Projects {
		c := current
		if p.Target == jvmtarget.Legacy {
			c = legacy
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.EvaluationOrder, p.Name, c.Sprint(p.Target.String()), p.JVMTarget, p.OutputDir)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d projects (%d legacy, %d current)\n",
		len(plan.Projects), plan.Count(jvmtarget.Legacy), plan.Count(jvmtarget.Current))
	return err
}

func renderJSON(w io.Writer, plan *resolve.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

var gradleTemplate = template.Must(template.New("gradle").Funcs(template.FuncMap{
	"dsl":   jvmtarget.DSLConstant,
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	"join": func(items []string) string {
		q := make([]string, len(items))
		for i, s := range items {
			q[i] = fmt.Sprintf("%q", s)
		}
		return strings.Join(q, ", ")
	},
}).Parse(`// Generated by buildlayout (run {{.Plan.RunID}}, allow-list {{.Plan.AllowListVersion}}).
import org.jetbrains.kotlin.gradle.dsl.JvmTarget
import org.jetbrains.kotlin.gradle.tasks.KotlinCompile

allprojects {
    repositories {
{{- range .Plan.Repositories}}
        {{.}}()
{{- end}}
    }
}

val newBuildDir: Directory = rootProject.layout.buildDirectory.dir({{quote .Relocation}}).get()
rootProject.layout.buildDirectory.value(newBuildDir)

subprojects {
    val newSubprojectBuildDir: Directory = newBuildDir.dir(project.name)
    project.layout.buildDirectory.value(newSubprojectBuildDir)
}
{{- range .DependsOn}}

subprojects {
    if (project.path != {{quote .}}) {
        project.evaluationDependsOn({{quote .}})
    }
}
{{- end}}

val legacyJvmProjects = setOf({{join .Plan.AllowList}})

subprojects {
    afterEvaluate {
        val legacy = project.name in legacyJvmProjects
        extensions.findByName("android")?.let {
            (it as com.android.build.gradle.BaseExtension).compileOptions {
                sourceCompatibility = if (legacy) JavaVersion.VERSION_{{.LegacyUnderscore}} else JavaVersion.VERSION_{{.CurrentUnderscore}}
                targetCompatibility = if (legacy) JavaVersion.VERSION_{{.LegacyUnderscore}} else JavaVersion.VERSION_{{.CurrentUnderscore}}
            }
        }
        tasks.withType<KotlinCompile>().configureEach {
            compilerOptions {
                jvmTarget.set(if (legacy) JvmTarget.{{dsl .Plan.Levels.Legacy}} else JvmTarget.{{dsl .Plan.Levels.Current}})
            }
        }
    }
}

tasks.register<Delete>("clean") {
    delete(rootProject.layout.buildDirectory)
}
`))

type gradleData struct {
	Plan              *resolve.Plan
	Relocation        string
	DependsOn         []string
	LegacyUnderscore  string
	CurrentUnderscore string
}

func renderGradle(w io.Writer, plan *resolve.Plan, cfg *config.Config) error {
	data := gradleData{
		Plan:              plan,
		Relocation:        cfg.Layout.Relocation,
		DependsOn:         uniqueInOrder(cfg.Projects.EvaluationDependsOn),
		LegacyUnderscore:  strings.ReplaceAll(plan.Levels.Legacy, ".", "_"),
		CurrentUnderscore: strings.ReplaceAll(plan.Levels.Current, ".", "_"),
	}
	if err := gradleTemplate.Execute(w, data); err != nil {
		return derrors.InternalError("rendering gradle snippet", err)
	}
	return nil
}

func uniqueInOrder(in []string) []string {
	seen := sets.New[string]()
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen.Has(s) {
			seen.Add(s)
			out = append(out, s)
		}
	}
	return out
}
